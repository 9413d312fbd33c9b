// Package params holds the layered placeholder tables used to fill document
// and command templates.
//
// Two substitution flavours exist. SafeSubstitute is tolerant: unknown
// placeholders are left verbatim, so document templates may carry literal
// dollar signs or be completed later. Expand is strict: a template that
// references an undefined key fails with ErrUndefined, and shell-style
// modifiers such as ${name:-default} are rejected with ErrModifier so that a
// missing key can never be papered over.
package params

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/a8m/envsubst/parse"
)

// ErrUndefined is returned by Expand when a template references a key that
// is not present in the layer.
var ErrUndefined = errors.New("undefined placeholder")

// ErrModifier is returned by Expand for ${...} forms other than a bare name.
var ErrModifier = errors.New("placeholder modifiers are not supported")

// Layer maps placeholder names to their values.
type Layer map[string]string

// Merge flattens layers into a new Layer. Later layers win. Nil layers are
// skipped and the inputs are never modified.
func Merge(layers ...Layer) Layer {
	size := 0
	for _, l := range layers {
		size += len(l)
	}
	out := make(Layer, size)
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// Clone returns a shallow copy of l.
func (l Layer) Clone() Layer {
	return Merge(l)
}

// Keys returns the placeholder names in sorted order.
func (l Layer) Keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Environ renders the layer as KEY=value pairs, sorted by key.
func (l Layer) Environ() []string {
	env := make([]string, 0, len(l))
	for _, k := range l.Keys() {
		env = append(env, k+"="+l[k])
	}
	return env
}

// placeholder matches $$, $name and ${name}.
var placeholder = regexp.MustCompile(`\$(?:\$|[_a-zA-Z][_a-zA-Z0-9]*|\{[_a-zA-Z][_a-zA-Z0-9]*\})`)

// braced matches $$ and every ${...} form so that modifiers can be spotted.
var braced = regexp.MustCompile(`\$\$|\$\{[^}]*\}`)

// bareName is the only accepted content of ${...} in strict templates.
var bareName = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)

// SafeSubstitute replaces $name and ${name} with values from l and collapses
// $$ into $. Placeholders without a value and malformed ones are kept as-is.
func SafeSubstitute(tmpl string, l Layer) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		if m == "$$" {
			return "$"
		}
		name := strings.Trim(m[1:], "{}")
		if v, ok := l[name]; ok {
			return v
		}
		return m
	})
}

// Expand replaces ${name} and $name placeholders in s with values from l.
// Unlike SafeSubstitute it fails when a referenced key is missing.
func Expand(s string, l Layer) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}
	for _, m := range braced.FindAllString(s, -1) {
		if m != "$$" && !bareName.MatchString(m[2:len(m)-1]) {
			return "", fmt.Errorf("%w: %s", ErrModifier, m)
		}
	}
	p := parse.New("template", l.Environ(), &parse.Restrictions{NoUnset: true})
	out, err := p.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndefined, err)
	}
	return out, nil
}
