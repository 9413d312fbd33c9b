package tex2img

import (
	"strconv"
	"strings"

	"github.com/alnah/go-tex2img/internal/params"
)

// DefaultTemplate wraps the body in a standalone preview document.
const DefaultTemplate = `\documentclass[${fontsize}pt,preview]{standalone}
${preamble}
\begin{document}
\begin{preview}
${body}
\end{preview}
\end{document}`

// DefaultPreamble loads the packages most formulas and diagrams need.
const DefaultPreamble = `\usepackage[utf8]{inputenc}
\usepackage{float}
\usepackage{graphicx}
\usepackage{textcomp}
\usepackage{siunitx}
\usepackage{xcolor}
\usepackage{comment}
\usepackage[boxed,algoruled,vlined,linesnumbered]{algorithm2e}
\usepackage{amsmath,amsthm,amssymb,amsfonts,amstext,newtxtext}
\usepackage{color,soul}
\usepackage{tikz}`

// DefaultFontSize is the document font size in points.
const DefaultFontSize = 12

// Preparer merges a TeX body into a document template.
// The zero value uses DefaultTemplate, DefaultPreamble and DefaultFontSize.
type Preparer struct {
	Template string
	Preamble string
	FontSize int
	Params   map[string]string // engine-level template parameters
}

// PrepareOptions overrides the Preparer for a single call.
// Empty strings and a zero FontSize mean "use the Preparer's value".
type PrepareOptions struct {
	Template string
	Preamble string
	FontSize int
	Params   map[string]string
}

// Prepare substitutes body, preamble, fontsize and any extra parameters into
// the template. Later layers win: built-ins, then p.Params, then opts.Params.
// Unknown placeholders are left untouched, so Prepare never fails.
func (p Preparer) Prepare(body string, opts PrepareOptions) string {
	tmpl := firstNonEmpty(opts.Template, p.Template, DefaultTemplate)
	preamble := firstNonEmpty(opts.Preamble, p.Preamble, DefaultPreamble)

	fontsize := DefaultFontSize
	if p.FontSize > 0 {
		fontsize = p.FontSize
	}
	if opts.FontSize > 0 {
		fontsize = opts.FontSize
	}

	builtins := params.Layer{
		"preamble": preamble,
		"fontsize": strconv.Itoa(fontsize),
		"body":     body,
	}
	return params.SafeSubstitute(tmpl, params.Merge(builtins, p.Params, opts.Params))
}

// Prepare merges body into DefaultTemplate with the default preamble and
// font size.
func Prepare(body string) string {
	return Preparer{}.Prepare(body, PrepareOptions{})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
