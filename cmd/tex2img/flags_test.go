package main

import (
	"errors"
	"reflect"
	"testing"
)

// ---------------------------------------------------------------------------
// TestParseRenderFlags - Command-line parsing
// ---------------------------------------------------------------------------

func TestParseRenderFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		args           []string
		wantOutputs    []string
		wantPositional []string
		check          func(t *testing.T, f *renderFlags)
	}{
		{
			name:           "body and one output",
			args:           []string{"-o", "out.svg", "$x^2$"},
			wantOutputs:    []string{"out.svg"},
			wantPositional: []string{"$x^2$"},
		},
		{
			name:           "repeated outputs keep order",
			args:           []string{"-o", "a.png", "--output", "b.pdf", "-o", "c.svg", "x"},
			wantOutputs:    []string{"a.png", "b.pdf", "c.svg"},
			wantPositional: []string{"x"},
		},
		{
			name:           "flags after positional",
			args:           []string{"x", "-o", "out.ps"},
			wantOutputs:    []string{"out.ps"},
			wantPositional: []string{"x"},
		},
		{
			name:        "arguments with commas are not split",
			args:        []string{"--arguments", "to-png=-r300,x", "-o", "a.png"},
			wantOutputs: []string{"a.png"},
			check: func(t *testing.T, f *renderFlags) {
				if !reflect.DeepEqual(f.stages.arguments, []string{"to-png=-r300,x"}) {
					t.Errorf("arguments = %q", f.stages.arguments)
				}
			},
		},
		{
			name:        "document and environment flags",
			args:        []string{"--template-file", "t.tex", "--preamble-file", "p.tex", "--fontsize", "14", "--param", "a=1", "--param", "b=2", "--timeout", "30s", "--workdir", "build", "--libgs", "/lib/libgs.dylib", "-o", "x.pdf"},
			wantOutputs: []string{"x.pdf"},
			check: func(t *testing.T, f *renderFlags) {
				if f.document.templateFile != "t.tex" || f.document.preambleFile != "p.tex" {
					t.Errorf("document = %+v", f.document)
				}
				if f.document.fontSize != 14 {
					t.Errorf("fontSize = %d, want 14", f.document.fontSize)
				}
				if len(f.document.params) != 2 {
					t.Errorf("params = %q", f.document.params)
				}
				if f.env.timeout != "30s" || f.env.workDir != "build" || f.env.libGS != "/lib/libgs.dylib" {
					t.Errorf("env = %+v", f.env)
				}
			},
		},
		{
			name: "check deps with json",
			args: []string{"--check-deps", "--json"},
			check: func(t *testing.T, f *renderFlags) {
				if !f.checkDeps || !f.json {
					t.Errorf("checkDeps=%v json=%v", f.checkDeps, f.json)
				}
			},
		},
		{
			name: "short common flags",
			args: []string{"-c", "work", "-v", "-w", "3", "-i", "body.tex"},
			check: func(t *testing.T, f *renderFlags) {
				if f.common.config != "work" || !f.common.verbose {
					t.Errorf("common = %+v", f.common)
				}
				if f.workers != 3 {
					t.Errorf("workers = %d, want 3", f.workers)
				}
				if f.inputFile != "body.tex" {
					t.Errorf("inputFile = %q", f.inputFile)
				}
			},
		},
		{
			name: "optimize flags",
			args: []string{"--optimize-svg", "--optimize-policy", "fallback"},
			check: func(t *testing.T, f *renderFlags) {
				if !f.stages.optimizeSVG || f.stages.optimizePolicy != "fallback" {
					t.Errorf("stages = %+v", f.stages)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, positional, err := parseRenderFlags(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(f.outputs, tt.wantOutputs) {
				t.Errorf("outputs = %q, want %q", f.outputs, tt.wantOutputs)
			}
			if len(tt.wantPositional) > 0 && !reflect.DeepEqual(positional, tt.wantPositional) {
				t.Errorf("positional = %q, want %q", positional, tt.wantPositional)
			}
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}

func TestParseRenderFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--no-such-flag"}},
		{"quiet and verbose", []string{"-q", "-v"}},
		{"negative workers", []string{"-w", "-1"}},
		{"negative fontsize", []string{"--fontsize", "-2"}},
		{"non-numeric workers", []string{"-w", "many"}},
		{"missing value", []string{"-o"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := parseRenderFlags(tt.args)
			if !errors.Is(err, ErrInvalidFlag) {
				t.Errorf("error = %v, want ErrInvalidFlag", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParsePairs - key=value splitting
// ---------------------------------------------------------------------------

func TestParsePairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		items   []string
		want    map[string]string
		wantErr bool
	}{
		{"nil", nil, nil, false},
		{"simple", []string{"a=1"}, map[string]string{"a": "1"}, false},
		{"value keeps equals", []string{"to-png=-sDEVICE=png16m"}, map[string]string{"to-png": "-sDEVICE=png16m"}, false},
		{"empty value", []string{"a="}, map[string]string{"a": ""}, false},
		{"later wins", []string{"a=1", "a=2"}, map[string]string{"a": "2"}, false},
		{"key trimmed", []string{" a =1"}, map[string]string{"a": "1"}, false},
		{"no equals", []string{"a"}, nil, true},
		{"empty key", []string{"=1"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parsePairs("param", tt.items)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFlag) {
					t.Errorf("error = %v, want ErrInvalidFlag", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
