package tex2img

import (
	"errors"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
)

// ---------------------------------------------------------------------------
// TestParseOptimizePolicy - Policy names
// ---------------------------------------------------------------------------

func TestParseOptimizePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    OptimizePolicy
		wantErr bool
	}{
		{"", OptimizeRequire, false},
		{"require", OptimizeRequire, false},
		{"fallback", OptimizeFallback, false},
		{" FallBack ", OptimizeFallback, false},
		{"skip", OptimizeRequire, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOptimizePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptimizePolicy_String(t *testing.T) {
	t.Parallel()

	for p, want := range map[OptimizePolicy]string{
		OptimizeRequire:    "require",
		OptimizeFallback:   "fallback",
		OptimizePolicy(42): "OptimizePolicy(42)",
	} {
		if got := p.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestOptions - Functional options
// ---------------------------------------------------------------------------

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		r, err := NewRenderer()
		if err != nil {
			t.Fatal(err)
		}
		if r.cfg.timeout != DefaultTimeout {
			t.Errorf("timeout = %v, want %v", r.cfg.timeout, DefaultTimeout)
		}
		if r.cfg.policy != OptimizeRequire {
			t.Errorf("policy = %v, want require", r.cfg.policy)
		}
		if r.log == nil {
			t.Error("logger is nil")
		}
	})

	t.Run("document options", func(t *testing.T) {
		t.Parallel()

		r, err := NewRenderer(
			WithTemplate("T"),
			WithPreamble("P"),
			WithFontSize(9),
			WithParams(map[string]string{"k": "v"}),
		)
		if err != nil {
			t.Fatal(err)
		}
		p := r.preparer
		if p.Template != "T" || p.Preamble != "P" || p.FontSize != 9 || p.Params["k"] != "v" {
			t.Errorf("preparer = %+v", p)
		}
	})

	t.Run("execution options", func(t *testing.T) {
		t.Parallel()

		log, _ := logtest.NewNullLogger()
		r, err := NewRenderer(
			WithTimeout(time.Second),
			WithOptimizePolicy(OptimizeFallback),
			WithLogger(log),
		)
		if err != nil {
			t.Fatal(err)
		}
		if r.cfg.timeout != time.Second || r.cfg.policy != OptimizeFallback {
			t.Errorf("cfg = %+v", r.cfg)
		}
		if r.log != log {
			t.Error("logger not applied")
		}
	})

	t.Run("nil logger keeps default", func(t *testing.T) {
		t.Parallel()

		r, err := NewRenderer(WithLogger(nil))
		if err != nil {
			t.Fatal(err)
		}
		if r.log == nil {
			t.Error("logger is nil")
		}
	})

	t.Run("custom registry with arguments", func(t *testing.T) {
		t.Parallel()

		reg := NewRegistry(Command{Stage: StageCompile, Binary: "pdflatex", Args: "${tex_file}", Produces: suffixDVI})
		r, err := NewRenderer(WithRegistry(reg), WithArguments(map[string]string{StageCompile: "-draftmode ${tex_file}"}))
		if err != nil {
			t.Fatal(err)
		}
		cmd, _ := r.Registry().Lookup(StageCompile)
		if cmd.Binary != "pdflatex" || cmd.Args != "-draftmode ${tex_file}" {
			t.Errorf("compile = %+v", cmd)
		}
		orig, _ := reg.Lookup(StageCompile)
		if orig.Args != "${tex_file}" {
			t.Errorf("source registry mutated: %q", orig.Args)
		}
	})

	t.Run("unknown stage in arguments", func(t *testing.T) {
		t.Parallel()

		_, err := NewRenderer(WithArguments(map[string]string{"to-gif": "x"}))
		if !errors.Is(err, ErrUnknownStage) {
			t.Errorf("error = %v, want ErrUnknownStage", err)
		}
	})
}
