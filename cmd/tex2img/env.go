package main

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tex2img"
)

// Renderer is the part of tex2img.Renderer the CLI uses.
type Renderer interface {
	Prepare(body string, opts tex2img.PrepareOptions) string
	Render(ctx context.Context, tex, output string, opts tex2img.RenderOptions) (*tex2img.Result, error)
}

// Compile-time interface implementation check.
var _ Renderer = (*tex2img.Renderer)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	NewRenderer func(opts ...tex2img.Option) (Renderer, error)
	Startup     func(log logrus.FieldLogger) // runs once the logger exists; nil in tests
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewRenderer: func(opts ...tex2img.Option) (Renderer, error) {
			return tex2img.NewRenderer(opts...)
		},
	}
}
