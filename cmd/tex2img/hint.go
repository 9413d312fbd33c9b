package main

import (
	"context"
	"errors"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/alnah/go-tex2img"
	"github.com/alnah/go-tex2img/internal/config"
	"github.com/alnah/go-tex2img/internal/hints"
)

// hintFor returns actionable hints for err, one per distinct cause.
func hintFor(err error) string {
	if err == nil {
		return ""
	}

	var merr *multierror.Error
	if errors.As(err, &merr) {
		seen := map[string]bool{}
		var b strings.Builder
		for _, e := range merr.Errors {
			h := hintFor(e)
			if h != "" && !seen[h] {
				seen[h] = true
				b.WriteString(h)
			}
		}
		return b.String()
	}

	var missing *tex2img.MissingDependencyError
	if errors.As(err, &missing) {
		return hints.ForMissingBinary(missing.Binary)
	}

	var stageErr *tex2img.StageError
	if errors.As(err, &stageErr) {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return hints.ForTimeout()
		case stageErr.Stage == tex2img.StageCompile:
			return hints.ForTeXLog(stageErr.Stderr)
		case stageErr.Binary == "gs" || stageErr.Binary == "ps2pdf":
			return hints.ForLibGS()
		}
		return ""
	}

	switch {
	case errors.Is(err, tex2img.ErrUnsupportedFormat):
		return hints.ForUnsupportedFormat(tex2img.SupportedSuffixes)
	case errors.Is(err, tex2img.ErrUnknownStage):
		return hints.ForUnknownStage(tex2img.DefaultRegistry().Names())
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(searchedPaths(err))
	case errors.Is(err, tex2img.ErrWorkspace):
		return hints.ForOutputDirectory()
	}
	return ""
}

// searchedPaths extracts the "tried a, b" list from a config lookup error.
func searchedPaths(err error) []string {
	_, list, ok := strings.Cut(err.Error(), "tried ")
	if !ok {
		return nil
	}
	return strings.Split(list, ", ")
}
