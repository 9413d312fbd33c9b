package tex2img

import (
	"fmt"
	"os/exec"

	"github.com/kballard/go-shellquote"

	"github.com/alnah/go-tex2img/internal/params"
)

// NotFound is reported by Command.Path when the binary is not on PATH.
const NotFound = "not found"

// Command describes one external tool invocation.
// Args is a POSIX shell style argument template whose ${name} placeholders
// are filled from the per-render parameter table.
type Command struct {
	Stage       string // registry key, e.g. "to-pdf"
	Binary      string // executable name looked up on PATH
	Args        string // argument template
	Produces    string // suffix of the file the stage writes, e.g. ".pdf"
	Ghostscript bool   // tool links against libgs and may need LIBGS
}

// Available reports whether Binary resolves on PATH. The binary is never run.
func (c Command) Available() bool {
	_, err := exec.LookPath(c.Binary)
	return err == nil
}

// Path returns the resolved binary path, or NotFound.
func (c Command) Path() string {
	p, err := exec.LookPath(c.Binary)
	if err != nil {
		return NotFound
	}
	return p
}

// RenderArgs tokenizes the argument template and expands every token
// against props. Tokenizing happens first so that substituted values
// containing spaces stay single arguments.
func (c Command) RenderArgs(props map[string]string) ([]string, error) {
	tokens, err := shellquote.Split(c.Args)
	if err != nil {
		return nil, fmt.Errorf("%w: stage %s: %v", ErrTemplate, c.Stage, err)
	}

	args := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		arg, err := params.Expand(tok, props)
		if err != nil {
			return nil, fmt.Errorf("%w: stage %s: %v", ErrTemplate, c.Stage, err)
		}
		args = append(args, arg)
	}
	return args, nil
}

// String renders the command as it would be typed in a shell, template included.
func (c Command) String() string {
	return c.Binary + " " + c.Args
}
