// Package prompt provides the interactive input and browser-opening
// implementations used outside of tests.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"outreach-call-harness/internal/domain/ports/adapter"
)

// Compile-time assurance these satisfy the ports
var (
	_ adapter.Prompter      = (*StdinPrompter)(nil)
	_ adapter.BrowserOpener = (*ExecOpener)(nil)
)

// StdinPrompter reads answers line by line from the given reader.
type StdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewStdinPrompter(in io.Reader, out io.Writer) *StdinPrompter {
	return &StdinPrompter{in: bufio.NewReader(in), out: out}
}

// Confirm treats an empty answer or "y"/"yes" as approval; anything else,
// including a closed input stream, is a cancel.
func (p *StdinPrompter) Confirm(prompt string) (bool, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *StdinPrompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ExecOpener shells out to the platform's URL opener. Failures are returned
// so callers can fall back to printing the URL.
type ExecOpener struct{}

func (ExecOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
