// Package report renders human-readable run output. All formatting is pure
// over an injected sink; there is no process-wide state and no color
// handling.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const headerWidth = 70

// Reporter writes step-by-step harness output to a single sink.
type Reporter struct {
	out io.Writer
}

func New(out io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	return &Reporter{out: out}
}

// Header prints a boxed section title.
func (r *Reporter) Header(text string) {
	rule := strings.Repeat("=", headerWidth)
	fmt.Fprintf(r.out, "\n%s\n%s\n%s\n\n", rule, center(text, headerWidth), rule)
}

func (r *Reporter) Successf(format string, args ...any) {
	fmt.Fprintf(r.out, "✓ "+format+"\n", args...)
}

func (r *Reporter) Errorf(format string, args ...any) {
	fmt.Fprintf(r.out, "✗ "+format+"\n", args...)
}

func (r *Reporter) Infof(format string, args ...any) {
	fmt.Fprintf(r.out, "ℹ "+format+"\n", args...)
}

func (r *Reporter) Warnf(format string, args ...any) {
	fmt.Fprintf(r.out, "⚠ "+format+"\n", args...)
}

// StatusChange prints one de-duplicated status transition with elapsed time.
func (r *Reporter) StatusChange(elapsedSeconds int, status string) {
	fmt.Fprintf(r.out, "\n[%ds] Status: %s\n", elapsedSeconds, status)
}

// Response dumps an HTTP response, pretty-printing JSON bodies and
// truncating anything else.
func (r *Reporter) Response(statusCode int, body []byte) {
	fmt.Fprintf(r.out, "\nResponse:\n  Status Code: %d\n", statusCode)
	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "  ", "  ") == nil {
		fmt.Fprintf(r.out, "  Body: %s\n", pretty.String())
		return
	}
	const maxDump = 500
	if len(body) > maxDump {
		body = body[:maxDump]
	}
	fmt.Fprintf(r.out, "  Body: %s\n", body)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
