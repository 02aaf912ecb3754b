package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiCyan  = "\033[36m"
	ansiGray  = "\033[90m"
	ansiBold  = "\033[1m"
)

// Printer renders errors for a terminal.
type Printer struct {
	// Color enables ANSI escapes.
	Color bool

	// Width wraps the detail paragraph. Zero means 72 columns.
	Width int
}

func (p Printer) paint(code, text string) string {
	if !p.Color {
		return text
	}
	return code + text + ansiReset
}

// Fprint writes err to w. Errors without a BridgeError in their tree are
// printed on a single line.
func (p Printer) Fprint(w io.Writer, err error) {
	if err == nil {
		return
	}
	var be *BridgeError
	if !stderrors.As(err, &be) {
		fmt.Fprintf(w, "%s %s\n", p.paint(ansiRed+ansiBold, "error:"), err)
		return
	}
	io.WriteString(w, p.Format(be))
}

// Format renders e as a multi-line block.
func (p Printer) Format(e *BridgeError) string {
	width := p.Width
	if width <= 0 {
		width = 72
	}

	var b strings.Builder
	head := "error"
	if e.Code != "" {
		head += " " + e.Code
	}
	fmt.Fprintf(&b, "%s %s\n", p.paint(ansiRed+ansiBold, head+":"), e.Message)

	if e.Node != nil {
		fmt.Fprintf(&b, "  at %s\n", p.paint(ansiCyan, e.Node.String()))
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s %s\n", p.paint(ansiGray, "cause:"), e.Wrapped)
	}
	for _, line := range wrapText(e.Detail, width) {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n", p.paint(ansiCyan, "hint:"), e.Suggestion)
	}
	return b.String()
}

// Format renders e without colors.
func (e *BridgeError) Format() string {
	return Printer{}.Format(e)
}

// FormatCompact returns a single-line form: code, message and node.
func (e *BridgeError) FormatCompact() string {
	s := e.Message
	if e.Code != "" {
		s = e.Code + ": " + s
	}
	if e.Node != nil {
		s += " (" + e.Node.String() + ")"
	}
	return s
}

type jsonError struct {
	Code       string   `json:"code,omitempty"`
	Category   Category `json:"category"`
	Message    string   `json:"message"`
	Detail     string   `json:"detail,omitempty"`
	Node       *NodeRef `json:"node,omitempty"`
	Cause      string   `json:"cause,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e *BridgeError) MarshalJSON() ([]byte, error) {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Node:       e.Node,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	return json.Marshal(out)
}

// LogValue implements slog.LogValuer so coded errors log as a group.
func (e *BridgeError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", e.Code),
		slog.String("category", string(e.Category)),
		slog.String("message", e.Message),
	}
	if e.Node != nil {
		attrs = append(attrs, slog.String("node", e.Node.String()))
	}
	if e.Wrapped != nil {
		attrs = append(attrs, slog.String("cause", e.Wrapped.Error()))
	}
	return slog.GroupValue(attrs...)
}

// wrapText wraps text on word boundaries to at most width columns.
// Words longer than width get a line of their own.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
