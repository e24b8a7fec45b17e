// Package prompt provides the interactive question port used by commands.
package prompt

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter asks the user questions. Implementations block until answered
// or ctx is done, in which case they return ctx.Err().
type Prompter interface {
	// Input asks for free text. An empty answer returns def.
	Input(ctx context.Context, question, def string) (string, error)

	// Confirm asks a yes/no question. An empty answer returns def.
	Confirm(ctx context.Context, question string, def bool) (bool, error)
}

const (
	ansiGreen = "\x1b[32m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

// TerminalPrompter reads answers line by line from a reader.
// When input is exhausted every question resolves to its default.
type TerminalPrompter struct {
	in    *bufio.Reader
	out   io.Writer
	color bool
	eof   bool

	// pending is the in-flight read abandoned by a cancelled question.
	pending chan readResult
}

type readResult struct {
	line string
	err  error
}

// NewTerminalPrompter creates a prompter over in/out. Colors are enabled
// only when out is a terminal.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:    bufio.NewReader(in),
		out:   out,
		color: isTerminal(out),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Input implements Prompter.
func (p *TerminalPrompter) Input(ctx context.Context, question, def string) (string, error) {
	hint := ""
	if def != "" {
		hint = "(" + def + ")"
	}
	p.ask(question, hint)

	line, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Confirm implements Prompter. Accepts y/yes/n/no in any case; other answers
// repeat the question.
func (p *TerminalPrompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "(y/N)"
	if def {
		hint = "(Y/n)"
	}
	for {
		p.ask(question, hint)

		line, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

func (p *TerminalPrompter) ask(question, hint string) {
	if p.color {
		fmt.Fprintf(p.out, "%s?%s %s%s%s %s%s%s ", ansiGreen, ansiReset, ansiBold, question, ansiReset, ansiDim, hint, ansiReset)
		return
	}
	if hint == "" {
		fmt.Fprintf(p.out, "? %s ", question)
		return
	}
	fmt.Fprintf(p.out, "? %s %s ", question, hint)
}

// readLine returns the next trimmed line, or "" once input is exhausted.
// The read runs in its own goroutine so a blocked terminal read cannot
// outlive ctx.
func (p *TerminalPrompter) readLine(ctx context.Context) (string, error) {
	if p.eof {
		fmt.Fprintln(p.out)
		return "", nil
	}
	if p.pending == nil {
		ch := make(chan readResult, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- readResult{line: line, err: err}
		}()
		p.pending = ch
	}

	var r readResult
	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case r = <-p.pending:
		p.pending = nil
	}

	if r.err != nil {
		if !stderrors.Is(r.err, io.EOF) {
			return "", fmt.Errorf("read answer: %w", r.err)
		}
		p.eof = true
		if r.line == "" {
			fmt.Fprintln(p.out)
		}
	}
	return strings.TrimSpace(r.line), nil
}
