package permission

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// TerminalPrompter asks on out and reads a y/N answer from in.
type TerminalPrompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

func (p *TerminalPrompter) Prompt(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprint(p.out, "Allow this app to send you notifications? [y/N] "); err != nil {
		return false, err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// StaticPrompter always gives the same answer. Used for unattended runs.
type StaticPrompter bool

func (p StaticPrompter) Prompt(_ context.Context) (bool, error) {
	return bool(p), nil
}
