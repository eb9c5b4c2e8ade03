// Package notice renders user-facing alerts.
package notice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

// WriterPresenter prints the alert as a boxed message, e.g. to a terminal.
type WriterPresenter struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriterPresenter(out io.Writer) *WriterPresenter {
	return &WriterPresenter{out: out}
}

func (p *WriterPresenter) Present(_ context.Context, n registration.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, "\n[!] %s\n    %s\n\n", n.Title, n.Message)
}

// LogPresenter records the alert through the structured logger. Used when no
// interactive output is attached.
type LogPresenter struct {
	logger *slog.Logger
}

func NewLogPresenter(logger *slog.Logger) *LogPresenter {
	return &LogPresenter{logger: logger.With("component", "NoticePresenter")}
}

func (p *LogPresenter) Present(ctx context.Context, n registration.Notice) {
	p.logger.WarnContext(ctx, n.Title, "message", n.Message)
}
