package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes alerts to the log. Used when no e-mail provider is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Publish(ctx context.Context, message string) error {
	n.logger.InfoContext(ctx, "Review alert", "message", message)
	return nil
}
