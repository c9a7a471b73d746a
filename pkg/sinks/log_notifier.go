package sinks

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the structured log. Useful for local
// development and as the default sink when no delivery transport is wired.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "log_notifier")}
}

func (n *LogNotifier) Send(_ context.Context, notification Notification) error {
	n.logger.Info("Notification dispatched",
		"project_id", notification.ProjectID,
		"recipients", notification.Recipients,
		"message", notification.Message,
	)

	return nil
}
