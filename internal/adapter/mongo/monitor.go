package mongo

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

const maxLoggedCommand = 1000

func commandMonitor(slow time.Duration) *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			cmd := evt.Command.String()
			if len(cmd) > maxLoggedCommand {
				cmd = cmd[:maxLoggedCommand] + "...[truncated]"
			}
			slog.DebugContext(ctx, "mongodb started",
				slog.String("command", evt.CommandName),
				slog.String("database", evt.DatabaseName),
				slog.Int64("request_id", evt.RequestID),
				slog.String("cmd_detail", cmd),
			)
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			attrs := []any{
				slog.String("command", evt.CommandName),
				slog.Duration("latency", evt.Duration),
				slog.Int64("request_id", evt.RequestID),
			}
			if slow > 0 && evt.Duration > slow {
				slog.WarnContext(ctx, "mongodb slow", attrs...)
				return
			}
			slog.DebugContext(ctx, "mongodb succeeded", attrs...)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			slog.ErrorContext(ctx, "mongodb failed",
				slog.String("command", evt.CommandName),
				slog.Duration("latency", evt.Duration),
				slog.Int64("request_id", evt.RequestID),
				slog.Any("err", evt.Failure),
			)
		},
	}
}
