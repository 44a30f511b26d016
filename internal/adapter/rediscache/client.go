// Package rediscache decorates a profile repository with a Redis read cache.
package rediscache

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect opens a Redis client and pings it. Commands slower than slow are
// logged at warn level.
func Connect(ctx context.Context, addr, password string, db int, slow time.Duration) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	rdb.AddHook(logHook{slow: slow})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	slog.Info("redis initialized", "addr", addr, "db", db)
	return rdb, nil
}

type logHook struct {
	slow time.Duration
}

func (h logHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			slog.ErrorContext(ctx, "redis dial failed",
				slog.String("addr", addr),
				slog.Duration("latency", time.Since(start)),
				slog.Any("err", err),
			)
		}
		return conn, err
	}
}

func (h logHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		elapsed := time.Since(start)
		switch {
		case err != nil && !errors.Is(err, redis.Nil):
			slog.ErrorContext(ctx, "redis command failed",
				slog.String("command", cmd.Name()),
				slog.Duration("latency", elapsed),
				slog.Any("err", err),
			)
		case h.slow > 0 && elapsed > h.slow:
			slog.WarnContext(ctx, "redis slow",
				slog.String("command", cmd.Name()),
				slog.Duration("latency", elapsed),
			)
		}
		return err
	}
}

func (h logHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if err != nil {
			slog.ErrorContext(ctx, "redis pipeline failed",
				slog.Int("commands", len(cmds)),
				slog.Duration("latency", time.Since(start)),
				slog.Any("err", err),
			)
		}
		return err
	}
}
