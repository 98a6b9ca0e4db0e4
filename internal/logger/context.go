package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const RequestIDKey contextKey = "request_id"
const ChatIDKey contextKey = "chat_id"

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func WithChatID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ChatIDKey, id)
}

func GetChatID(ctx context.Context) string {
	if id, ok := ctx.Value(ChatIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns the default logger enriched with any request or chat id carried by ctx.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if id := GetRequestID(ctx); id != "" {
		l = l.With("request_id", id)
	}
	if id := GetChatID(ctx); id != "" {
		l = l.With("chat_id", id)
	}
	return l
}
