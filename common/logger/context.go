package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "courier_log_fields"

// LogFields are attached to a context and emitted with every log record written under it.
// Services enrich the context once (thread, actor) and downstream calls log without
// repeating the identifiers.
type LogFields struct {
	ThreadID        *int64
	MessageID       *int64
	CaseID          *int64
	UserID          *int64
	RunID           *string // retention cycle run ID
	StreamMessageID *string // Redis stream entry ID on the worker side
	Component       string  // e.g. "courier.retention.scheduler"
}

// WithLogFields merges fields into the context. Set fields on the newer value win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns the fields stored on ctx, or the zero value.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.ThreadID != nil {
		result.ThreadID = next.ThreadID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.CaseID != nil {
		result.CaseID = next.CaseID
	}
	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.RunID != nil {
		result.RunID = next.RunID
	}
	if next.StreamMessageID != nil {
		result.StreamMessageID = next.StreamMessageID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr returns a pointer to v.
// Handy inline: logger.WithLogFields(ctx, logger.LogFields{ThreadID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen bytes and appends "..." when it was cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
