package audit

import (
	"context"
	"log/slog"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(ctx context.Context, e Event) error {
	attrs := []any{
		"log_type", "audit",
		"category", e.Category,
		"subject", e.Subject,
		"timestamp", e.Timestamp,
	}
	if e.Signer != "" {
		attrs = append(attrs, "signer", e.Signer)
	}
	if e.Asset != "" {
		attrs = append(attrs, "asset", e.Asset)
	}
	if e.Reason != "" {
		attrs = append(attrs, "reason", e.Reason)
	}
	if len(e.Fields) > 0 {
		attrs = append(attrs, "fields", e.Fields)
	}
	if e.EvidenceCID != "" {
		attrs = append(attrs, "evidence_cid", e.EvidenceCID)
	}
	if e.RequestID != "" {
		attrs = append(attrs, "request_id", e.RequestID)
	}
	if e.Device != "" {
		attrs = append(attrs, "device", e.Device)
	}
	s.logger.InfoContext(ctx, string(e.Action), attrs...)
	return nil
}
