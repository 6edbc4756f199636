package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/mssola/useragent"

	"daviz/pkg/requestcontext"
)

// Sink persists or forwards audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher enriches events with request metadata and hands them to a sink.
type Publisher struct {
	sink Sink
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = requestcontext.Now(ctx)
	}
	if base.Category == "" {
		base.Category = base.Action.Category()
	}
	if base.RequestID == "" {
		base.RequestID = requestcontext.RequestID(ctx)
	}
	if base.ClientIP == "" {
		base.ClientIP = requestcontext.ClientIP(ctx)
	}
	if base.UserAgent == "" {
		base.UserAgent = requestcontext.UserAgent(ctx)
	}
	if base.Device == "" && base.UserAgent != "" {
		base.Device = DescribeDevice(base.UserAgent)
	}
	base.Timestamp = base.Timestamp.UTC()
	return p.sink.Append(ctx, base)
}

// DescribeDevice condenses a User-Agent header into "browser version on os",
// tagging bots and mobile clients.
func DescribeDevice(header string) string {
	ua := useragent.New(header)
	if ua.Bot() {
		name, _ := ua.Browser()
		return fmt.Sprintf("bot:%s", name)
	}
	name, version := ua.Browser()
	parts := []string{strings.TrimSpace(name + " " + version)}
	if osName := ua.OS(); osName != "" {
		parts = append(parts, "on", osName)
	}
	if ua.Mobile() {
		parts = append(parts, "(mobile)")
	}
	return strings.Join(parts, " ")
}
