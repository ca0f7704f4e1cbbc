package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordTokenUsage records chat-completion token usage metrics
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, model string, totalTokens int64) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("llm.model", model)
		transaction.SetTag("llm.total_tokens", fmt.Sprintf("%d", totalTokens))
		transaction.SetData("llm.total_tokens", totalTokens)
	}

	span := sentry.StartSpan(ctx, "llm.token_usage")
	defer span.Finish()

	span.SetTag("model", model)
	span.SetData("total_tokens", totalTokens)
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Token Usage: %s", model)
}

// RecordTurnDuration records one conversation turn's duration
func (m *SentryMetrics) RecordTurnDuration(ctx context.Context, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "chat.turn")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("success", success)

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Chat Turn: %t", success)
}

// RecordMaterialization records playlist materialization outcomes
func (m *SentryMetrics) RecordMaterialization(ctx context.Context, tracksAdded, totalRequested int) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "playlist.materialize")
	defer span.Finish()

	span.SetTag("tracks_added", fmt.Sprintf("%d", tracksAdded))
	span.SetData("tracks_added", tracksAdded)
	span.SetData("total_requested", totalRequested)
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Materialize: %d/%d", tracksAdded, totalRequested)
}
