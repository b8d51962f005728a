package port

import (
	"context"
	"whalegen/internal/core/domain"
)

type SummarySender interface {
	// SendSummary publishes the outcome of a finished batch run.
	SendSummary(ctx context.Context, summary *domain.BatchSummary) error
}
