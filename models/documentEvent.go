package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/shopspring/decimal"
)

type DocumentAction string

const (
	DocumentActionCreated DocumentAction = "created"
	DocumentActionUpdated DocumentAction = "updated"
	DocumentActionDeleted DocumentAction = "deleted"
)

// DocumentEvent is published after a document write succeeds.
type DocumentEvent struct {
	Document       DocumentKind    `json:"document"`
	Action         DocumentAction  `json:"action"`
	BusinessId     string          `json:"business_id"`
	DocumentId     string          `json:"document_id"`
	DocumentNumber string          `json:"document_number"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CorrelationId  string          `json:"correlation_id,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

type DocumentEventPublisher interface {
	PublishDocumentEvent(ctx context.Context, event DocumentEvent) error
}

func newDocumentEvent(kind DocumentKind, action DocumentAction, businessId string, id string, number string, total decimal.Decimal) DocumentEvent {
	return DocumentEvent{
		Document:       kind,
		Action:         action,
		BusinessId:     businessId,
		DocumentId:     id,
		DocumentNumber: number,
		TotalAmount:    total,
		OccurredAt:     now(),
	}
}

// publish clears cached reports and sends the event. It never fails the
// write that triggered it.
func (w *DocumentWriter) publish(ctx context.Context, event DocumentEvent) {
	clearReportCache(ctx, event.BusinessId)
	if w.publisher == nil {
		return
	}
	if v, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		event.CorrelationId = v
	}
	if err := w.publisher.PublishDocumentEvent(ctx, event); err != nil {
		config.DocumentEventPublishFailures.WithLabelValues(string(event.Document)).Inc()
		config.LogErrorCtx(ctx, config.GetLogger(), "DocumentWriter", "publish", "publish document event", event, err)
	}
}
