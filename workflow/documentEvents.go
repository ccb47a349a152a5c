package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/models/reports"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 10 * time.Second

// PubSubDocumentPublisher sends document events to a Pub/Sub topic.
type PubSubDocumentPublisher struct {
	Topic string
}

// NewDocumentEventPublisher returns nil when PUBSUB_TOPIC is not set.
func NewDocumentEventPublisher() models.DocumentEventPublisher {
	topic := config.PubSubTopic()
	if topic == "" {
		return nil
	}
	return &PubSubDocumentPublisher{Topic: topic}
}

func (p *PubSubDocumentPublisher) PublishDocumentEvent(ctx context.Context, event models.DocumentEvent) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	_, err := config.PublishJSON(ctx, p.Topic, event, map[string]string{
		"business_id": event.BusinessId,
		"document":    string(event.Document),
		"action":      string(event.Action),
	})
	return err
}

var ErrInvalidDocumentEvent = errors.New("invalid document event")

// ProcessDocumentEvent handles one delivered event. Cached reports of the
// business are stale after any document change.
func ProcessDocumentEvent(ctx context.Context, logger *logrus.Logger, event models.DocumentEvent) error {
	if event.BusinessId == "" || event.DocumentId == "" {
		return fmt.Errorf("%w: business_id and document_id are required", ErrInvalidDocumentEvent)
	}
	switch event.Document {
	case models.DocumentKindInvoice, models.DocumentKindPurchase:
	default:
		return fmt.Errorf("%w: unknown document %q", ErrInvalidDocumentEvent, event.Document)
	}

	if err := reports.InvalidateFinancialReports(ctx, event.BusinessId); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"field":          "ProcessDocumentEvent",
		"business_id":    event.BusinessId,
		"document":       event.Document,
		"document_id":    event.DocumentId,
		"action":         event.Action,
		"correlation_id": event.CorrelationId,
	}).Info("document event processed")
	return nil
}
