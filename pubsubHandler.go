package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/mmdatafocus/billing_backend/workflow"
	"github.com/sirupsen/logrus"
)

// PubSubMessage is the push subscription envelope.
type PubSubMessage struct {
	Message struct {
		Data []byte `json:"data,omitempty"`
		ID   string `json:"id"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// documentEventPubSubHandler consumes document events from a push
// subscription. Malformed messages are acked so they are not redelivered.
func documentEventPubSubHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var msg PubSubMessage
		logger := config.GetLogger()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(logger, "server.go", "documentEventPubSubHandler", "io.ReadAll", nil, err)
			c.Status(http.StatusNoContent)
			return
		}

		// byte slice unmarshalling handles base64 decoding.
		if err := json.Unmarshal(body, &msg); err != nil {
			config.LogError(logger, "server.go", "documentEventPubSubHandler", "Unmarshal body", string(body), err)
			c.Status(http.StatusNoContent)
			return
		}

		var event models.DocumentEvent
		if err := json.Unmarshal(msg.Message.Data, &event); err != nil {
			config.LogError(logger, "server.go", "documentEventPubSubHandler", "Unmarshal pubsub message", string(msg.Message.Data), err)
			c.Status(http.StatusNoContent)
			return
		}

		// Prefer the payload correlation id; fall back to the Pub/Sub message id.
		correlationID := event.CorrelationId
		if correlationID == "" {
			correlationID = msg.Message.ID
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationID)
		ctx = utils.SetBusinessIdInContext(ctx, event.BusinessId)

		if err := workflow.ProcessDocumentEvent(ctx, logger, event); err != nil {
			if errors.Is(err, workflow.ErrInvalidDocumentEvent) {
				config.LogError(logger, "server.go", "documentEventPubSubHandler", "Invalid pubsub message", event, err)
				c.Status(http.StatusNoContent)
				return
			}
			logger.WithFields(logrus.Fields{
				"field":          "documentEventPubSubHandler",
				"business_id":    event.BusinessId,
				"document":       event.Document,
				"document_id":    event.DocumentId,
				"message_id":     msg.Message.ID,
				"correlation_id": correlationID,
			}).Error("pubsub processing failed: " + err.Error())
			// Non-2xx tells Pub/Sub to retry.
			c.Status(http.StatusInternalServerError)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
