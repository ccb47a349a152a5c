package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
	pubsubTopics   = map[string]*pubsub.Topic{}
)

// PubSubTopic is the topic document events go to. Empty disables publishing.
func PubSubTopic() string {
	return strings.TrimSpace(os.Getenv("PUBSUB_TOPIC"))
}

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return os.Getenv("GCP_PROJECT")
}

// GetPubSubClient returns the shared Pub/Sub client, creating it on first use.
// It uses Application Default Credentials unless PUBSUB_CREDENTIALS_JSON is provided.
// Creation is retried until ctx is done.
func GetPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}
	var opts []option.ClientOption
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}

	var attempt int
	for {
		attempt++
		c, err := pubsub.NewClient(ctx, projectID, opts...)
		if err == nil {
			pubsubClient = c
			log.Printf("pubsub client ready (project_id=%s attempt=%d)", projectID, attempt)
			return c, nil
		}
		sleep := retryBackoff(attempt)
		log.Printf("failed to init pubsub client (project_id=%s attempt=%d): %v; retrying in %s", projectID, attempt, err, sleep)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("pubsub client: %w", ctx.Err())
		case <-time.After(sleep):
		}
	}
}

// PublishJSON publishes obj as a JSON message with the given attributes and
// returns the server-assigned message id.
func PublishJSON(ctx context.Context, topicName string, obj any, attributes map[string]string) (string, error) {
	if topicName == "" {
		return "", errors.New("PUBSUB_TOPIC is required")
	}
	client, err := GetPubSubClient(ctx)
	if err != nil {
		return "", err
	}

	pubsubClientMu.Lock()
	t, ok := pubsubTopics[topicName]
	if !ok {
		t = client.Topic(topicName)
		pubsubTopics[topicName] = t
	}
	pubsubClientMu.Unlock()

	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	result := t.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	})
	return result.Get(ctx)
}

// ClosePubSub flushes pending publishes and closes the client.
func ClosePubSub() {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	for _, t := range pubsubTopics {
		t.Stop()
	}
	pubsubTopics = map[string]*pubsub.Topic{}
	if pubsubClient != nil {
		_ = pubsubClient.Close()
		pubsubClient = nil
	}
}
