package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/tilestudio/site/pkg/kafka"
	"github.com/tilestudio/site/pkg/logger"
)

// Event type and topic of a catalog revalidation.
const (
	TypeCatalogRevalidated = "catalog.revalidated"
	AggregateTypeCatalog   = "catalog"
	SourceSite             = "site"
)

// TopicCatalogRevalidated carries revalidations to every instance.
var TopicCatalogRevalidated = pkgkafka.Topic("catalog", "revalidated")

// CatalogRevalidatedData is the payload of a catalog.revalidated event.
type CatalogRevalidatedData struct {
	// Origin is the instance that received the webhook.
	Origin  string   `json:"origin"`
	Reason  string   `json:"reason,omitempty"`
	Entries []string `json:"entries,omitempty"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog events.
type Producer struct {
	kafka    publisher
	instance string
	logger   *slog.Logger
}

// NewProducer creates a producer that stamps events with instance.
func NewProducer(kafka publisher, instance string, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, instance: instance, logger: logger}
}

// PublishCatalogRevalidated announces that the catalog cache was dropped.
func (p *Producer) PublishCatalogRevalidated(ctx context.Context, reason string, entries []string) error {
	data := CatalogRevalidatedData{Origin: p.instance, Reason: reason, Entries: entries}

	ev, err := pkgkafka.NewEvent(TypeCatalogRevalidated, AggregateTypeCatalog, AggregateTypeCatalog, SourceSite, data)
	if err != nil {
		return fmt.Errorf("create catalog.revalidated event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, TopicCatalogRevalidated, ev); err != nil {
		return fmt.Errorf("publish catalog.revalidated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published catalog.revalidated event",
		slog.String("event_id", ev.EventID),
		slog.Int("entries", len(entries)),
	)
	return nil
}

// Invalidator drops cached catalog data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// RevalidationHandler returns a consumer handler that invalidates cache on
// revalidations announced by other instances. Events from instance itself
// are skipped since the webhook already invalidated locally.
func RevalidationHandler(cache Invalidator, instance string, l *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, ev *pkgkafka.Event) error {
		if ev.EventType != TypeCatalogRevalidated {
			return nil
		}

		var data CatalogRevalidatedData
		if err := ev.UnmarshalData(&data); err != nil {
			// Retrying cannot fix a malformed payload.
			l.WarnContext(ctx, "invalid catalog.revalidated payload",
				slog.String("event_id", ev.EventID),
				slog.String("error", err.Error()),
			)
			return nil
		}
		if data.Origin == instance {
			return nil
		}

		if err := cache.Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidate catalog cache: %w", err)
		}
		l.InfoContext(ctx, "catalog cache invalidated by event",
			slog.String("event_id", ev.EventID),
			slog.String("origin", data.Origin),
			slog.String("correlation_id", ev.CorrelationID),
		)
		return nil
	}
}

// ConsumerGroup returns the consumer group of instance. Every instance
// reads in its own group so each one sees every revalidation.
func ConsumerGroup(instance string) string {
	return "site-catalog-cache-" + instance
}
