package event

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/tilestudio/site/pkg/kafka"
	"github.com/tilestudio/site/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestProducer_PublishCatalogRevalidated(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, "web-1", quietLogger())
	ctx := logger.WithCorrelationID(context.Background(), "corr-42")

	pub.On("Publish", ctx, "site.catalog.revalidated", mock.MatchedBy(func(ev *pkgkafka.Event) bool {
		var data CatalogRevalidatedData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return false
		}
		return ev.EventType == TypeCatalogRevalidated &&
			ev.CorrelationID == "corr-42" &&
			data.Origin == "web-1" &&
			data.Reason == "webhook"
	})).Return(nil)

	require.NoError(t, p.PublishCatalogRevalidated(ctx, "webhook", nil))
	pub.AssertExpectations(t)
}

func TestProducer_PublishError(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	err := NewProducer(pub, "web-1", quietLogger()).PublishCatalogRevalidated(context.Background(), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func revalidatedEvent(t *testing.T, origin string) *pkgkafka.Event {
	t.Helper()
	ev, err := pkgkafka.NewEvent(TypeCatalogRevalidated, AggregateTypeCatalog, AggregateTypeCatalog, SourceSite,
		CatalogRevalidatedData{Origin: origin})
	require.NoError(t, err)
	return ev
}

func TestRevalidationHandler(t *testing.T) {
	tests := []struct {
		name      string
		event     func(t *testing.T) *pkgkafka.Event
		wantCalls int
	}{
		{"other instance", func(t *testing.T) *pkgkafka.Event { return revalidatedEvent(t, "web-2") }, 1},
		{"own event", func(t *testing.T) *pkgkafka.Event { return revalidatedEvent(t, "web-1") }, 0},
		{"other type", func(t *testing.T) *pkgkafka.Event {
			ev := revalidatedEvent(t, "web-2")
			ev.EventType = "catalog.unknown"
			return ev
		}, 0},
		{"malformed payload", func(t *testing.T) *pkgkafka.Event {
			ev := revalidatedEvent(t, "web-2")
			ev.Data = json.RawMessage(`"oops"`)
			return ev
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &fakeInvalidator{}
			h := RevalidationHandler(inv, "web-1", quietLogger())

			require.NoError(t, h(context.Background(), tt.event(t)))
			assert.Equal(t, tt.wantCalls, inv.calls)
		})
	}
}

func TestRevalidationHandler_InvalidateError(t *testing.T) {
	inv := &fakeInvalidator{err: errors.New("redis down")}
	h := RevalidationHandler(inv, "web-1", quietLogger())

	err := h(context.Background(), revalidatedEvent(t, "web-2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestConsumerGroup(t *testing.T) {
	assert.Equal(t, "site-catalog-cache-web-1", ConsumerGroup("web-1"))
}
