package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/codejourney/internal/config"
	"github.com/khoahotran/codejourney/internal/domain/lookup"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/pkg/logger"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishLookupEvent_RoundTrip(t *testing.T) {
	w := &captureWriter{}
	c := &KafkaProducerClient{LookupEventsWriter: w, logger: logger.NewNop()}

	e := lookup.Event{
		EventType: lookup.EventSucceeded,
		LookupID:  uuid.New(),
		SessionID: uuid.New(),
		Platform:  platform.GeeksForGeeks,
		Kind:      platform.KindJSON,
		Handle:    "tourist",
		Theme:     platform.ThemeLight,
		Payload:   json.RawMessage(`{"info":{"userName":"tourist"}}`),
		FetchedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.PublishLookupEvent(context.Background(), e))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "tourist", string(w.msgs[0].Key))

	got, err := DecodeLookupEvent(w.msgs[0])
	require.NoError(t, err)
	assert.Equal(t, e.LookupID, got.LookupID)
	assert.Equal(t, e.Platform, got.Platform)
	assert.True(t, e.FetchedAt.Equal(got.FetchedAt))
	assert.JSONEq(t, string(e.Payload), string(got.Payload))

	c.Close()
	assert.True(t, w.closed)
}

func TestPublishLookupEvent_WriterError(t *testing.T) {
	c := &KafkaProducerClient{LookupEventsWriter: &captureWriter{err: errors.New("broker down")}, logger: logger.NewNop()}
	err := c.PublishLookupEvent(context.Background(), lookup.Event{Handle: "tourist"})
	assert.ErrorContains(t, err, "broker down")
}

func TestDecodeLookupEvent_Garbage(t *testing.T) {
	_, err := DecodeLookupEvent(kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestNewKafkaProducerClient_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaProducerClient(config.Config{}, logger.NewNop())
	assert.Error(t, err)
}
