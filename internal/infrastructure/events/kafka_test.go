package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargotrack-api/internal/application/shipment"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/events"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
)

// fakeWriter registra los mensajes escritos.
type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_ClaveEsElEmbarque(t *testing.T) {
	fw := &fakeWriter{}
	p := events.NewKafkaPublisherWithWriter(fw, logger.Nop())
	evt := shipment.VersionCreatedEvent{
		Type:       shipment.EventTypeVersionCreated,
		ShipmentID: "01HZXSHIP",
		VersionID:  "01HZXVER",
		Version:    3,
		Status:     "ARRIVED",
		OccurredAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.PublishVersionCreated(context.Background(), evt))
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, "01HZXSHIP", string(fw.msgs[0].Key))

	var got shipment.VersionCreatedEvent
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &got))
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, "ARRIVED", got.Status)
}

func TestKafkaPublisher_PropagaErrorDelWriter(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker caído")}
	p := events.NewKafkaPublisherWithWriter(fw, logger.Nop())

	err := p.PublishVersionCreated(context.Background(), shipment.VersionCreatedEvent{ShipmentID: "S"})
	assert.Error(t, err)
}
