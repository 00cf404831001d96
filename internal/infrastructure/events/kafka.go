// Package events publica eventos de dominio en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/cargotrack-api/internal/application/shipment"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
)

var (
	_ shipment.EventPublisher = (*KafkaPublisher)(nil)
	_ shipment.EventPublisher = NopPublisher{}
)

// Writer subconjunto de *kafka.Writer usado por el publicador.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica cada versión creada con el id del embarque como clave,
// de modo que las versiones de un embarque quedan en la misma partición y en orden.
type KafkaPublisher struct {
	writer Writer
	log    *logger.Logger
}

// NewKafkaPublisher crea el writer para los brokers y el tópico dados.
func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}, log)
}

// NewKafkaPublisherWithWriter permite inyectar el writer (tests).
func NewKafkaPublisherWithWriter(w Writer, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log.Component("events")}
}

func (p *KafkaPublisher) PublishVersionCreated(ctx context.Context, evt shipment.VersionCreatedEvent) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("events: serializar: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.ShipmentID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: kafka write: %w", err)
	}
	p.log.Debug().
		Str("shipment_id", evt.ShipmentID).
		Int("version", evt.Version).
		Msg("evento publicado")
	return nil
}

// Close cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher descarta los eventos (KAFKA_BROKERS vacío).
type NopPublisher struct{}

func (NopPublisher) PublishVersionCreated(context.Context, shipment.VersionCreatedEvent) error {
	return nil
}
