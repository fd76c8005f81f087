package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Publisher drena el outbox hacia Kafka en lotes. Corre como goroutine
// propia: el request que generó el evento nunca espera al broker.
type Publisher struct {
	outbox    OutboxRepository
	logger    *logrus.Entry
	brokers   []string
	topic     string
	pollEvery time.Duration
	batchSize int
}

type PublisherConfig struct {
	// Brokers es la lista separada por comas; vacía deshabilita el publicador.
	Brokers   string
	Topic     string
	PollEvery time.Duration
	BatchSize int
}

func NewPublisher(outbox OutboxRepository, logger *logrus.Entry, cfg PublisherConfig) *Publisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Topic == "" {
		cfg.Topic = "clinic.appointments"
	}
	return &Publisher{
		outbox:    outbox,
		logger:    logger,
		brokers:   splitBrokers(cfg.Brokers),
		topic:     cfg.Topic,
		pollEvery: cfg.PollEvery,
		batchSize: cfg.BatchSize,
	}
}

func (p *Publisher) Run(ctx context.Context) {
	if len(p.brokers) == 0 {
		p.logger.Warn("outbox publisher deshabilitado (sin brokers de kafka configurados)")
		return
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  p.brokers,
		Topic:    p.topic,
		Balancer: &kafka.Hash{},
	})
	defer writer.Close()

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.publishBatch(ctx, writer); err != nil {
				p.logger.WithError(err).Error("fallo al publicar el lote del outbox")
			}
		}
	}
}

func (p *Publisher) publishBatch(ctx context.Context, writer *kafka.Writer) error {
	events, err := p.outbox.FetchUnpublished(ctx, p.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(evt.AggregateID),
			Value: evt.Payload,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(evt.ID)},
				{Key: "event_type", Value: []byte(evt.EventType)},
			},
		})
	}
	if err := writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}

	ids := make([]string, 0, len(events))
	for _, evt := range events {
		ids = append(ids, evt.ID)
	}
	return p.outbox.MarkPublished(ctx, ids)
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
