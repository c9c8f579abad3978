// Package audit publishes an event to Kafka for every ACL mutation the
// service performs.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/danishnajam/kafka/internal/observability"
	"github.com/danishnajam/kafka/pkg/acl"
)

// Event is one audit record. For deletions, Binding is the removed
// binding; for filter-level failures, Filter and Error are set instead.
type Event struct {
	Action    string       `json:"action"` // "delete", "create", "delete_failed"
	RequestID string       `json:"request_id,omitempty"`
	Binding   *acl.Binding `json:"binding,omitempty"`
	Filter    string       `json:"filter,omitempty"`
	Error     string       `json:"error,omitempty"`
	TS        time.Time    `json:"ts"`
}

// Publisher writes events through a sarama async producer. Publishing
// never blocks the caller: events are dropped (and counted) when the
// queue is full.
type Publisher struct {
	topic   string
	events  chan Event
	prod    sarama.AsyncProducer
	logger  *slog.Logger
	stopped chan struct{}
}

func NewPublisher(brokers []string, topic string, queueSize int, logger *slog.Logger) (*Publisher, error) {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = false

	prod, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("audit: create async producer: %w", err)
	}

	p := &Publisher{
		topic:   topic,
		events:  make(chan Event, queueSize),
		prod:    prod,
		logger:  logger,
		stopped: make(chan struct{}),
	}

	go func() {
		defer close(p.stopped)
		for ev := range p.events {
			b, err := json.Marshal(ev)
			if err != nil {
				observability.IncAudit("error")
				p.logger.Error("audit marshal failed", "err", err)
				continue
			}
			p.prod.Input() <- &sarama.ProducerMessage{
				Topic: p.topic,
				Value: sarama.ByteEncoder(b),
			}
			observability.IncAudit("published")
		}
	}()

	go func() {
		for err := range p.prod.Errors() {
			if err != nil {
				observability.IncAudit("error")
				p.logger.Error("audit producer error", "err", err)
			}
		}
	}()

	return p, nil
}

// Publish enqueues ev, dropping it if the queue is full.
func (p *Publisher) Publish(ev Event) {
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	select {
	case p.events <- ev:
	default:
		observability.IncAudit("dropped")
	}
}

// Deleted records one removed binding.
func (p *Publisher) Deleted(requestID string, b acl.Binding) {
	p.Publish(Event{Action: "delete", RequestID: requestID, Binding: &b})
}

// DeleteFailed records a filter whose delete did not complete.
func (p *Publisher) DeleteFailed(requestID string, f acl.BindingFilter, err error) {
	p.Publish(Event{Action: "delete_failed", RequestID: requestID, Filter: f.String(), Error: err.Error()})
}

// Created records one stored binding.
func (p *Publisher) Created(requestID string, b acl.Binding) {
	p.Publish(Event{Action: "create", RequestID: requestID, Binding: &b})
}

// Close drains the queue and shuts the producer down.
func (p *Publisher) Close() error {
	close(p.events)
	<-p.stopped
	return p.prod.Close()
}
