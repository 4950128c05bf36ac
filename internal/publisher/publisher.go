package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CoinRadar/internal/model"
)

// Message is the payload published once per refresh cycle.
type Message struct {
	CycleID     string                `json:"cycle_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Ranking     model.RankedSelection `json:"ranking"`
}

// Publisher delivers a cycle's ranking to an external sink.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
	Name() string
	Close() error
}

// Multi fans a message out to every publisher. A failing sink does not stop the others.
type Multi struct {
	publishers []Publisher
	// OnError is called once per failing sink.
	OnError func(sink string, err error)
}

func NewMulti(publishers ...Publisher) *Multi {
	return &Multi{publishers: publishers}
}

func (m *Multi) Name() string { return "multi" }

// Len reports how many sinks are configured.
func (m *Multi) Len() int { return len(m.publishers) }

func (m *Multi) Publish(ctx context.Context, msg *Message) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, msg); err != nil {
			if m.OnError != nil {
				m.OnError(p.Name(), err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
