// Package nats publishes outbox events to a NATS subject.
package nats

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
)

const defaultFlushTimeout = 2 * time.Second

type Publisher struct {
	nc      *nats.Conn
	subject string
}

func NewPublisher(url, subject string, opts ...nats.Option) (*Publisher, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc, subject: subject}, nil
}

// Publish sends value and flushes so a nil error means the server has it.
// Core NATS has no message keys; key is ignored.
func (p *Publisher) Publish(ctx context.Context, key, value []byte) error {
	if err := p.nc.Publish(p.subject, value); err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		return p.nc.FlushTimeout(defaultFlushTimeout)
	}
	return p.nc.FlushWithContext(ctx)
}

func (p *Publisher) Close() error {
	p.nc.Close()
	return nil
}
