// Package events publishes pipeline events to NATS for dashboard consumers.
// Publishing is best-effort: the pipeline never fails because an event could
// not be delivered, and a nil Publisher is a no-op.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// Subjects emitted by the pipeline.
const (
	SubjectLeadCreated       = "leadflow.lead.created"
	SubjectInteractionLogged = "leadflow.interaction.logged"
)

// Publisher wraps a NATS connection.
type Publisher struct {
	conn   *nats.Conn
	logger *logger.Logger
}

// Connect establishes a NATS connection for event publishing.
func Connect(url, token string, log *logger.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{conn: nc, logger: log}, nil
}

// Publish marshals v and publishes it to subject. Errors are logged, never
// returned.
func (p *Publisher) Publish(subject string, v any) {
	if p == nil || p.conn == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// IsConnected reports NATS connectivity.
func (p *Publisher) IsConnected() bool {
	return p != nil && p.conn != nil && p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Close()
	}
}
