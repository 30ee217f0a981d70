// Package notify publishes completed build passes to NATS so other systems
// (deploy hooks, dashboards) can react without polling.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Publisher emits one event per completed build pass.
type Publisher interface {
	PublishPass(result *build.PassResult) error
	Close()
}

// Event is the JSON payload published per pass.
type Event struct {
	BuildID        string    `json:"build_id"`
	Kind           string    `json:"kind"`
	NoOp           bool      `json:"noop"`
	Rendered       []string  `json:"rendered,omitempty"`
	Written        []string  `json:"written,omitempty"`
	RemovedOutputs []string  `json:"removed_outputs,omitempty"`
	DurationMS     int64     `json:"duration_ms"`
	CompletedAt    time.Time `json:"completed_at"`
}

// NATSPublisher publishes pass events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	log     *slog.Logger
}

// NewNATSPublisher connects to NATS.
func NewNATSPublisher(url, subject string, log *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Info("NATS publisher connected", slog.String("url", url), slog.String("subject", subject))
	return &NATSPublisher{conn: conn, subject: subject, log: log}, nil
}

func (p *NATSPublisher) PublishPass(result *build.PassResult) error {
	payload, err := json.Marshal(Event{
		BuildID:        result.ID,
		Kind:           result.Kind,
		NoOp:           result.NoOp,
		Rendered:       result.Rendered,
		Written:        result.Written,
		RemovedOutputs: result.RemovedOutputs,
		DurationMS:     result.Duration.Milliseconds(),
		CompletedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal pass event: %w", err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish pass event: %w", err)
	}
	p.log.Debug("published pass event", logfields.BuildID(result.ID))
	return nil
}

func (p *NATSPublisher) Close() {
	p.conn.Close()
}
