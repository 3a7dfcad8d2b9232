// Package publisher announces applied waypoint changes on NATS.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// Metrics records publish outcomes.
type Metrics interface {
	PublishedInc()
	PublishErrInc()
	PublishObserve(d time.Duration)
	SetConnected(connected bool)
}

// conn is the subset of *nats.Conn the notifier uses.
type conn interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes every domain.Change as JSON on
// "<prefix>.waypoint.<action>".
type NATSNotifier struct {
	nc      conn
	close   func()
	prefix  string
	metrics Metrics
	log     *slog.Logger
}

// ChangeMessage is the JSON payload of a change notification.
type ChangeMessage struct {
	Action     domain.ChangeAction `json:"action"`
	WaypointID string              `json:"waypointId"`
	Waypoint   domain.Waypoint     `json:"waypoint"`
	At         time.Time           `json:"at"`
}

// NewNATSNotifier connects to url. m and log may be nil.
func NewNATSNotifier(url, prefix string, m Metrics, log *slog.Logger) (*NATSNotifier, error) {
	if log == nil {
		log = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("itinerary-api"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.SetConnected(false)
			}
			log.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(true)
			}
			log.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(false)
			}
			log.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("publisher.NewNATSNotifier: %w", err)
	}
	if m != nil {
		m.SetConnected(true)
	}
	n := newNotifier(nc, prefix, m, log)
	n.close = func() {
		_ = nc.Drain()
		nc.Close()
	}
	return n, nil
}

func newNotifier(nc conn, prefix string, m Metrics, log *slog.Logger) *NATSNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &NATSNotifier{nc: nc, prefix: prefix, metrics: m, log: log}
}

// Close drains and closes the connection.
func (n *NATSNotifier) Close() {
	if n.close != nil {
		n.close()
	}
}

// Notify publishes change. It does not wait for delivery.
func (n *NATSNotifier) Notify(ctx context.Context, change domain.Change) error {
	subject := Subject(n.prefix, change.Action)
	b, err := json.Marshal(ChangeMessage{
		Action:     change.Action,
		WaypointID: change.Waypoint.ID,
		Waypoint:   change.Waypoint,
		At:         change.At,
	})
	if err != nil {
		return fmt.Errorf("publisher.NATSNotifier.Notify: %w", err)
	}

	start := time.Now()
	err = n.nc.Publish(subject, b)
	if n.metrics != nil {
		n.metrics.PublishObserve(time.Since(start))
		if err != nil {
			n.metrics.PublishErrInc()
		} else {
			n.metrics.PublishedInc()
		}
	}
	if err != nil {
		return fmt.Errorf("publisher.NATSNotifier.Notify: %w", err)
	}
	n.log.DebugContext(ctx, "change published", "subject", subject, "waypoint_id", change.Waypoint.ID)
	return nil
}

// Subject returns the NATS subject for action under prefix.
// An empty prefix yields "waypoint.<action>".
func Subject(prefix string, action domain.ChangeAction) string {
	s := "waypoint." + subjectToken(string(action))
	if p := strings.Trim(strings.TrimSpace(prefix), "."); p != "" {
		parts := strings.Split(p, ".")
		for i := range parts {
			parts[i] = subjectToken(parts[i])
		}
		s = strings.Join(parts, ".") + "." + s
	}
	return s
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS tokens cannot contain spaces, '>', '*' or '.'.
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
