package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// mockConn is a hand-written test double for conn.
type mockConn struct {
	publish  func(subject string, data []byte) error
	subjects []string
	payloads [][]byte
}

func (m *mockConn) Publish(subject string, data []byte) error {
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, data)
	if m.publish != nil {
		return m.publish(subject, data)
	}
	return nil
}

var _ conn = (*mockConn)(nil)

type countingMetrics struct {
	published, errs, observed int
}

func (m *countingMetrics) PublishedInc()                { m.published++ }
func (m *countingMetrics) PublishErrInc()               { m.errs++ }
func (m *countingMetrics) PublishObserve(time.Duration) { m.observed++ }
func (m *countingMetrics) SetConnected(bool)            {}

func change(action domain.ChangeAction) domain.Change {
	return domain.Change{
		Action:   action,
		Waypoint: domain.Waypoint{ID: "wp-1", Type: domain.TypeFlight, City: "Geneva", Price: 300},
		At:       time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"itinerary", "itinerary.waypoint.create"},
		{"", "waypoint.create"},
		{"acme.trips", "acme.trips.waypoint.create"},
		{" my app. ", "my_app.waypoint.create"},
		{"a.*.b", "a._.b.waypoint.create"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.want, Subject(tt.prefix, domain.ActionCreate))
		})
	}
}

func TestNATSNotifier_Notify_PublishesJSON(t *testing.T) {
	nc := &mockConn{}
	m := &countingMetrics{}
	n := newNotifier(nc, "itinerary", m, nil)

	err := n.Notify(context.Background(), change(domain.ActionUpdate))

	require.NoError(t, err)
	require.Equal(t, []string{"itinerary.waypoint.update"}, nc.subjects)
	var msg ChangeMessage
	require.NoError(t, json.Unmarshal(nc.payloads[0], &msg))
	assert.Equal(t, domain.ActionUpdate, msg.Action)
	assert.Equal(t, "wp-1", msg.WaypointID)
	assert.Equal(t, "Geneva", msg.Waypoint.City)
	assert.Equal(t, 1, m.published)
	assert.Equal(t, 1, m.observed)
}

func TestNATSNotifier_Notify_PublishError(t *testing.T) {
	nc := &mockConn{publish: func(string, []byte) error { return errors.New("nats: connection closed") }}
	m := &countingMetrics{}
	n := newNotifier(nc, "itinerary", m, nil)

	err := n.Notify(context.Background(), change(domain.ActionDelete))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection closed")
	assert.Equal(t, 1, m.errs)
	assert.Zero(t, m.published)
}

func TestNATSNotifier_Close_WithoutConnection(t *testing.T) {
	n := newNotifier(&mockConn{}, "", nil, nil)

	assert.NotPanics(t, n.Close)
}
