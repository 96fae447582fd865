package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/noah-isme/almacen-api/internal/models"
)

// activityEvent is the wire shape of a published activity.
type activityEvent struct {
	Source   string          `json:"source"`
	Activity models.Activity `json:"activity"`
	SentAt   time.Time       `json:"sent_at"`
}

// NATSPublisher publishes committed activities on "<prefix>.activities".
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	source  string
}

// NewNATSPublisher constructs a publisher. A nil connection yields nil so
// callers can pass the result straight into RecorderDeps.
func NewNATSPublisher(conn *nats.Conn, subjectPrefix, source string) Publisher {
	if conn == nil {
		return nil
	}
	prefix := strings.Trim(strings.ReplaceAll(subjectPrefix, ":", "."), ".")
	if prefix == "" {
		prefix = "almacen"
	}
	return &NATSPublisher{conn: conn, subject: prefix + ".activities", source: source}
}

// Subject returns the subject activities are published on.
func (p *NATSPublisher) Subject() string {
	return p.subject
}

func (p *NATSPublisher) Publish(ctx context.Context, records []models.Activity) error {
	for _, record := range records {
		payload, err := json.Marshal(activityEvent{Source: p.source, Activity: record, SentAt: time.Now().UTC()})
		if err != nil {
			return err
		}
		if err := p.conn.Publish(p.subject, payload); err != nil {
			return err
		}
	}
	return nil
}
