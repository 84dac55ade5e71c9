package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Direction is whether a message was received from or sent to the user.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Message is one turn in a user's append-only conversation log.
type Message struct {
	ID        string            `json:"id"`
	Identity  string            `json:"identity"`
	Channel   string            `json:"channel"`
	Direction Direction         `json:"direction"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AppendMessage inserts a message. A missing ID gets a UUID and a zero
// timestamp gets the current time; messages are never updated afterward.
func (s *Store) AppendMessage(ctx context.Context, msg Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.Metadata == nil {
		msg.Metadata = map[string]string{}
	}

	meta, err := json.Marshal(msg.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling message metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, user_identity, channel, direction, content, timestamp, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Identity, msg.Channel, string(msg.Direction),
		msg.Content, msg.Timestamp.UTC().Format(time.RFC3339Nano), string(meta))
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

// LastMessages returns the user's most recent n messages ordered oldest to
// newest. Ordering is resolved in memory after timestamp normalization
// rather than trusting the stored text ordering.
func (s *Store) LastMessages(ctx context.Context, identity string, n int) ([]Message, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_identity, channel, direction, content, timestamp, metadata
		FROM messages WHERE user_identity = ?
		ORDER BY timestamp DESC LIMIT ?`, identity, n)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m        Message
			dir      string
			ts, meta string
		)
		if err := rows.Scan(&m.ID, &m.Identity, &m.Channel, &dir, &m.Content, &ts, &meta); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Direction = Direction(dir)
		m.Timestamp = ParseTimestampOr(ts, time.Time{})
		if err := json.Unmarshal([]byte(meta), &m.Metadata); err != nil {
			return nil, fmt.Errorf("decoding message metadata: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
