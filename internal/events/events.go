// Package events publishes ledger domain events to Kafka.
package events

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is the envelope for every published message.
type Event struct {
	EventID    string            `json:"event_id"`
	EventType  string            `json:"event_type"`
	OccurredAt time.Time         `json:"occurred_at"`
	Source     string            `json:"source"`
	Payload    any               `json:"payload"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// newEventID returns a ULID so event ids sort by creation time.
func newEventID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

func NewEvent(eventType, source string, payload any) *Event {
	now := time.Now().UTC()
	return &Event{
		EventID:    newEventID(now),
		EventType:  eventType,
		OccurredAt: now,
		Source:     source,
		Payload:    payload,
		Metadata:   make(map[string]string),
	}
}

func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// Topics. Naming: cashon.<domain>.<action>
const (
	TopicWithdrawalCompleted = "cashon.withdrawals.completed"
	TopicWithdrawalRefunded  = "cashon.withdrawals.refunded"
	TopicWithdrawalFailed    = "cashon.withdrawals.failed"
	TopicWithdrawalAmbiguous = "cashon.withdrawals.ambiguous"
	TopicDepositCredited     = "cashon.deposits.credited"
	TopicInterestAccrued     = "cashon.savings.interest_accrued"
	TopicSavingMatured       = "cashon.savings.matured"
)

// Event types carry a version suffix.
const (
	TypeWithdrawalCompleted = "withdrawal.completed.v1"
	TypeWithdrawalRefunded  = "withdrawal.refunded.v1"
	TypeWithdrawalFailed    = "withdrawal.failed.v1"
	TypeWithdrawalAmbiguous = "withdrawal.ambiguous.v1"
	TypeDepositCredited     = "deposit.credited.v1"
	TypeInterestAccrued     = "savings.interest_accrued.v1"
	TypeSavingMatured       = "savings.matured.v1"
)

// Publisher publishes events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, *Event) error { return nil }
func (NoopPublisher) Close() error                                  { return nil }
