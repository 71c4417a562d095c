package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventEnvelope(t *testing.T) {
	e := NewEvent(TypeDepositCredited, "deposit-service", DepositPayload{DepositID: 9, Reference: "ref-9"}).
		WithMetadata("provider", "cashonrails")

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.NotEmpty(t, decoded["event_id"])
	assert.Equal(t, "deposit.credited.v1", decoded["event_type"])
	assert.Equal(t, "ref-9", decoded["payload"].(map[string]any)["reference"])
	assert.Equal(t, "cashonrails", decoded["metadata"].(map[string]any)["provider"])
}

func TestEventIDsSortByCreation(t *testing.T) {
	first := NewEvent(TypeDepositCredited, "test", nil)
	second := NewEvent(TypeDepositCredited, "test", nil)

	assert.Len(t, first.EventID, 26)
	assert.Less(t, first.EventID, second.EventID)
}

func TestNewPublisherWithoutBrokersIsNoop(t *testing.T) {
	p := NewPublisher(nil)

	_, ok := p.(NoopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), TopicDepositCredited, NewEvent("x", "y", nil)))
	assert.NoError(t, p.Close())
}

func TestKafkaPublisherReusesWriterPerTopic(t *testing.T) {
	p := NewKafkaPublisher([]string{"127.0.0.1:9092"})

	a := p.getWriter(TopicWithdrawalCompleted)
	b := p.getWriter(TopicWithdrawalCompleted)
	c := p.getWriter(TopicWithdrawalRefunded)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.NoError(t, p.Close())
}
