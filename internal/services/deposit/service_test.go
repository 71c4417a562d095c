package deposit

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	apperrors "cashon/internal/errors"
	"cashon/internal/events"
	"cashon/internal/models"
	"cashon/internal/repositories"
	"cashon/internal/services/activity"
	"cashon/internal/services/notification"
	"cashon/internal/services/wallet"
	"cashon/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	store     *repositories.Store
	wallets   wallet.Service
	svc       *Service
	publisher *recordingPublisher
	user      *models.User
	pocket    *models.Wallet
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	user := testutil.SeedUser(t, store)
	wallets := wallet.NewService(store, nil, wallet.WalletConfig{}, nil)
	created, err := wallets.CreateWallets(context.Background(), user.ID)
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	svc := NewService(store, wallets, notification.NewService(store), activity.NewService(store), publisher)
	return &fixture{store: store, wallets: wallets, svc: svc, publisher: publisher, user: user, pocket: &created[1]}
}

func (f *fixture) event(t *testing.T, reference string) *Event {
	t.Helper()
	body := `{
		"event": "transaction",
		"data": {
			"reference": "` + reference + `",
			"status": "success",
			"amount": "5000.00",
			"currency": "NGN",
			"channel": "banktransfer",
			"customerinfo": {"email": "` + f.user.Email + `"}
		},
		"sender_details": {"sender_account_name": "Bola Ade", "sender_bank": "GTB"}
	}`
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(body), &ev))
	return &ev
}

func (f *fixture) depositCount(t *testing.T) int {
	t.Helper()
	items, err := f.store.Deposits.ListByUser(context.Background(), f.user.ID, 100, 0)
	require.NoError(t, err)
	return len(items)
}

func (f *fixture) balance(t *testing.T) string {
	t.Helper()
	b, err := f.wallets.GetBalance(context.Background(), f.pocket.ID)
	require.NoError(t, err)
	return b.StringFixed(2)
}

func TestIngestCreditsPocketWallet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ack, err := f.svc.Ingest(ctx, f.event(t, "dep-1"))
	require.NoError(t, err)
	assert.Equal(t, Ack{Success: true, Message: "success"}, ack)
	assert.Equal(t, "5000.00", f.balance(t))

	d, err := f.store.Deposits.GetByReference(ctx, "dep-1")
	require.NoError(t, err)
	assert.Equal(t, models.DepositSuccessful, d.Status)
	assert.Equal(t, "Bola Ade", d.Meta["sender_account_name"])

	entry, err := f.store.Wallets.GetTransactionByReference(ctx, "dep-1")
	require.NoError(t, err)
	assert.Equal(t, models.SourceDeposit, entry.Source)
	assert.Equal(t, "Deposit successful from Bola Ade", entry.Note)

	notes, err := f.store.Notifications.ListByUser(ctx, f.user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Transfer Received", notes[0].Title)
	assert.Equal(t, "Add Money, From Bola Ade", notes[0].Description)

	acts, err := f.store.Activities.ListByRelated(ctx, models.RelatedRef{Kind: models.RelatedDeposit, ID: d.ID})
	require.NoError(t, err)
	assert.Len(t, acts, 1)

	assert.Equal(t, []string{events.TopicDepositCredited}, f.publisher.topics)
}

func TestIngestReplayIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, f.event(t, "dep-1"))
	require.NoError(t, err)

	ack, err := f.svc.Ingest(ctx, f.event(t, "dep-1"))
	require.NoError(t, err)
	assert.Equal(t, "duplicate", ack.Message)
	assert.True(t, ack.Success)

	assert.Equal(t, 1, f.depositCount(t))
	assert.Equal(t, "5000.00", f.balance(t))
}

func TestIngestConcurrentReplays(t *testing.T) {
	f := setup(t)

	const replays = 5
	var wg sync.WaitGroup
	for i := 0; i < replays; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ack, err := f.svc.Ingest(context.Background(), f.event(t, "dep-race"))
			assert.NoError(t, err)
			assert.True(t, ack.Success)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.depositCount(t))
	assert.Equal(t, "5000.00", f.balance(t))

	history, err := f.wallets.GetTransactionHistory(context.Background(), f.pocket.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestIngestSkipsInapplicableEvents(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name   string
		mutate func(ev *Event)
	}{
		{"failed status", func(ev *Event) { ev.Data.Status = "failed" }},
		{"card channel", func(ev *Event) { ev.Data.Channel = "card" }},
		{"unknown email", func(ev *Event) { ev.Data.CustomerInfo.Email = "nobody@example.com" }},
		{"no customer", func(ev *Event) { ev.Data.CustomerInfo = nil }},
		{"other event", func(ev *Event) { ev.Event = "payout" }},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := f.event(t, "skip-"+string(rune('a'+i)))
			tt.mutate(ev)

			ack, err := f.svc.Ingest(context.Background(), ev)
			require.NoError(t, err)
			assert.Equal(t, "success", ack.Message)
		})
	}

	assert.Equal(t, 0, f.depositCount(t))
	assert.Equal(t, "0.00", f.balance(t))
}

func TestIngestRejectsMalformedEvents(t *testing.T) {
	f := setup(t)

	noReference := f.event(t, "")

	tests := []struct {
		name string
		ev   *Event
	}{
		{"nil", nil},
		{"no event", &Event{Data: &EventData{Reference: "x"}}},
		{"no data", &Event{Event: EventTransaction}},
		{"no reference", noReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Ingest(context.Background(), tt.ev)
			assert.ErrorIs(t, err, apperrors.ErrMalformedEvent)
		})
	}
}

func TestEventAcceptsNumericAmount(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"event":"transaction","data":{"reference":"r","amount":1250.5,"sender_details":{"sender_account_name":"Nested"}}}`), &ev))

	assert.Equal(t, "1250.50", ev.Data.Amount.StringFixed(2))
	assert.Equal(t, "Nested", senderName(ev.senderDetails()))
}

func TestListAndGetAreScopedToOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, ref := range []string{"dep-a", "dep-b"} {
		_, err := f.svc.Ingest(ctx, f.event(t, ref))
		require.NoError(t, err)
	}

	items, err := f.svc.List(ctx, f.user.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "dep-b", items[0].Reference)

	got, err := f.svc.Get(ctx, f.user.ID, items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "dep-a", got.Reference)
	assert.Equal(t, "5000.00", got.Amount.StringFixed(2))

	other := testutil.SeedUser(t, f.store)
	_, err = f.svc.Get(ctx, other.ID, got.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.svc.Get(ctx, f.user.ID, 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	mine, err := f.svc.List(ctx, other.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
