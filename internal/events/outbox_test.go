package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/venue-platform/pkg/logging"
)

type testEvent struct {
	Foo string `json:"foo"`
}

func (testEvent) EventType() string { return "test.v1" }

func TestOutboxStoreFlow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newOutboxStoreWithExec(mock)

	mock.ExpectExec("INSERT INTO outbox").
		WithArgs(pgxmock.AnyArg(), "reservation:1", "test.v1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	_, err = store.Append(context.Background(), "reservation:1", testEvent{Foo: "bar"})
	require.NoError(t, err)

	now := time.Now().UTC()
	id := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "aggregate", "event_type", "payload", "attempts", "created_at"}).
		AddRow(id, "reservation:1", "test.v1", []byte(`{"foo":"bar"}`), 0, now)
	mock.ExpectQuery("SELECT id").WithArgs(int32(10), 5).WillReturnRows(rows)

	entries, err := store.FetchPending(context.Background(), 10, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.JSONEq(t, `{"foo":"bar"}`, string(entries[0].Payload))

	mock.ExpectExec("UPDATE outbox").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := store.MarkDelivered(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec("UPDATE outbox").WithArgs(id, "smtp down").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, store.MarkFailed(context.Background(), id, errors.New("smtp down")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxAppendValidates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := newOutboxStoreWithExec(mock)

	_, err = store.Append(context.Background(), "", testEvent{})
	assert.Error(t, err)
	_, err = store.Append(context.Background(), "reservation:1", nil)
	assert.Error(t, err)

	mock.ExpectExec("INSERT INTO outbox").WillReturnError(errors.New("db down"))
	_, err = store.Append(context.Background(), "reservation:1", testEvent{})
	assert.ErrorContains(t, err, "insert outbox")
}

type fakeOutbox struct {
	entries   []OutboxEntry
	fetchErr  error
	delivered []uuid.UUID
	failed    []uuid.UUID
}

func (f *fakeOutbox) FetchPending(context.Context, int32, int) ([]OutboxEntry, error) {
	return f.entries, f.fetchErr
}

func (f *fakeOutbox) MarkDelivered(_ context.Context, id uuid.UUID) (bool, error) {
	f.delivered = append(f.delivered, id)
	return true, nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

type handlerFunc func(ctx context.Context, entry OutboxEntry) error

func (h handlerFunc) Handle(ctx context.Context, entry OutboxEntry) error { return h(ctx, entry) }

func TestDelivererDrain(t *testing.T) {
	good, bad := uuid.New(), uuid.New()
	store := &fakeOutbox{entries: []OutboxEntry{{ID: good, Type: "a"}, {ID: bad, Type: "b"}}}
	d := &Deliverer{
		store: store,
		handler: handlerFunc(func(_ context.Context, entry OutboxEntry) error {
			if entry.ID == bad {
				return errors.New("boom")
			}
			return nil
		}),
		logger:      logging.Discard(),
		batchSize:   10,
		maxAttempts: 3,
	}

	d.drain(context.Background())

	assert.Equal(t, []uuid.UUID{good}, store.delivered)
	assert.Equal(t, []uuid.UUID{bad}, store.failed)
}

func TestDelivererDrainFetchError(t *testing.T) {
	store := &fakeOutbox{fetchErr: errors.New("db down")}
	called := false
	d := &Deliverer{
		store:   store,
		handler: handlerFunc(func(context.Context, OutboxEntry) error { called = true; return nil }),
		logger:  logging.Discard(),
	}
	d.drain(context.Background())
	assert.False(t, called)
}

func TestDelivererStartStopsOnCancel(t *testing.T) {
	store := &fakeOutbox{}
	d := &Deliverer{
		store:    store,
		handler:  handlerFunc(func(context.Context, OutboxEntry) error { return nil }),
		logger:   logging.Discard(),
		interval: 5 * time.Millisecond,
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliverer did not stop")
	}
}

func TestNewDelivererOptions(t *testing.T) {
	d := NewDeliverer(nil, nil, nil).WithBatchSize(3).WithInterval(time.Minute).WithMaxAttempts(7).WithBatchSize(0)
	assert.Equal(t, int32(3), d.batchSize)
	assert.Equal(t, time.Minute, d.interval)
	assert.Equal(t, 7, d.maxAttempts)
	d.Start(context.Background())
}
