package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/events"
	"github.com/MichiMauch/geomaster.world-sub001/repository/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitFlushesAndRollbackDiscards(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	received := make(chan events.Event, 4)
	bus.Subscribe(events.EventTypeResultRecorded, func(ctx context.Context, event events.Event) {
		received <- event
	})

	at := time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)

	t.Run("rollback drops writes and events", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		_, err := uow.GameResultRepository().Insert(ctx, testutil.CreateTestGameResult("rolled-back", "p", "alps", 10, at))
		require.NoError(t, err)
		uow.EventBus().Publish(events.ResultRecordedEvent{GameID: "rolled-back"})
		require.NoError(t, uow.Rollback())

		stored, err := NewGameResultRepository(testDB.DB).GetByGameID(ctx, "rolled-back")
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("commit persists and emits", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		_, err := uow.GameResultRepository().Insert(ctx, testutil.CreateTestGameResult("committed", "p", "alps", 10, at))
		require.NoError(t, err)
		uow.EventBus().Publish(events.ResultRecordedEvent{GameID: "committed"})
		require.NoError(t, uow.Commit())
		require.NoError(t, uow.Rollback(), "rollback after commit is a no-op")

		select {
		case ev := <-received:
			assert.Equal(t, "committed", ev.(events.ResultRecordedEvent).GameID)
		case <-time.After(2 * time.Second):
			t.Fatal("event was not delivered after commit")
		}
		assert.Empty(t, received, "rolled back event must never be delivered")
	})

	t.Run("getters panic before begin", func(t *testing.T) {
		uow := factory.Create()
		assert.Panics(t, func() { uow.GameResultRepository() })
		assert.Panics(t, func() { uow.PartitionLocker() })
	})
}

func TestPartitionLocker_SerializesTransactions(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	ctx := context.Background()

	holder := factory.Create()
	require.NoError(t, holder.Begin(ctx))
	require.NoError(t, holder.PartitionLocker().Lock(ctx, "duel:alps"))

	var wg sync.WaitGroup
	acquired := make(chan time.Time, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		waiter := factory.Create()
		if err := waiter.Begin(ctx); err != nil {
			t.Errorf("begin: %v", err)
			return
		}
		defer waiter.Rollback()
		if err := waiter.PartitionLocker().Lock(ctx, "duel:alps"); err != nil {
			t.Errorf("lock: %v", err)
			return
		}
		acquired <- time.Now()
	}()

	select {
	case <-acquired:
		t.Fatal("second transaction acquired a held lock")
	case <-time.After(300 * time.Millisecond):
	}

	released := time.Now()
	require.NoError(t, holder.Commit())
	wg.Wait()

	got := <-acquired
	assert.False(t, got.Before(released))
}
