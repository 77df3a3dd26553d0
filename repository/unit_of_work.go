package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MichiMauch/geomaster.world-sub001/database"
	"github.com/MichiMauch/geomaster.world-sub001/events"
	"github.com/MichiMauch/geomaster.world-sub001/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	gameResultRepo   service.GameResultRepository
	rankingRepo      service.RankingAggregateRepository
	duelResultRepo   service.DuelResultRepository
	duelStatRepo     service.DuelStatRepository
	locker           service.PartitionLocker
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a read committed transaction and binds the repositories to it
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.gameResultRepo = newGameResultRepositoryWithTx(tx)
	u.rankingRepo = newRankingAggregateRepositoryWithTx(tx)
	u.duelResultRepo = newDuelResultRepositoryWithTx(tx)
	u.duelStatRepo = newDuelStatRepositoryWithTx(tx)
	u.locker = newPartitionLockerWithTx(tx)

	return nil
}

// Commit commits the transaction and then releases queued events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		u.tx = nil
		u.transactionalBus.Discard()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Flush()

	return nil
}

// Rollback rolls back the transaction. It is a no-op after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	u.transactionalBus.Discard()

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) GameResultRepository() service.GameResultRepository {
	if u.gameResultRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.gameResultRepo
}

func (u *unitOfWork) RankingAggregateRepository() service.RankingAggregateRepository {
	if u.rankingRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rankingRepo
}

func (u *unitOfWork) DuelResultRepository() service.DuelResultRepository {
	if u.duelResultRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.duelResultRepo
}

func (u *unitOfWork) DuelStatRepository() service.DuelStatRepository {
	if u.duelStatRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.duelStatRepo
}

func (u *unitOfWork) PartitionLocker() service.PartitionLocker {
	if u.locker == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.locker
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
