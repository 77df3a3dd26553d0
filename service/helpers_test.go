package service

import (
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/stretchr/testify/mock"
)

var testGameTypes = NewGameTypes([]string{"alps", "world", "switzerland"})

// testMocks bundles one unit of work with its mocked repositories
type testMocks struct {
	factory     *MockUnitOfWorkFactory
	uow         *MockUnitOfWork
	gameResults *MockGameResultRepository
	rankings    *MockRankingAggregateRepository
	duelResults *MockDuelResultRepository
	duelStats   *MockDuelStatRepository
	locker      *MockPartitionLocker
	publisher   *MockEventPublisher
}

func newTestMocks() *testMocks {
	m := &testMocks{
		factory:     new(MockUnitOfWorkFactory),
		uow:         new(MockUnitOfWork),
		gameResults: new(MockGameResultRepository),
		rankings:    new(MockRankingAggregateRepository),
		duelResults: new(MockDuelResultRepository),
		duelStats:   new(MockDuelStatRepository),
		locker:      new(MockPartitionLocker),
		publisher:   new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.gameResults, m.rankings, m.duelResults, m.duelStats, m.locker, m.publisher)
	m.factory.On("Create").Return(m.uow)
	return m
}

// expectReadTransaction sets up a unit of work that is begun and rolled back
func (m *testMocks) expectReadTransaction() {
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Rollback").Return(nil)
}

// expectWriteTransaction also expects a commit
func (m *testMocks) expectWriteTransaction() {
	m.expectReadTransaction()
	m.uow.On("Commit").Return(nil)
}

func (m *testMocks) assertAll(t mock.TestingT) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.gameResults.AssertExpectations(t)
	m.rankings.AssertExpectations(t)
	m.duelResults.AssertExpectations(t)
	m.duelStats.AssertExpectations(t)
	m.locker.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func periodPtr(p models.Period) *models.Period {
	return &p
}
