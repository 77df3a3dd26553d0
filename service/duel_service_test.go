package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/events"
	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var duelNow = time.Date(2024, 4, 2, 18, 0, 0, 0, time.UTC)

func newTestDuelService(m *testMocks) *duelService {
	svc := NewDuelService(m.factory, testGameTypes, NewScoreThenTimeJudge(), nil).(*duelService)
	svc.now = fixedClock(duelNow)
	return svc
}

func duelInput(challengerScore, accepterScore int64) CompleteDuelInput {
	return CompleteDuelInput{
		DuelSeed: "seed-1",
		GameType: "alps",
		Challenger: models.DuelParticipant{
			PlayerID: "player-a", GameID: "game-a", Score: challengerScore, Time: 120,
			Profile: models.PlayerProfile{Name: stringPtr("Anna")},
		},
		Accepter: models.DuelParticipant{
			PlayerID: "player-b", GameID: "game-b", Score: accepterScore, Time: 100,
			Profile: models.PlayerProfile{Name: stringPtr("Ben")},
		},
	}
}

// expectDuelWrite sets up the common path of a first-time completion where
// player-a wins against player-b
func expectDuelWrite(m *testMocks, winnerStat, loserStat *models.DuelStat, earned int64) {
	ctx := mock.Anything
	m.expectWriteTransaction()
	m.locker.On("Lock", ctx, []string{"duel:alps"}).Return(nil)
	m.duelResults.On("Insert", ctx, mock.MatchedBy(func(d *models.DuelResult) bool {
		return d.DuelSeed == "seed-1" && d.WinnerID == "player-a" && d.ID != "" && d.CompletedAt.Equal(duelNow)
	})).Return(true, nil)
	m.duelStats.On("Get", ctx, "player-a", "alps").Return(winnerStat, nil)
	m.duelStats.On("Get", ctx, "player-b", "alps").Return(loserStat, nil)
	m.duelStats.On("RecordWin", ctx, "player-a", "alps", earned, mock.Anything).Return(nil)
	m.duelStats.On("RecordLoss", ctx, "player-b", "alps", mock.Anything).Return(nil)
	m.duelStats.On("ListPartition", ctx, "alps").Return([]*models.DuelStat{
		{PlayerID: "player-b", GameType: "alps", DuelPoints: 4, Losses: 1, TotalDuels: 1},
		{PlayerID: "player-a", GameType: "alps", DuelPoints: 13, Wins: 1, TotalDuels: 1},
	}, nil)
	m.duelStats.On("UpdateRanks", ctx, "alps", []models.RankUpdate{
		{PlayerID: "player-a", Rank: 1},
		{PlayerID: "player-b", Rank: 2},
	}).Return(nil)
}

func TestDuelService_CompleteDuel_LeaderWinsWithoutBonus(t *testing.T) {
	m := newTestMocks()
	svc := newTestDuelService(m)

	expectDuelWrite(m,
		&models.DuelStat{PlayerID: "player-a", GameType: "alps", DuelPoints: 10},
		&models.DuelStat{PlayerID: "player-b", GameType: "alps", DuelPoints: 4},
		3)
	m.publisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		ev, ok := e.(events.DuelCompletedEvent)
		return ok && ev.WinnerID == "player-a" && ev.PointsEarned == 3
	})).Return()

	outcome, err := svc.CompleteDuel(context.Background(), duelInput(900, 700))

	require.NoError(t, err)
	assert.False(t, outcome.Duplicate)
	assert.Equal(t, int64(10), outcome.WinnerPointsBefore)
	assert.Equal(t, int64(4), outcome.LoserPointsBefore)
	assert.Equal(t, int64(3), outcome.PointsEarned)
	assert.False(t, outcome.CatchUpBonusAwarded)
	assert.Equal(t, "player-a", outcome.Duel.WinnerID)
	m.assertAll(t)
}

func TestDuelService_CompleteDuel_UnderdogWinsWithBonus(t *testing.T) {
	m := newTestMocks()
	svc := newTestDuelService(m)

	expectDuelWrite(m,
		&models.DuelStat{PlayerID: "player-a", GameType: "alps", DuelPoints: 4},
		&models.DuelStat{PlayerID: "player-b", GameType: "alps", DuelPoints: 10},
		6)
	m.publisher.On("Publish", mock.Anything).Return()

	outcome, err := svc.CompleteDuel(context.Background(), duelInput(900, 700))

	require.NoError(t, err)
	assert.Equal(t, int64(6), outcome.PointsEarned)
	assert.True(t, outcome.CatchUpBonusAwarded)
	m.assertAll(t)
}

func TestDuelService_CompleteDuel_FirstDuelCountsAsEven(t *testing.T) {
	m := newTestMocks()
	svc := newTestDuelService(m)

	expectDuelWrite(m, nil, nil, 6)
	m.publisher.On("Publish", mock.Anything).Return()

	outcome, err := svc.CompleteDuel(context.Background(), duelInput(900, 700))

	require.NoError(t, err)
	assert.Zero(t, outcome.WinnerPointsBefore)
	assert.Zero(t, outcome.LoserPointsBefore)
	assert.Equal(t, int64(6), outcome.PointsEarned)
	m.assertAll(t)
}

func TestDuelService_CompleteDuel_PublishesAccepterName(t *testing.T) {
	tests := []struct {
		name     string
		profile  models.PlayerProfile
		expected string
	}{
		{"profile name", models.PlayerProfile{Name: stringPtr("Ben")}, "Ben"},
		{"falls back to player id", models.PlayerProfile{}, "player-b"},
		{"empty name falls back", models.PlayerProfile{Name: stringPtr("")}, "player-b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMocks()
			svc := newTestDuelService(m)

			expectDuelWrite(m, nil, nil, 6)
			var published events.DuelCompletedEvent
			m.publisher.On("Publish", mock.Anything).Run(func(args mock.Arguments) {
				published = args.Get(0).(events.DuelCompletedEvent)
			}).Return()

			input := duelInput(900, 700)
			input.Accepter.Profile = tt.profile
			_, err := svc.CompleteDuel(context.Background(), input)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, published.AccepterName)
			assert.Equal(t, "player-a", published.ChallengerID)
			assert.Equal(t, "player-b", published.AccepterID)
			assert.Equal(t, "seed-1", published.DuelSeed)
		})
	}
}

func TestDuelService_CompleteDuel_DuplicateLeavesStatsUntouched(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := newTestDuelService(m)

	stored := &models.DuelResult{ID: "duel-1", DuelSeed: "seed-1", GameType: "alps", ChallengerID: "player-a", AccepterID: "player-b", WinnerID: "player-a"}

	m.expectReadTransaction()
	m.locker.On("Lock", ctx, []string{"duel:alps"}).Return(nil)
	m.duelResults.On("Insert", ctx, mock.Anything).Return(false, nil)
	m.duelResults.On("GetByCompletion", ctx, "seed-1", "player-a", "player-b").Return(stored, nil)

	outcome, err := svc.CompleteDuel(ctx, duelInput(900, 700))

	require.NoError(t, err)
	assert.True(t, outcome.Duplicate)
	assert.Equal(t, stored, outcome.Duel)
	m.duelStats.AssertNotCalled(t, "RecordWin", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
	m.assertAll(t)
}

type mockOverallBoard struct {
	mock.Mock
}

func (m *mockOverallBoard) GetOverallLeaderboard(ctx context.Context, limit, offset int) (*models.DuelLeaderboardPage, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelLeaderboardPage), args.Error(1)
}

func (m *mockOverallBoard) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

func TestDuelService_CompleteDuel_InvalidatesOverallAfterCommit(t *testing.T) {
	m := newTestMocks()
	board := &mockOverallBoard{}
	svc := NewDuelService(m.factory, testGameTypes, NewScoreThenTimeJudge(), board).(*duelService)
	svc.now = fixedClock(duelNow)

	expectDuelWrite(m, nil, nil, 6)
	m.publisher.On("Publish", mock.Anything).Return()
	board.On("Invalidate", mock.Anything).Run(func(mock.Arguments) {
		m.uow.AssertCalled(t, "Commit")
	}).Return().Once()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := svc.CompleteDuel(ctx, duelInput(900, 700))
	cancel()

	require.NoError(t, err)
	board.AssertNumberOfCalls(t, "Invalidate", 1)
	m.assertAll(t)
}

func TestDuelService_CompleteDuel_ClearsCachedOverallBoardBeforeReturning(t *testing.T) {
	m := newTestMocks()
	cache := new(MockOverallLeaderboardCache)
	overall := NewOverallLeaderboardService(new(MockUnitOfWorkFactory), cache)
	svc := NewDuelService(m.factory, testGameTypes, NewScoreThenTimeJudge(), overall).(*duelService)
	svc.now = fixedClock(duelNow)

	expectDuelWrite(m, nil, nil, 6)
	m.publisher.On("Publish", mock.Anything).Return()
	cache.On("Invalidate", mock.Anything).Return(nil).Once()

	_, err := svc.CompleteDuel(context.Background(), duelInput(900, 700))

	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestDuelService_CompleteDuel_DuplicateKeepsOverallCache(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	board := &mockOverallBoard{}
	svc := NewDuelService(m.factory, testGameTypes, NewScoreThenTimeJudge(), board).(*duelService)

	stored := &models.DuelResult{ID: "duel-1", DuelSeed: "seed-1", GameType: "alps", ChallengerID: "player-a", AccepterID: "player-b", WinnerID: "player-a"}
	m.expectReadTransaction()
	m.locker.On("Lock", ctx, []string{"duel:alps"}).Return(nil)
	m.duelResults.On("Insert", ctx, mock.Anything).Return(false, nil)
	m.duelResults.On("GetByCompletion", ctx, "seed-1", "player-a", "player-b").Return(stored, nil)

	outcome, err := svc.CompleteDuel(ctx, duelInput(900, 700))

	require.NoError(t, err)
	assert.True(t, outcome.Duplicate)
	board.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestDuelService_CompleteDuel_FailureKeepsOverallCache(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	board := &mockOverallBoard{}
	svc := NewDuelService(m.factory, testGameTypes, NewScoreThenTimeJudge(), board).(*duelService)

	m.expectReadTransaction()
	m.locker.On("Lock", ctx, mock.Anything).Return(nil)
	m.duelResults.On("Insert", ctx, mock.Anything).Return(true, nil)
	m.duelStats.On("Get", ctx, mock.Anything, "alps").Return(nil, nil)
	m.duelStats.On("RecordWin", ctx, "player-a", "alps", int64(6), mock.Anything).Return(errors.New("deadlock detected"))

	_, err := svc.CompleteDuel(ctx, duelInput(900, 700))

	require.Error(t, err)
	board.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestDuelService_CompleteDuel_TrimsIdentifiers(t *testing.T) {
	m := newTestMocks()
	svc := newTestDuelService(m)

	expectDuelWrite(m, nil, nil, 6)
	m.publisher.On("Publish", mock.Anything).Return()

	input := duelInput(900, 700)
	input.DuelSeed = " seed-1 "
	input.GameType = "alps "
	input.Challenger.PlayerID = " player-a"
	input.Accepter.PlayerID = "player-b\t"
	input.Accepter.GameID = " game-b "
	outcome, err := svc.CompleteDuel(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "seed-1", outcome.Duel.DuelSeed)
	assert.Equal(t, "alps", outcome.Duel.GameType)
	assert.Equal(t, "player-a", outcome.Duel.ChallengerID)
	assert.Equal(t, "player-b", outcome.Duel.AccepterID)
	assert.Equal(t, "game-b", outcome.Duel.AccepterGameID)
	m.assertAll(t)
}

func TestDuelService_CompleteDuel_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CompleteDuelInput)
		target error
	}{
		{"missing seed", func(in *CompleteDuelInput) { in.DuelSeed = " " }, ErrInvalidInput},
		{"unknown game type", func(in *CompleteDuelInput) { in.GameType = "moon" }, ErrUnknownGameType},
		{"overall game type", func(in *CompleteDuelInput) { in.GameType = models.GameTypeOverall }, ErrUnknownGameType},
		{"missing challenger", func(in *CompleteDuelInput) { in.Challenger.PlayerID = "" }, ErrInvalidInput},
		{"missing accepter game", func(in *CompleteDuelInput) { in.Accepter.GameID = "" }, ErrInvalidInput},
		{"negative score", func(in *CompleteDuelInput) { in.Challenger.Score = -5 }, ErrInvalidInput},
		{"negative time", func(in *CompleteDuelInput) { in.Accepter.Time = -1 }, ErrInvalidInput},
		{"self duel", func(in *CompleteDuelInput) { in.Accepter.PlayerID = in.Challenger.PlayerID }, ErrInvalidInput},
		{"self duel behind whitespace", func(in *CompleteDuelInput) {
			in.Challenger.PlayerID = "player-a "
			in.Accepter.PlayerID = " player-a"
		}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMocks()
			svc := newTestDuelService(m)

			input := duelInput(900, 700)
			tt.mutate(&input)
			_, err := svc.CompleteDuel(context.Background(), input)

			assert.ErrorIs(t, err, tt.target)
			m.factory.AssertNotCalled(t, "Create")
		})
	}
}

func TestDuelService_CompleteDuel_StatFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := newTestDuelService(m)

	m.expectReadTransaction()
	m.locker.On("Lock", ctx, mock.Anything).Return(nil)
	m.duelResults.On("Insert", ctx, mock.Anything).Return(true, nil)
	m.duelStats.On("Get", ctx, mock.Anything, "alps").Return(nil, nil)
	m.duelStats.On("RecordWin", ctx, "player-a", "alps", int64(6), mock.Anything).Return(errors.New("deadlock detected"))

	_, err := svc.CompleteDuel(ctx, duelInput(900, 700))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
	m.uow.AssertNotCalled(t, "Commit")
	m.uow.AssertCalled(t, "Rollback")
}

func TestScoreThenTimeJudge(t *testing.T) {
	judge := NewScoreThenTimeJudge()
	tests := []struct {
		name       string
		challenger models.DuelParticipant
		accepter   models.DuelParticipant
		winner     string
	}{
		{"higher score wins", models.DuelParticipant{PlayerID: "c", Score: 500, Time: 10}, models.DuelParticipant{PlayerID: "a", Score: 400, Time: 5}, "c"},
		{"accepter higher score", models.DuelParticipant{PlayerID: "c", Score: 300}, models.DuelParticipant{PlayerID: "a", Score: 400}, "a"},
		{"faster time breaks tie", models.DuelParticipant{PlayerID: "c", Score: 400, Time: 90}, models.DuelParticipant{PlayerID: "a", Score: 400, Time: 60}, "a"},
		{"challenger faster", models.DuelParticipant{PlayerID: "c", Score: 400, Time: 30}, models.DuelParticipant{PlayerID: "a", Score: 400, Time: 60}, "c"},
		{"full tie goes to challenger", models.DuelParticipant{PlayerID: "c", Score: 400, Time: 60}, models.DuelParticipant{PlayerID: "a", Score: 400, Time: 60}, "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, loser := judge.Decide(tt.challenger, tt.accepter)
			assert.Equal(t, tt.winner, winner.PlayerID)
			assert.NotEqual(t, winner.PlayerID, loser.PlayerID)
		})
	}
}
