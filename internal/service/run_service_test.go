package service

import (
	"context"
	"errors"
	"formations_backend/internal/model"
	"formations_backend/pkg/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	logger.Log = zap.NewNop()
}

type fakeRunStore struct {
	progress    *model.Progress
	progressErr error
	recent      bool
	recentErr   error
	creditErr   error
	eventErr    error

	events          []*model.RunEvent
	creditedRuns    []*model.Run
	savedProgresses []*model.Progress
	recentQueries   []time.Time
}

func (f *fakeRunStore) FindProgress(userID uint) (*model.Progress, error) {
	return f.progress, f.progressErr
}

func (f *fakeRunStore) HasRecentRun(userID uint, pack, difficulty string, since time.Time) (bool, error) {
	f.recentQueries = append(f.recentQueries, since)
	return f.recent, f.recentErr
}

func (f *fakeRunStore) CreditRun(progress *model.Progress, run *model.Run) error {
	if f.creditErr != nil {
		return f.creditErr
	}
	f.savedProgresses = append(f.savedProgresses, progress)
	f.creditedRuns = append(f.creditedRuns, run)
	return nil
}

func (f *fakeRunStore) RecordEvent(event *model.RunEvent) error {
	if f.eventErr != nil {
		return f.eventErr
	}
	f.events = append(f.events, event)
	return nil
}

type fakeLocker struct {
	busy     bool
	err      error
	acquired int
	released int
}

func (f *fakeLocker) Acquire(ctx context.Context, userID uint) (func(), bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.busy {
		return nil, false, nil
	}
	f.acquired++
	return func() { f.released++ }, true, nil
}

func summaryRequest() CommitRunRequest {
	return CommitRunRequest{
		PackID:     "ia_enjeux",
		ActivityID: "summary",
		Type:       "quiz",
		Difficulty: "initie",
		ClientOutcome: ClientOutcome{
			Correct:   5,
			Wrong:     1,
			StreakMax: 3,
			XPEarned:  140,
		},
	}
}

func TestCommitRunPerQuestionByOutcome(t *testing.T) {
	store := &fakeRunStore{}
	svc := NewRunService(store, nil)

	req := summaryRequest()
	req.ClientOutcome = ClientOutcome{Correct: 1, XPEarned: 0, QuestionIndex: 2}

	result, skip, err := svc.CommitRun(context.Background(), 7, req)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Credited)
	assert.Nil(t, result.XPAwarded)
	assert.Equal(t, SkipPerQuestion, skip)

	// trace écrite, aucune mutation de progression
	require.Len(t, store.events, 1)
	assert.Equal(t, uint(7), store.events[0].UserID)
	assert.Equal(t, 2, store.events[0].QuestionIndex)
	assert.Empty(t, store.creditedRuns)
	assert.Empty(t, store.savedProgresses)
}

func TestCommitRunPerQuestionByActivityID(t *testing.T) {
	activityIDs := []string{"q1", "Q23", "q999"}
	for _, id := range activityIDs {
		store := &fakeRunStore{}
		svc := NewRunService(store, nil)

		req := summaryRequest()
		req.ActivityID = id

		result, skip, err := svc.CommitRun(context.Background(), 1, req)
		require.NoError(t, err)
		assert.False(t, result.Credited, "activity %s", id)
		assert.Equal(t, SkipPerQuestion, skip)
		assert.Empty(t, store.creditedRuns)
	}
}

func TestCommitRunActivityIDNotPerQuestion(t *testing.T) {
	// q suivi de plus de trois chiffres, ou préfixé, n'est pas une question
	for _, id := range []string{"q1234", "quiz", "summary", "xq1"} {
		store := &fakeRunStore{}
		svc := NewRunService(store, nil)

		req := summaryRequest()
		req.ActivityID = id

		result, _, err := svc.CommitRun(context.Background(), 1, req)
		require.NoError(t, err)
		assert.True(t, result.Credited, "activity %s", id)
	}
}

func TestCommitRunTraceFailureSwallowed(t *testing.T) {
	store := &fakeRunStore{eventErr: errors.New("trace sink down")}
	svc := NewRunService(store, nil)

	req := summaryRequest()
	req.ClientOutcome = ClientOutcome{Correct: 1, XPEarned: 0}

	result, _, err := svc.CommitRun(context.Background(), 1, req)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Credited)
}

func TestCommitRunCreditsSummary(t *testing.T) {
	store := &fakeRunStore{
		progress: &model.Progress{UserID: 7, XPTotal: 80, Level: 1, Tier: "debutant"},
	}
	locker := &fakeLocker{}
	svc := NewRunService(store, locker)

	result, skip, err := svc.CommitRun(context.Background(), 7, summaryRequest())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Credited)
	require.NotNil(t, result.XPAwarded)
	assert.Equal(t, 140, *result.XPAwarded)
	assert.Equal(t, SkipNone, skip)

	require.Len(t, store.savedProgresses, 1)
	progress := store.savedProgresses[0]
	assert.Equal(t, uint(7), progress.UserID)
	assert.Equal(t, 220, progress.XPTotal) // 80 + 140
	assert.Equal(t, 2, progress.Level)     // seuil 100 franchi, pas 250
	assert.Equal(t, "debutant", progress.Tier)

	require.Len(t, store.creditedRuns, 1)
	run := store.creditedRuns[0]
	assert.Equal(t, "ia_enjeux", run.Pack)
	assert.Equal(t, "initie", run.Difficulty)
	assert.Equal(t, 140, run.XPEarned)
	assert.Equal(t, 5, run.Correct)
	assert.Equal(t, 1, run.Wrong)
	assert.Equal(t, 3, run.StreakMax)

	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released)
}

func TestCommitRunCreditsZeroXP(t *testing.T) {
	// quiz entièrement raté: crédité quand même, xp_awarded présent à 0
	store := &fakeRunStore{}
	svc := NewRunService(store, nil)

	req := summaryRequest()
	req.ClientOutcome = ClientOutcome{Correct: 0, Wrong: 4}

	result, skip, err := svc.CommitRun(context.Background(), 3, req)
	require.NoError(t, err)
	assert.True(t, result.Credited)
	assert.Equal(t, SkipNone, skip)
	require.NotNil(t, result.XPAwarded)
	assert.Equal(t, 0, *result.XPAwarded)

	require.Len(t, store.creditedRuns, 1)
	assert.Equal(t, 0, store.creditedRuns[0].XPEarned)
}

func TestCommitRunFirstRunCreatesProgress(t *testing.T) {
	store := &fakeRunStore{progress: nil}
	svc := NewRunService(store, nil)

	result, _, err := svc.CommitRun(context.Background(), 42, summaryRequest())
	require.NoError(t, err)
	assert.True(t, result.Credited)

	require.Len(t, store.savedProgresses, 1)
	assert.Equal(t, 140, store.savedProgresses[0].XPTotal)
	assert.Equal(t, 2, store.savedProgresses[0].Level)
}

func TestCommitRunServerRecomputesXP(t *testing.T) {
	store := &fakeRunStore{}
	svc := NewRunService(store, nil)

	req := summaryRequest()
	req.ClientOutcome.XPEarned = 99999 // le client ment

	result, _, err := svc.CommitRun(context.Background(), 1, req)
	require.NoError(t, err)
	require.NotNil(t, result.XPAwarded)
	assert.Equal(t, 140, *result.XPAwarded)
}

func TestCommitRunAppliesDefaults(t *testing.T) {
	store := &fakeRunStore{}
	svc := NewRunService(store, nil)

	req := CommitRunRequest{
		ClientOutcome: ClientOutcome{Correct: 4, StreakMax: 2},
	}

	result, _, err := svc.CommitRun(context.Background(), 1, req)
	require.NoError(t, err)
	assert.True(t, result.Credited)
	// 4*20*1 (debutant) + 10*1 = 90
	require.NotNil(t, result.XPAwarded)
	assert.Equal(t, 90, *result.XPAwarded)

	require.Len(t, store.creditedRuns, 1)
	run := store.creditedRuns[0]
	assert.Equal(t, DefaultPackID, run.Pack)
	assert.Equal(t, DefaultDifficulty, run.Difficulty)
	assert.Equal(t, DefaultActivityID, run.ActivityID)
}

func TestCommitRunDuplicateWindow(t *testing.T) {
	store := &fakeRunStore{recent: true}
	svc := NewRunService(store, nil)

	result, skip, err := svc.CommitRun(context.Background(), 1, summaryRequest())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Credited)
	assert.Equal(t, SkipDuplicate, skip)
	assert.Empty(t, store.creditedRuns)

	// la fenêtre interrogée est bien d'environ deux minutes
	require.Len(t, store.recentQueries, 1)
	elapsed := time.Since(store.recentQueries[0])
	assert.InDelta(t, DuplicateWindow.Seconds(), elapsed.Seconds(), 5)
}

func TestCommitRunLockBusy(t *testing.T) {
	store := &fakeRunStore{}
	svc := NewRunService(store, &fakeLocker{busy: true})

	result, skip, err := svc.CommitRun(context.Background(), 1, summaryRequest())
	require.NoError(t, err)
	assert.False(t, result.Credited)
	assert.Equal(t, SkipLocked, skip)
	assert.Empty(t, store.creditedRuns)
}

func TestCommitRunLockErrorDegradesGracefully(t *testing.T) {
	store := &fakeRunStore{}
	svc := NewRunService(store, &fakeLocker{err: errors.New("redis down")})

	result, _, err := svc.CommitRun(context.Background(), 1, summaryRequest())
	require.NoError(t, err)
	assert.True(t, result.Credited)
}

func TestCommitRunPersistenceFailures(t *testing.T) {
	t.Run("duplicate lookup error", func(t *testing.T) {
		store := &fakeRunStore{recentErr: errors.New("db gone")}
		svc := NewRunService(store, nil)

		_, _, err := svc.CommitRun(context.Background(), 1, summaryRequest())
		assert.Error(t, err)
	})

	t.Run("progress fetch error", func(t *testing.T) {
		store := &fakeRunStore{progressErr: errors.New("db gone")}
		svc := NewRunService(store, nil)

		_, _, err := svc.CommitRun(context.Background(), 1, summaryRequest())
		assert.Error(t, err)
	})

	t.Run("credit write error", func(t *testing.T) {
		store := &fakeRunStore{creditErr: errors.New("db gone")}
		svc := NewRunService(store, nil)

		_, _, err := svc.CommitRun(context.Background(), 1, summaryRequest())
		assert.Error(t, err)
	})
}
