// internal/worker/worker_test.go
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	joberrors "kundali-workers/internal/common/errors"
	"kundali-workers/internal/common/logger"
	"kundali-workers/internal/kundali"
	"kundali-workers/internal/matcher"
	"kundali-workers/internal/models"
)

// ==========================
// Fake Store
// ==========================

type fakeStore struct {
	mu sync.Mutex

	queue    []*models.MatchJob
	claimErr error

	vectors []models.PersonVector
	loadErr error

	progress  []int
	completed []string
	failed    map[string]string

	persistCalls int
	persistErrs  []error // one per call, nil entries succeed
	persisted    [][]models.MatchResult
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{failed: make(map[string]string)}
}

func (f *fakeStore) ClaimNextJob(ctx context.Context) (*models.MatchJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if len(f.queue) == 0 {
		return nil, nil
	}
	job := f.queue[0]
	f.queue = f.queue[1:]
	job.Status = models.JobStatusProcessing
	return job, nil
}

func (f *fakeStore) UpdateJobProgress(ctx context.Context, jobID string, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = append(f.progress, progress)
	return nil
}

func (f *fakeStore) CompleteJob(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, jobID)
	return nil
}

func (f *fakeStore) FailJob(ctx context.Context, jobID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[jobID] = message
	return nil
}

func (f *fakeStore) LoadPersonVectors(ctx context.Context, userID string) ([]models.PersonVector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]models.PersonVector, len(f.vectors))
	copy(out, f.vectors)
	return out, nil
}

func (f *fakeStore) UpsertResults(ctx context.Context, userID string, results []models.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.persistCalls
	f.persistCalls++
	if call < len(f.persistErrs) && f.persistErrs[call] != nil {
		return f.persistErrs[call]
	}
	batch := make([]models.MatchResult, len(results))
	copy(batch, results)
	f.persisted = append(f.persisted, batch)
	return nil
}

func (f *fakeStore) persistedRows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.persisted {
		n += len(b)
	}
	return n
}

// ==========================
// Test Helper Functions
// ==========================

func testWorker(t *testing.T, st *fakeStore) *Worker {
	engine := matcher.New(
		matcher.Config{ChunkSize: 5, MaxCandidates: 10000, MaxResults: 1000, MinScore: 0},
		kundali.DefaultDoshaPolicy(),
		kundali.DefaultVerdictBands(),
		logger.NewTestLogger(t),
	)
	cfg := Config{
		PollInterval:        5 * time.Millisecond,
		PersistBatchSize:    4,
		PersistRetries:      2,
		PersistRetryBackoff: 0,
	}
	return New(cfg, st, engine, logger.NewTestLogger(t))
}

func seedVectors(primary bool, n int) []models.PersonVector {
	vectors := make([]models.PersonVector, 0, n+1)
	if primary {
		v := kundali.VectorFromChart("primary", models.GenderMale, 0, 0, 1, 2, kundali.GrahaSun)
		v.UserID = "user-1"
		v.IsPrimary = true
		vectors = append(vectors, v)
	}
	for i := 0; i < n; i++ {
		nak := i % 27
		v := kundali.VectorFromChart(
			fmt.Sprintf("cand-%03d", i), models.GenderFemale,
			nak*4/9, nak, i%4+1, i%12+1, i%9,
		)
		v.UserID = "user-1"
		vectors = append(vectors, v)
	}
	return vectors
}

func oneToManyJob(id string) *models.MatchJob {
	return &models.MatchJob{
		ID:     id,
		UserID: "user-1",
		Type:   models.JobTypeOneToMany,
		Status: models.JobStatusProcessing,
	}
}

// ==========================
// Job Execution Tests
// ==========================

func TestProcessJob_OneToMany_Success(t *testing.T) {
	st := newFakeStore()
	st.vectors = seedVectors(true, 10)
	w := testWorker(t, st)

	w.processJob(context.Background(), oneToManyJob("job-1"))

	assert.Equal(t, []string{"job-1"}, st.completed)
	assert.Empty(t, st.failed)
	assert.Equal(t, 10, st.persistedRows(), "every candidate passes a zero threshold")
}

func TestProcessJob_ProgressIsMonotonic(t *testing.T) {
	st := newFakeStore()
	st.vectors = seedVectors(true, 23)
	w := testWorker(t, st)

	w.processJob(context.Background(), oneToManyJob("job-1"))

	require.NotEmpty(t, st.progress)
	assert.True(t, sort.IntsAreSorted(st.progress), "progress must never move backwards: %v", st.progress)
	assert.Equal(t, 25, st.progress[0], "first report lands after the load phase")
	assert.Equal(t, 95, st.progress[len(st.progress)-1], "last report lands after the persist phase")
	for _, p := range st.progress {
		assert.LessOrEqual(t, p, 100)
	}
}

func TestProcessJob_ManyToMany_Success(t *testing.T) {
	st := newFakeStore()
	st.vectors = seedVectors(false, 6)
	w := testWorker(t, st)

	job := oneToManyJob("job-1")
	job.Type = models.JobTypeManyToMany
	w.processJob(context.Background(), job)

	assert.Equal(t, []string{"job-1"}, st.completed)
	assert.Equal(t, 6*5/2, st.persistedRows(), "self scan scores each unordered pair once")
}

func TestProcessJob_MissingPrimaryProfile(t *testing.T) {
	st := newFakeStore()
	st.vectors = seedVectors(false, 5)
	w := testWorker(t, st)

	w.processJob(context.Background(), oneToManyJob("job-1"))

	assert.Empty(t, st.completed)
	assert.Contains(t, st.failed["job-1"], string(joberrors.ErrCodeMissingPrimaryProfile))
	assert.Contains(t, st.failed["job-1"], "found 0")
}

func TestProcessJob_MultiplePrimaryProfiles(t *testing.T) {
	st := newFakeStore()
	vectors := seedVectors(true, 5)
	vectors[1].IsPrimary = true
	st.vectors = vectors
	w := testWorker(t, st)

	w.processJob(context.Background(), oneToManyJob("job-1"))

	assert.Contains(t, st.failed["job-1"], "found 2")
}

func TestProcessJob_InvalidParams(t *testing.T) {
	st := newFakeStore()
	st.vectors = seedVectors(true, 5)
	w := testWorker(t, st)

	job := oneToManyJob("job-1")
	job.Params = json.RawMessage(`{"min_score": 99}`)
	w.processJob(context.Background(), job)

	assert.Contains(t, st.failed["job-1"], string(joberrors.ErrCodeInvalidJobParams))
	assert.Equal(t, 0, st.persistedRows(), "nothing runs on invalid params")
}

func TestProcessJob_ParamsOverrideResultCap(t *testing.T) {
	st := newFakeStore()
	st.vectors = seedVectors(true, 10)
	w := testWorker(t, st)

	job := oneToManyJob("job-1")
	job.Params = json.RawMessage(`{"max_results": 3}`)
	w.processJob(context.Background(), job)

	assert.Equal(t, []string{"job-1"}, st.completed)
	assert.Equal(t, 3, st.persistedRows())
}

func TestProcessJob_UnknownJobType(t *testing.T) {
	st := newFakeStore()
	st.vectors = seedVectors(true, 5)
	w := testWorker(t, st)

	job := oneToManyJob("job-1")
	job.Type = "bulk_compat"
	w.processJob(context.Background(), job)

	assert.Contains(t, st.failed["job-1"], string(joberrors.ErrCodeUnknownJobType))
}

func TestProcessJob_VectorLoadFailure(t *testing.T) {
	st := newFakeStore()
	st.loadErr = joberrors.NewVectorLoadError(fmt.Errorf("connection refused"))
	w := testWorker(t, st)

	w.processJob(context.Background(), oneToManyJob("job-1"))

	assert.Contains(t, st.failed["job-1"], string(joberrors.ErrCodeVectorLoadFailed))
}

// ==========================
// Persist Retry Tests
// ==========================

func TestProcessJob_PersistRetriesThenSucceeds(t *testing.T) {
	st := newFakeStore()
	st.vectors = seedVectors(true, 3)
	st.persistErrs = []error{joberrors.NewPersistError(fmt.Errorf("deadlock"))}
	w := testWorker(t, st)

	w.processJob(context.Background(), oneToManyJob("job-1"))

	assert.Equal(t, []string{"job-1"}, st.completed)
	assert.Equal(t, 2, st.persistCalls, "one failure, one successful retry")
	assert.Equal(t, 3, st.persistedRows())
}

func TestProcessJob_PersistExhaustsRetries(t *testing.T) {
	st := newFakeStore()
	st.vectors = seedVectors(true, 3)
	persistErr := joberrors.NewPersistError(fmt.Errorf("deadlock"))
	st.persistErrs = []error{persistErr, persistErr, persistErr}
	w := testWorker(t, st)

	w.processJob(context.Background(), oneToManyJob("job-1"))

	assert.Empty(t, st.completed)
	assert.Contains(t, st.failed["job-1"], string(joberrors.ErrCodeResultPersistFailed))
	assert.Equal(t, 3, st.persistCalls, "initial attempt plus the configured retries")
}

// ==========================
// Polling Loop Tests
// ==========================

func TestRun_ProcessesQueuedJobsAndStopsOnCancel(t *testing.T) {
	st := newFakeStore()
	st.vectors = seedVectors(true, 5)
	st.queue = []*models.MatchJob{oneToManyJob("job-1"), oneToManyJob("job-2")}
	w := testWorker(t, st)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		st.mu.Lock()
		defer st.mu.Unlock()
		return len(st.completed) == 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestDrain_ClaimErrorDoesNotCrashLoop(t *testing.T) {
	st := newFakeStore()
	st.claimErr = fmt.Errorf("connection reset")
	w := testWorker(t, st)

	// Must log and return, leaving the next tick to retry.
	w.drain(context.Background())
	assert.Empty(t, st.completed)
	assert.Empty(t, st.failed)
}
