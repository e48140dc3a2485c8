package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaemoore/class-simulation/sim"
	"github.com/jaemoore/class-simulation/sim/internal/testutil"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func newTestResults(t *testing.T, seed int64) *sim.Results {
	t.Helper()
	params, err := sim.LoadSimulationParams(testutil.FixturePath(t, "small"))
	require.NoError(t, err)
	params.Iterations = 2
	params.Seed = seed
	results, err := sim.NewSimulation(params).Simulate(context.Background())
	require.NoError(t, err)
	return results
}

func openTestStore(t *testing.T) *ResultStore {
	t.Helper()
	s, err := OpenResultStore(context.Background(), filepath.Join(t.TempDir(), "runs", "cohortsim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenResultStore_CreatesFile(t *testing.T) {
	s := openTestStore(t)
	_, err := os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestResultStore_SaveRun_RoundTrip(t *testing.T) {
	// GIVEN a store and a finished run
	ctx := context.Background()
	s := openTestStore(t)
	results := newTestResults(t, 7)

	// WHEN the run is saved and listed
	id, err := s.SaveRun(ctx, results)
	require.NoError(t, err)
	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)

	// THEN the header and params survive
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, int64(7), runs[0].Seed)
	assert.Equal(t, 2, runs[0].Iterations)
	assert.Equal(t, len(results.Params.SwitchPlan()), runs[0].Days)
	assert.Equal(t, *results.Params, runs[0].Params)

	// AND the per-day averages match the in-memory trials
	contacts, err := s.ContactsPerDay(ctx, id)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	for i, tr := range results.Trials {
		assert.Equal(t, tr.DailyAverages, contacts[i])
	}
}

func TestResultStore_ListRuns_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := s.SaveRun(ctx, newTestResults(t, 1))
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, newTestResults(t, 2))
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
}

func TestResultStore_ListRuns_SubSecondOrder(t *testing.T) {
	// GIVEN runs saved at fractional-second instants whose decimal
	// renderings do not sort lexically
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	offsets := []time.Duration{100 * time.Millisecond, 150 * time.Millisecond, time.Second}
	var ids []string
	for i, off := range offsets {
		at := base.Add(off)
		s.now = func() time.Time { return at }
		id, err := s.SaveRun(ctx, newTestResults(t, int64(i+1)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	// WHEN the runs are listed
	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)

	// THEN they come back newest first with exact timestamps
	require.Len(t, runs, 3)
	for i, r := range runs {
		want := len(offsets) - 1 - i
		assert.Equal(t, ids[want], r.ID)
		assert.True(t, base.Add(offsets[want]).Equal(r.CreatedAt), "run %d created at %s", i, r.CreatedAt)
	}
}

func TestResultStore_ContactsPerDay_UnknownRun(t *testing.T) {
	s := openTestStore(t)
	contacts, err := s.ContactsPerDay(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestResultStore_ReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := OpenResultStore(ctx, path)
	require.NoError(t, err)
	_, err = s.SaveRun(ctx, newTestResults(t, 3))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := OpenResultStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	runs, err := reopened.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
