package reading

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-bible-bot/internal/models"
	"daily-bible-bot/internal/plans"
	"daily-bible-bot/internal/progress"
	"daily-bible-bot/internal/scripture"
	"daily-bible-bot/internal/storage"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []string
	failOn  int // 1-based call that fails, 0 = never
	counter atomic.Int32
}

func (f *fakeFetcher) FetchText(_ context.Context, book string, chapter int, tr models.Translation) (scripture.Chapter, error) {
	n := int(f.counter.Add(1))
	f.mu.Lock()
	f.calls = append(f.calls, book)
	f.mu.Unlock()
	if f.failOn != 0 && n == f.failOn {
		return scripture.Chapter{}, scripture.ErrUnavailable
	}
	return scripture.Chapter{
		Book: book, Number: chapter, Translation: tr,
		Verses: []scripture.Verse{{Chapter: chapter, Verse: 1, Text: "text"}},
	}, nil
}

type fixture struct {
	svc     *Service
	tracker *progress.Tracker
	clock   *clockwork.FakeClock
	fetcher *fakeFetcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 19, 7, 30, 0, 0, time.Local))
	tr := progress.NewTracker(db, clock)
	f := &fakeFetcher{}
	return &fixture{svc: NewService(tr, f), tracker: tr, clock: clock, fetcher: f}
}

func (fx *fixture) register(t *testing.T, id int64, key plans.Key) {
	t.Helper()
	_, err := fx.tracker.RegisterUser(progress.Registration{
		UserID: id, FirstName: "Sam", PlanKey: key, Translation: models.TranslationNIV,
	})
	require.NoError(t, err)
}

func TestTodayUnregistered(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Today(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnregistered)
}

func TestTodayDeliversAndCommits(t *testing.T) {
	fx := newFixture(t)
	fx.register(t, 1, plans.PsalmsInOneMonth)

	d, err := fx.svc.Today(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Reading.Day)
	assert.Equal(t, 1, d.DaysRead())
	require.Len(t, d.Chapters, 5)
	assert.Equal(t, 5, d.Chapters[4].Number)
	assert.Equal(t, models.TranslationNIV, d.Chapters[0].Translation)

	u, err := fx.tracker.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 2, u.CurrentDay)

	_, err = fx.svc.Today(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAlreadyReadToday)

	fx.clock.Advance(24 * time.Hour)
	d, err = fx.svc.Today(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Reading.Day)
	assert.Equal(t, []int{6, 7, 8, 9, 10}, d.Reading.Passages[0].Chapters)
}

func TestTodayFetchFailureWritesNothing(t *testing.T) {
	fx := newFixture(t)
	fx.register(t, 1, plans.PsalmsInOneMonth)
	fx.fetcher.failOn = 3

	_, err := fx.svc.Today(context.Background(), 1)
	assert.ErrorIs(t, err, ErrContentUnavailable)

	read, err := fx.tracker.HasReadToday(1)
	require.NoError(t, err)
	assert.False(t, read)
	u, err := fx.tracker.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 1, u.CurrentDay)

	// retry succeeds once the provider recovers
	fx.fetcher.failOn = 0
	d, err := fx.svc.Today(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Reading.Day)
}

func TestTodayPlanComplete(t *testing.T) {
	fx := newFixture(t)
	fx.register(t, 1, plans.PsalmsInOneMonth)

	for day := 1; day <= 30; day++ {
		_, err := fx.svc.Today(context.Background(), 1)
		require.NoError(t, err, "day %d", day)
		fx.clock.Advance(24 * time.Hour)
	}

	calls := fx.fetcher.counter.Load()
	_, err := fx.svc.Today(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPlanComplete)
	assert.True(t, errors.Is(err, plans.ErrPlanComplete))
	assert.Equal(t, calls, fx.fetcher.counter.Load(), "no fetch after completion")
}

func TestTodayConcurrentSameUser(t *testing.T) {
	fx := newFixture(t)
	fx.register(t, 1, plans.BibleInOneYear)

	const workers = 8
	var delivered, already atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.svc.Today(context.Background(), 1)
			switch {
			case err == nil:
				delivered.Add(1)
			case errors.Is(err, ErrAlreadyReadToday):
				already.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), delivered.Load())
	assert.Equal(t, int32(workers-1), already.Load())

	u, err := fx.tracker.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 2, u.CurrentDay)
	assert.Empty(t, fx.svc.locks.locks, "locks are released")
}

func TestTodayMultiBookDay(t *testing.T) {
	fx := newFixture(t)
	fx.register(t, 1, plans.BibleInOneYear)

	d, err := fx.svc.Today(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, d.Reading.ChapterCount(), len(d.Chapters))
	assert.Equal(t, "Genesis", d.Chapters[0].Book)
}
