// Package progress owns per-user reading progress: registration, the
// once-per-calendar-day delivery gate and day advancement.
package progress

import (
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"daily-bible-bot/internal/logger"
	"daily-bible-bot/internal/models"
	"daily-bible-bot/internal/plans"
)

// DateFormat is the layout of calendar date keys.
const DateFormat = "2006-01-02"

// ErrNotFound is returned for users that never registered.
var ErrNotFound = errors.New("user not registered")

// Store is the persistence the tracker needs.
type Store interface {
	UpsertUser(u *models.User) error
	GetUser(userID int64) (*models.User, error)
	GetProgress(userID int64, date string) (*models.ProgressRecord, error)
	CommitReading(rec *models.ProgressRecord) (bool, error)
}

// Phase is where a user is in the plan lifecycle.
type Phase int

const (
	PhaseUnregistered Phase = iota
	PhaseRegistered
	PhasePlanComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseRegistered:
		return "registered"
	case PhasePlanComplete:
		return "plan_complete"
	default:
		return "unregistered"
	}
}

// Tracker guards at-most-once-per-day delivery and day advancement.
type Tracker struct {
	store Store
	clock clockwork.Clock
}

// NewTracker uses the real clock when clock is nil.
func NewTracker(store Store, clock clockwork.Clock) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{store: store, clock: clock}
}

// Today is the host's local calendar date.
func (t *Tracker) Today() string {
	return t.clock.Now().Local().Format(DateFormat)
}

// Registration is the data collected during onboarding.
type Registration struct {
	UserID      int64
	ChatID      int64
	Username    string
	FirstName   string
	PlanKey     plans.Key
	Translation models.Translation
}

// RegisterUser creates the user or overwrites an existing one. Progress
// restarts at day 1 either way.
func (t *Tracker) RegisterUser(r Registration) (*models.User, error) {
	u := &models.User{
		UserID:      r.UserID,
		ChatID:      r.ChatID,
		Username:    r.Username,
		FirstName:   r.FirstName,
		PlanKey:     string(r.PlanKey),
		StartDate:   t.Today(),
		Translation: models.ParseTranslation(string(r.Translation)),
		CreatedAt:   t.clock.Now().Unix(),
	}
	if u.ChatID == 0 {
		u.ChatID = u.UserID
	}
	if err := t.store.UpsertUser(u); err != nil {
		return nil, fmt.Errorf("register user %d: %w", r.UserID, err)
	}
	logger.Info("user registered", "user", u.UserID, "plan", u.PlanKey, "translation", u.Translation)
	return u, nil
}

// GetUser returns ErrNotFound for unknown users.
func (t *Tracker) GetUser(userID int64) (*models.User, error) {
	u, err := t.store.GetUser(userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// HasReadToday reports whether today's reading was already delivered.
func (t *Tracker) HasReadToday(userID int64) (bool, error) {
	rec, err := t.store.GetProgress(userID, t.Today())
	if err != nil {
		return false, fmt.Errorf("get progress %d: %w", userID, err)
	}
	return rec != nil, nil
}

// CommitReading marks reading (plan day `day`) as delivered today and moves
// the user on to day+1. The record and the advance are written atomically.
// A second call on the same date, or for a day the user is no longer on,
// changes nothing and returns false.
func (t *Tracker) CommitReading(userID int64, day int, reading plans.Reading) (bool, error) {
	rec := &models.ProgressRecord{
		UserID:    userID,
		Date:      t.Today(),
		Day:       day,
		Book:      reading.Book(),
		Chapter:   reading.FirstChapter(),
		Reference: reading.Reference(),
	}
	ok, err := t.store.CommitReading(rec)
	if err != nil {
		return false, fmt.Errorf("commit day %d for %d: %w", day, userID, err)
	}
	if ok {
		logger.Info("day committed", "user", userID, "day", day, "reading", rec.Reference)
	} else {
		logger.Debug("commit skipped", "user", userID, "day", day, "date", rec.Date)
	}
	return ok, nil
}

// Phase derives the lifecycle phase of a user.
func (t *Tracker) Phase(userID int64) (Phase, error) {
	u, err := t.GetUser(userID)
	if errors.Is(err, ErrNotFound) {
		return PhaseUnregistered, nil
	}
	if err != nil {
		return PhaseUnregistered, err
	}
	if _, err := plans.Compute(plans.Key(u.PlanKey), u.CurrentDay); errors.Is(err, plans.ErrPlanComplete) {
		return PhasePlanComplete, nil
	}
	return PhaseRegistered, nil
}

// Status is the read-only summary shown by /progress.
type Status struct {
	User      *models.User
	Plan      *plans.Plan
	DaysRead  int
	TotalDays int
	ReadToday bool
}

// Percent of the plan delivered, 0..100.
func (s Status) Percent() float64 {
	if s.TotalDays == 0 {
		return 0
	}
	return float64(s.DaysRead) / float64(s.TotalDays) * 100
}

func (s Status) Complete() bool { return s.DaysRead >= s.TotalDays }

func (t *Tracker) Status(userID int64) (*Status, error) {
	u, err := t.GetUser(userID)
	if err != nil {
		return nil, err
	}
	read, err := t.HasReadToday(userID)
	if err != nil {
		return nil, err
	}
	p := plans.Lookup(plans.Key(u.PlanKey))
	return &Status{
		User:      u,
		Plan:      p,
		DaysRead:  min(u.DaysRead(), p.Days()),
		TotalDays: p.Days(),
		ReadToday: read,
	}, nil
}
