// Package reading delivers the daily reading: it checks the day gate,
// computes the plan day, fetches every chapter and only then commits.
package reading

import (
	"context"
	"errors"
	"fmt"

	"daily-bible-bot/internal/logger"
	"daily-bible-bot/internal/models"
	"daily-bible-bot/internal/plans"
	"daily-bible-bot/internal/progress"
	"daily-bible-bot/internal/scripture"
)

// Fetcher returns the text of one chapter.
type Fetcher interface {
	FetchText(ctx context.Context, book string, chapter int, tr models.Translation) (scripture.Chapter, error)
}

// Service delivers the daily reading, one request per user at a time.
type Service struct {
	tracker *progress.Tracker
	fetcher Fetcher
	locks   *userLocks
}

// NewService builds a Service reading progress from tracker.
func NewService(tracker *progress.Tracker, fetcher Fetcher) *Service {
	return &Service{
		tracker: tracker,
		fetcher: fetcher,
		locks:   newUserLocks(),
	}
}

// Delivery is a committed daily reading with its text.
type Delivery struct {
	User     *models.User // as it was before the commit
	Reading  plans.Reading
	Chapters []scripture.Chapter
}

// DaysRead counts the delivered day.
func (d *Delivery) DaysRead() int { return d.Reading.Day }

// Today delivers the user's next plan day. Nothing is written unless every
// chapter was fetched.
func (s *Service) Today(ctx context.Context, userID int64) (*Delivery, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	u, err := s.tracker.GetUser(userID)
	if errors.Is(err, progress.ErrNotFound) {
		return nil, ErrUnregistered
	}
	if err != nil {
		return nil, err
	}

	read, err := s.tracker.HasReadToday(userID)
	if err != nil {
		return nil, err
	}
	if read {
		return nil, ErrAlreadyReadToday
	}

	r, err := plans.Compute(plans.Key(u.PlanKey), u.CurrentDay)
	if err != nil {
		return nil, err
	}

	chapters, err := s.fetchAll(ctx, r, u.Translation)
	if err != nil {
		logger.Warn("reading not delivered", "user", userID, "day", r.Day, "error", err)
		return nil, err
	}

	ok, err := s.tracker.CommitReading(userID, u.CurrentDay, r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyReadToday
	}

	return &Delivery{User: u, Reading: r, Chapters: chapters}, nil
}

func (s *Service) fetchAll(ctx context.Context, r plans.Reading, tr models.Translation) ([]scripture.Chapter, error) {
	chapters := make([]scripture.Chapter, 0, r.ChapterCount())
	for _, p := range r.Passages {
		for _, c := range p.Chapters {
			ch, err := s.fetcher.FetchText(ctx, p.Book, c, tr)
			if err != nil {
				return nil, fmt.Errorf("%w: %s %d: %v", ErrContentUnavailable, p.Book, c, err)
			}
			chapters = append(chapters, ch)
		}
	}
	return chapters, nil
}
