package scheduler

import (
	"errors"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"daily-bible-bot/internal/logger"
	"daily-bible-bot/internal/models"
	"daily-bible-bot/internal/plans"
	"daily-bible-bot/internal/progress"
)

// Users lists every registered user.
type Users interface {
	ListUsers() ([]models.User, error)
}

// Reminder sends the daily nudge to one user.
type Reminder interface {
	SendReminder(u *models.User) error
}

type Options struct {
	Hour, Minute uint
	Clock        clockwork.Clock
}

// Start registers the daily reminder job and starts the scheduler.
func Start(users Users, tracker *progress.Tracker, r Reminder, opts Options) (gocron.Scheduler, error) {
	schedOpts := []gocron.SchedulerOption{}
	if opts.Clock != nil {
		schedOpts = append(schedOpts, gocron.WithClock(opts.Clock))
	}

	s, err := gocron.NewScheduler(schedOpts...)
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(opts.Hour, opts.Minute, 0))),
		gocron.NewTask(func() {
			sent, err := RemindUnread(users, tracker, r)
			if err != nil {
				logger.Error("reminder run failed", "error", err)
				return
			}
			logger.Info("reminders sent", "count", sent)
		}),
		gocron.WithName("daily-reminder"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	return s, nil
}

// RemindUnread nudges every user whose reading for today is still waiting.
// Users who already read today or finished their plan are skipped.
func RemindUnread(users Users, tracker *progress.Tracker, r Reminder) (int, error) {
	list, err := users.ListUsers()
	if err != nil {
		return 0, err
	}

	sent := 0
	var errs []error
	for i := range list {
		u := &list[i]

		read, err := tracker.HasReadToday(u.UserID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if read {
			continue
		}
		if _, err := plans.Compute(plans.Key(u.PlanKey), u.CurrentDay); err != nil {
			continue
		}

		if err := r.SendReminder(u); err != nil {
			logger.Warn("reminder not sent", "user", u.UserID, "error", err)
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}
