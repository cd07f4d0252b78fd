package reading

import (
	"errors"

	"daily-bible-bot/internal/plans"
)

var (
	ErrUnregistered       = errors.New("user is not registered")
	ErrAlreadyReadToday   = errors.New("today's reading was already delivered")
	ErrPlanComplete       = plans.ErrPlanComplete
	ErrContentUnavailable = errors.New("reading text unavailable")
)
