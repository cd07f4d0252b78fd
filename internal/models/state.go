package models

// State is the onboarding conversation step of a chat.
type State string

const (
	StateIdle                State = ""
	StateChoosingPlan        State = "choosing_plan"
	StateChoosingTranslation State = "choosing_translation"
)
