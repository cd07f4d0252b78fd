package models

// Translation is one of the Bible translations the bot can serve.
type Translation string

const (
	TranslationESV Translation = "ESV"
	TranslationKJV Translation = "KJV"
	TranslationNIV Translation = "NIV"
)

// DefaultTranslation is used when the user sends something we don't know.
const DefaultTranslation = TranslationESV

var translationNames = map[Translation]string{
	TranslationESV: "English Standard Version",
	TranslationKJV: "King James Version",
	TranslationNIV: "New International Version",
}

// Translations lists the supported translations in keyboard order.
func Translations() []Translation {
	return []Translation{TranslationESV, TranslationKJV, TranslationNIV}
}

// ParseTranslation falls back to DefaultTranslation for unknown input.
func ParseTranslation(s string) Translation {
	t := Translation(s)
	if _, ok := translationNames[t]; ok {
		return t
	}
	return DefaultTranslation
}

func (t Translation) Name() string { return translationNames[t] }

// User is one chat participant registered on a reading plan.
type User struct {
	UserID      int64       `db:"user_id"     json:"user_id"`
	ChatID      int64       `db:"chat_id"     json:"chat_id"`
	Username    string      `db:"username"    json:"username"`
	FirstName   string      `db:"first_name"  json:"first_name"`
	PlanKey     string      `db:"plan_key"    json:"plan_key"`
	StartDate   string      `db:"start_date"  json:"start_date"`  // YYYY-MM-DD
	CurrentDay  int         `db:"current_day" json:"current_day"` // next day to read, >= 1
	Translation Translation `db:"translation" json:"translation"`
	CreatedAt   int64       `db:"created_at"  json:"created_at"`
}

// DaysRead is the number of plan days already delivered.
func (u *User) DaysRead() int {
	if u.CurrentDay < 1 {
		return 0
	}
	return u.CurrentDay - 1
}

// ProgressRecord marks that a user received the reading for a calendar date.
type ProgressRecord struct {
	UserID    int64  `db:"user_id"`
	Date      string `db:"date"`      // YYYY-MM-DD
	Day       int    `db:"day"`       // plan day delivered on Date
	Book      string `db:"book"`      // first book of the day
	Chapter   int    `db:"chapter"`   // first chapter of the day
	Reference string `db:"reference"` // every passage, e.g. "Genesis 50; Exodus 1-2"
	Completed bool   `db:"completed"`
}

// Conversation holds the transient onboarding state of a chat.
type Conversation struct {
	UserID  int64  `db:"user_id"`
	State   State  `db:"state"`
	PlanKey string `db:"plan_key"` // chosen plan while waiting for a translation
}
