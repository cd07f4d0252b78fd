package plans

import (
	"sync"
)

// Key identifies a built-in reading plan.
type Key string

const (
	BibleInOneYear          Key = "bible_in_one_year"
	PsalmsInOneMonth        Key = "psalms_in_one_month"
	NewTestamentInSixMonths Key = "new_testament_in_six_months"
)

// DefaultKey is served for plan keys the bot doesn't know.
const DefaultKey = BibleInOneYear

// Kind selects the chapter-generation rule of a plan.
type Kind int

const (
	// KindSequential spreads the chapters of several books evenly over the plan.
	KindSequential Kind = iota
	// KindFixedCadence reads a fixed number of chapters of a single book per day.
	KindFixedCadence
)

// Plan is an immutable reading plan definition.
type Plan struct {
	Key         Key
	Name        string
	Description string
	TotalDays   int
	Kind        Kind
	Books       []Book

	table func() [][]Passage
}

func newPlan(key Key, name, desc string, days int, kind Kind, books []Book) *Plan {
	p := &Plan{
		Key:         key,
		Name:        name,
		Description: desc,
		TotalDays:   days,
		Kind:        kind,
		Books:       books,
	}
	if kind == KindSequential {
		p.table = sync.OnceValue(func() [][]Passage {
			return buildTable(p.Books, p.TotalDays)
		})
	}
	return p
}

var catalog = map[Key]*Plan{
	BibleInOneYear: newPlan(BibleInOneYear,
		"Bible in One Year", "Read the entire Bible in 365 days",
		365, KindSequential, canon),
	PsalmsInOneMonth: newPlan(PsalmsInOneMonth,
		"Psalms in One Month", "Read the Book of Psalms in 30 days",
		30, KindFixedCadence, []Book{{"Psalms", 150}}),
	NewTestamentInSixMonths: newPlan(NewTestamentInSixMonths,
		"New Testament in 6 Months", "Read the New Testament in 180 days",
		180, KindSequential, canon[newTestamentStart:]),
}

// All returns the built-in plans in menu order.
func All() []*Plan {
	return []*Plan{
		catalog[BibleInOneYear],
		catalog[PsalmsInOneMonth],
		catalog[NewTestamentInSixMonths],
	}
}

// Lookup returns the plan for key. Unknown keys get the default sequential
// plan instead of an error.
func Lookup(key Key) *Plan {
	if p, ok := catalog[key]; ok {
		return p
	}
	return catalog[DefaultKey]
}

// Known reports whether key names a built-in plan.
func Known(key Key) bool {
	_, ok := catalog[key]
	return ok
}

// TotalChapters is the number of chapters covered by the plan.
func (p *Plan) TotalChapters() int { return totalChapters(p.Books) }

// Days is the number of days the plan actually yields readings for.
func (p *Plan) Days() int {
	if p.Kind == KindFixedCadence {
		per := p.chaptersPerDay()
		n := p.Books[0].Chapters
		return (n + per - 1) / per
	}
	return len(p.table())
}

// chaptersPerDay is ceil(book length / total days) for fixed-cadence plans.
func (p *Plan) chaptersPerDay() int {
	n := p.Books[0].Chapters
	return (n + p.TotalDays - 1) / p.TotalDays
}
