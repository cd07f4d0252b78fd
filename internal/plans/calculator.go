package plans

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrPlanComplete is returned for days past the end of a plan.
	ErrPlanComplete = errors.New("plan complete")
	// ErrInvalidDay is returned for day numbers below 1.
	ErrInvalidDay = errors.New("day number must be at least 1")
)

// Passage is a run of consecutive chapters of one book.
type Passage struct {
	Book     string
	Chapters []int
}

func (p Passage) String() string {
	switch len(p.Chapters) {
	case 0:
		return p.Book
	case 1:
		return p.Book + " " + strconv.Itoa(p.Chapters[0])
	}
	return fmt.Sprintf("%s %d-%d", p.Book, p.Chapters[0], p.Chapters[len(p.Chapters)-1])
}

// Reading is what a user has to read on one plan day.
type Reading struct {
	Plan      Key
	Day       int
	TotalDays int
	Passages  []Passage
}

// Book is the first book of the day.
func (r Reading) Book() string {
	if len(r.Passages) == 0 {
		return ""
	}
	return r.Passages[0].Book
}

// FirstChapter is the first chapter of the day.
func (r Reading) FirstChapter() int {
	if len(r.Passages) == 0 || len(r.Passages[0].Chapters) == 0 {
		return 0
	}
	return r.Passages[0].Chapters[0]
}

// ChapterCount is the number of chapters across all passages.
func (r Reading) ChapterCount() int {
	n := 0
	for _, p := range r.Passages {
		n += len(p.Chapters)
	}
	return n
}

// Reference renders the reading as "Genesis 50; Exodus 1-2".
func (r Reading) Reference() string {
	parts := make([]string, len(r.Passages))
	for i, p := range r.Passages {
		parts[i] = p.String()
	}
	return strings.Join(parts, "; ")
}

// Compute returns the reading for day of the plan identified by key.
func Compute(key Key, day int) (Reading, error) {
	return Lookup(key).Reading(day)
}

// Reading returns the chapters due on day, ErrPlanComplete once the plan is
// exhausted and ErrInvalidDay for day < 1.
func (p *Plan) Reading(day int) (Reading, error) {
	if day < 1 {
		return Reading{}, fmt.Errorf("%w: got %d", ErrInvalidDay, day)
	}

	var passages []Passage
	switch p.Kind {
	case KindFixedCadence:
		passages = p.fixedCadence(day)
	default:
		if t := p.table(); day <= len(t) {
			passages = t[day-1]
		}
	}
	if len(passages) == 0 {
		return Reading{}, ErrPlanComplete
	}

	return Reading{
		Plan:      p.Key,
		Day:       day,
		TotalDays: p.TotalDays,
		Passages:  clonePassages(passages),
	}, nil
}

func (p *Plan) fixedCadence(day int) []Passage {
	book := p.Books[0]
	per := p.chaptersPerDay()

	start := (day-1)*per + 1
	if start > book.Chapters {
		return nil
	}
	end := min(start+per-1, book.Chapters)

	chapters := make([]int, 0, end-start+1)
	for c := start; c <= end; c++ {
		chapters = append(chapters, c)
	}
	return []Passage{{Book: book.Name, Chapters: chapters}}
}

// buildTable assigns the plan's chapters to days: day d (0-based) reads the
// chapters with global index in [d*T/D, (d+1)*T/D). Every chapter is read
// exactly once and day lengths differ by at most one.
func buildTable(books []Book, days int) [][]Passage {
	type ref struct {
		book    string
		chapter int
	}

	refs := make([]ref, 0, totalChapters(books))
	for _, b := range books {
		for c := 1; c <= b.Chapters; c++ {
			refs = append(refs, ref{b.Name, c})
		}
	}

	total := len(refs)
	days = min(days, total)

	table := make([][]Passage, days)
	for d := 0; d < days; d++ {
		lo, hi := d*total/days, (d+1)*total/days

		var day []Passage
		for _, r := range refs[lo:hi] {
			if n := len(day); n > 0 && day[n-1].Book == r.book {
				day[n-1].Chapters = append(day[n-1].Chapters, r.chapter)
				continue
			}
			day = append(day, Passage{Book: r.book, Chapters: []int{r.chapter}})
		}
		table[d] = day
	}
	return table
}

func clonePassages(in []Passage) []Passage {
	out := make([]Passage, len(in))
	for i, p := range in {
		out[i] = Passage{Book: p.Book, Chapters: append([]int(nil), p.Chapters...)}
	}
	return out
}
