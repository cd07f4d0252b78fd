package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonTable(t *testing.T) {
	books := Books()
	require.Len(t, books, 66)
	assert.Equal(t, "Genesis", books[0].Name)
	assert.Equal(t, "Matthew", books[newTestamentStart].Name)
	assert.Equal(t, "Revelation", books[65].Name)
	assert.Equal(t, 1189, totalChapters(books))
	assert.Equal(t, 260, totalChapters(books[newTestamentStart:]))

	n, ok := ChapterCount("Psalms")
	assert.True(t, ok)
	assert.Equal(t, 150, n)

	_, ok = ChapterCount("Tobit")
	assert.False(t, ok, "books outside the canon have no chapter count")
	assert.False(t, ValidChapter("Jude", 2))
	assert.True(t, ValidChapter("Jude", 1))
}

func TestPsalmsFixedCadence(t *testing.T) {
	tests := []struct {
		name string
		day  int
		want []int
	}{
		{"first day", 1, []int{1, 2, 3, 4, 5}},
		{"second day", 2, []int{6, 7, 8, 9, 10}},
		{"last day", 30, []int{146, 147, 148, 149, 150}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Compute(PsalmsInOneMonth, tt.day)
			require.NoError(t, err)
			assert.Equal(t, "Psalms", r.Book())
			require.Len(t, r.Passages, 1)
			assert.Equal(t, tt.want, r.Passages[0].Chapters)
			assert.Equal(t, tt.day, r.Day)
			assert.Equal(t, 30, r.TotalDays)
		})
	}

	_, err := Compute(PsalmsInOneMonth, 31)
	assert.ErrorIs(t, err, ErrPlanComplete)
	assert.Equal(t, 30, Lookup(PsalmsInOneMonth).Days())
}

func TestInvalidDay(t *testing.T) {
	for _, key := range []Key{BibleInOneYear, PsalmsInOneMonth, NewTestamentInSixMonths} {
		for _, day := range []int{0, -1} {
			_, err := Compute(key, day)
			assert.ErrorIs(t, err, ErrInvalidDay, "plan %s day %d", key, day)
		}
	}
}

func TestSequentialPlansCoverEveryChapterOnce(t *testing.T) {
	for _, key := range []Key{BibleInOneYear, NewTestamentInSixMonths} {
		t.Run(string(key), func(t *testing.T) {
			p := Lookup(key)
			require.Equal(t, KindSequential, p.Kind)
			assert.Equal(t, p.TotalDays, p.Days(), "table must have exactly TotalDays days")

			seen := map[string]map[int]bool{}
			count := 0
			for day := 1; day <= p.TotalDays; day++ {
				r, err := p.Reading(day)
				require.NoError(t, err, "day %d", day)
				require.NotEmpty(t, r.Passages)

				per := r.ChapterCount()
				assert.GreaterOrEqual(t, per, p.TotalChapters()/p.TotalDays)
				assert.LessOrEqual(t, per, p.TotalChapters()/p.TotalDays+1)

				for _, ps := range r.Passages {
					for _, c := range ps.Chapters {
						require.True(t, ValidChapter(ps.Book, c), "%s %d", ps.Book, c)
						if seen[ps.Book] == nil {
							seen[ps.Book] = map[int]bool{}
						}
						require.False(t, seen[ps.Book][c], "%s %d read twice", ps.Book, c)
						seen[ps.Book][c] = true
						count++
					}
				}
			}

			assert.Equal(t, p.TotalChapters(), count)
			for _, b := range p.Books {
				assert.Len(t, seen[b.Name], b.Chapters, b.Name)
			}

			_, err := p.Reading(p.TotalDays + 1)
			assert.ErrorIs(t, err, ErrPlanComplete)
		})
	}
}

func TestSequentialOrder(t *testing.T) {
	first, err := Compute(BibleInOneYear, 1)
	require.NoError(t, err)
	assert.Equal(t, "Genesis", first.Book())
	assert.Equal(t, 1, first.FirstChapter())
	assert.Equal(t, "Genesis 1-3", first.Reference())

	last, err := Compute(BibleInOneYear, 365)
	require.NoError(t, err)
	ps := last.Passages[len(last.Passages)-1]
	assert.Equal(t, "Revelation", ps.Book)
	assert.Equal(t, 22, ps.Chapters[len(ps.Chapters)-1])

	nt, err := Compute(NewTestamentInSixMonths, 1)
	require.NoError(t, err)
	assert.Equal(t, "Matthew", nt.Book())
}

func TestReadingCrossesBookBoundary(t *testing.T) {
	found := false
	for day := 1; day <= 365; day++ {
		r, err := Compute(BibleInOneYear, day)
		require.NoError(t, err)
		if len(r.Passages) > 1 {
			found = true
			assert.NotEqual(t, r.Passages[0].Book, r.Passages[1].Book)
			assert.Contains(t, r.Reference(), "; ")
			break
		}
	}
	assert.True(t, found, "some day should span two books")
}

func TestUnknownPlanFallsBackToSequential(t *testing.T) {
	assert.False(t, Known("bible_in_a_weekend"))

	got, err := Compute("bible_in_a_weekend", 10)
	require.NoError(t, err)
	want, err := Compute(BibleInOneYear, 10)
	require.NoError(t, err)

	assert.Equal(t, want.Passages, got.Passages)
	assert.Equal(t, BibleInOneYear, got.Plan)
}

func TestReadingIsACopy(t *testing.T) {
	r, err := Compute(BibleInOneYear, 2)
	require.NoError(t, err)
	r.Passages[0].Chapters[0] = 999

	again, err := Compute(BibleInOneYear, 2)
	require.NoError(t, err)
	assert.NotEqual(t, 999, again.Passages[0].Chapters[0])
}

func TestPassageString(t *testing.T) {
	assert.Equal(t, "Jude 1", Passage{Book: "Jude", Chapters: []int{1}}.String())
	assert.Equal(t, "Psalms 6-10", Passage{Book: "Psalms", Chapters: []int{6, 7, 8, 9, 10}}.String())
}
