package plans

// Book is one entry of the canonical book table.
type Book struct {
	Name     string
	Chapters int
}

// canon is the 66-book Protestant canon in reading order. It is the only
// source of chapter counts in the bot.
var canon = []Book{
	// Old Testament
	{"Genesis", 50}, {"Exodus", 40}, {"Leviticus", 27}, {"Numbers", 36}, {"Deuteronomy", 34},
	{"Joshua", 24}, {"Judges", 21}, {"Ruth", 4}, {"1 Samuel", 31}, {"2 Samuel", 24},
	{"1 Kings", 22}, {"2 Kings", 25}, {"1 Chronicles", 29}, {"2 Chronicles", 36}, {"Ezra", 10},
	{"Nehemiah", 13}, {"Esther", 10}, {"Job", 42}, {"Psalms", 150}, {"Proverbs", 31},
	{"Ecclesiastes", 12}, {"Song of Solomon", 8}, {"Isaiah", 66}, {"Jeremiah", 52}, {"Lamentations", 5},
	{"Ezekiel", 48}, {"Daniel", 12}, {"Hosea", 14}, {"Joel", 3}, {"Amos", 9},
	{"Obadiah", 1}, {"Jonah", 4}, {"Micah", 7}, {"Nahum", 3}, {"Habakkuk", 3},
	{"Zephaniah", 3}, {"Haggai", 2}, {"Zechariah", 14}, {"Malachi", 4},
	// New Testament
	{"Matthew", 28}, {"Mark", 16}, {"Luke", 24}, {"John", 21}, {"Acts", 28},
	{"Romans", 16}, {"1 Corinthians", 16}, {"2 Corinthians", 13}, {"Galatians", 6}, {"Ephesians", 6},
	{"Philippians", 4}, {"Colossians", 4}, {"1 Thessalonians", 5}, {"2 Thessalonians", 3}, {"1 Timothy", 6},
	{"2 Timothy", 4}, {"Titus", 3}, {"Philemon", 1}, {"Hebrews", 13}, {"James", 5},
	{"1 Peter", 5}, {"2 Peter", 3}, {"1 John", 5}, {"2 John", 1}, {"3 John", 1},
	{"Jude", 1}, {"Revelation", 22},
}

// newTestamentStart is the index of Matthew in canon.
const newTestamentStart = 39

var chapterCounts = func() map[string]int {
	m := make(map[string]int, len(canon))
	for _, b := range canon {
		m[b.Name] = b.Chapters
	}
	return m
}()

// Books returns a copy of the canonical book table.
func Books() []Book {
	out := make([]Book, len(canon))
	copy(out, canon)
	return out
}

// ChapterCount returns the number of chapters of book and whether the book
// is part of the canon.
func ChapterCount(book string) (int, bool) {
	n, ok := chapterCounts[book]
	return n, ok
}

// ValidChapter reports whether chapter exists in book.
func ValidChapter(book string, chapter int) bool {
	n, ok := ChapterCount(book)
	return ok && chapter >= 1 && chapter <= n
}

func totalChapters(books []Book) int {
	total := 0
	for _, b := range books {
		total += b.Chapters
	}
	return total
}
