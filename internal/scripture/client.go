// Package scripture fetches chapter text from bible-api.com.
package scripture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daily-bible-bot/internal/logger"
	"daily-bible-bot/internal/models"
)

// MaxMessageRunes keeps a rendered chapter inside one Telegram message.
const MaxMessageRunes = 4000

// ErrUnavailable is returned whenever a chapter could not be fetched.
var ErrUnavailable = errors.New("scripture text unavailable")

type Verse struct {
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

type apiResponse struct {
	Reference string  `json:"reference"`
	Verses    []Verse `json:"verses"`
	Error     string  `json:"error"`
}

// Chapter is the text of one chapter in one translation.
type Chapter struct {
	Book        string
	Number      int
	Translation models.Translation
	Verses      []Verse
}

// Format renders the chapter as a chat message.
func (c Chapter) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 %s Chapter %d (%s)\n\n", c.Book, c.Number, c.Translation)
	for _, v := range c.Verses {
		fmt.Fprintf(&b, "%d. %s\n", v.Verse, strings.TrimSpace(v.Text))
	}
	return truncate(b.String(), MaxMessageRunes)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) chapterURL(book string, chapter int, tr models.Translation) string {
	return fmt.Sprintf("%s/%s+%d?translation=%s",
		c.baseURL, strings.ReplaceAll(book, " ", "+"), chapter, url.QueryEscape(string(tr)))
}

// FetchText downloads one chapter. Every failure is reported as
// ErrUnavailable wrapping the cause.
func (c *Client) FetchText(ctx context.Context, book string, chapter int, tr models.Translation) (Chapter, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.chapterURL(book, chapter, tr), nil)
	if err != nil {
		return Chapter{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("scripture request failed", "book", book, "chapter", chapter, "error", err)
		return Chapter{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Chapter{}, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil && resp.StatusCode == http.StatusOK {
		return Chapter{}, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if data.Error != "" {
		return Chapter{}, fmt.Errorf("%w: %s %d: %s", ErrUnavailable, book, chapter, data.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return Chapter{}, fmt.Errorf("%w: %s %d: status %d", ErrUnavailable, book, chapter, resp.StatusCode)
	}
	if len(data.Verses) == 0 {
		return Chapter{}, fmt.Errorf("%w: %s %d: no verses", ErrUnavailable, book, chapter)
	}

	logger.Debug("chapter fetched", "reference", data.Reference, "verses", len(data.Verses))
	return Chapter{Book: book, Number: chapter, Translation: tr, Verses: data.Verses}, nil
}
