// Package quranapi fetches verse data for a Quran page from the alquran.cloud API.
package quranapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
)

// MinVersesPerPage is the minimum verse count a page must have to be usable
// for quiz generation.
const MinVersesPerPage = 4

const (
	textEdition  = "quran-uthmani"
	linesEdition = "quran-uthmani-lines"
)

var (
	ErrNotEnoughVerses  = errors.New("page does not contain enough verses")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// Client is an HTTP client of the alquran.cloud API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a verse source client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// pageResponse mirrors the API envelope for a page request.
type pageResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Ayahs []struct {
			Number        int    `json:"number"`
			Text          string `json:"text"`
			NumberInSurah int    `json:"numberInSurah"`
			Line          *int   `json:"line"`
		} `json:"ayahs"`
	} `json:"data"`
}

// FetchPage fetches the verse text and the line layout of a page in parallel
// and merges them by the shared verse number. If either request fails the
// whole load fails.
func (c *Client) FetchPage(ctx context.Context, page int) ([]entities.Verse, error) {
	var textResp, linesResp pageResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getPage(gctx, page, textEdition, &textResp)
	})
	g.Go(func() error {
		return c.getPage(gctx, page, linesEdition, &linesResp)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}

	if len(textResp.Data.Ayahs) < MinVersesPerPage {
		return nil, fmt.Errorf("fetch page %d: %w", page, ErrNotEnoughVerses)
	}

	// Index line info by verse number; verses without an entry keep a nil line.
	lines := make(map[int]*int, len(linesResp.Data.Ayahs))
	for _, a := range linesResp.Data.Ayahs {
		lines[a.Number] = a.Line
	}

	verses := make([]entities.Verse, 0, len(textResp.Data.Ayahs))
	for _, a := range textResp.Data.Ayahs {
		verses = append(verses, entities.Verse{
			Number:        a.Number,
			Text:          a.Text,
			NumberInSurah: a.NumberInSurah,
			Line:          lines[a.Number],
		})
	}

	return verses, nil
}

func (c *Client) getPage(ctx context.Context, page int, edition string, out *pageResponse) error {
	url := fmt.Sprintf("%s/page/%d/%s", c.baseURL, page, edition)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", edition, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: %w: %s", edition, ErrUnexpectedStatus, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", edition, err)
	}

	if out.Code != http.StatusOK {
		return fmt.Errorf("get %s: %w: code %d", edition, ErrUnexpectedStatus, out.Code)
	}

	return nil
}
