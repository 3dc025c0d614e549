package tool

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
)

// DuckDuckGoLiteURL is the HTML lite endpoint, stable enough to scrape.
const DuckDuckGoLiteURL = "https://lite.duckduckgo.com/lite/"

// DuckDuckGo is a keyless searcher over DuckDuckGo's lite HTML interface.
// It never synthesizes an answer; only result snippets are returned.
type DuckDuckGo struct {
	endpoint string
	client   *http.Client

	// one query per second per searcher
	mu   sync.Mutex
	last time.Time
}

// NewDuckDuckGo creates a DuckDuckGo searcher. An empty endpoint selects DuckDuckGoLiteURL.
func NewDuckDuckGo(endpoint string, timeout time.Duration) *DuckDuckGo {
	if endpoint == "" {
		endpoint = DuckDuckGoLiteURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &DuckDuckGo{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) throttle(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if wait := time.Until(d.last.Add(time.Second)); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	d.last = time.Now()
	return nil
}

// Search scrapes the lite results page.
func (d *DuckDuckGo) Search(ctx context.Context, query string, opts domain.SearchOptions) (domain.SearchRecord, error) {
	if strings.TrimSpace(query) == "" {
		return domain.SearchRecord{}, errors.New("duckduckgo: query is empty")
	}
	if err := d.throttle(ctx); err != nil {
		return domain.SearchRecord{}, err
	}

	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.SearchRecord{}, errors.Wrap(err, "duckduckgo: failed to create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return domain.SearchRecord{}, errors.Wrap(err, "duckduckgo: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SearchRecord{}, errors.Errorf("duckduckgo: http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.SearchRecord{}, errors.Wrap(err, "duckduckgo: failed to parse results page")
	}

	return domain.SearchRecord{Query: query, Results: parseLiteResults(doc, opts.MaxResults)}, nil
}

// parseLiteResults pairs each a.result-link with the following td.result-snippet.
func parseLiteResults(doc *goquery.Document, limit int) []domain.SearchResult {
	var results []domain.SearchResult
	snippets := doc.Find("td.result-snippet")

	doc.Find("a.result-link").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		title := collapseWhitespace(a.Text())
		href = unwrapRedirect(href)
		if href == "" || title == "" {
			return true
		}

		var content string
		if i < snippets.Length() {
			content = cleanSnippet(snippets.Eq(i).Text())
		}
		results = append(results, domain.SearchResult{Title: title, URL: href, Content: content})
		return limit <= 0 || len(results) < limit
	})
	return results
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg= redirect links.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" && strings.Contains(u.Host, "duckduckgo.com") {
		return target
	}
	return href
}
