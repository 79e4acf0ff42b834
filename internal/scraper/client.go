package scraper

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/config"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/ratelimit"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// Client is a rate-limited HTTP fetcher shared by the portal sources.
type Client struct {
	httpClient      *http.Client
	maxRetries      int
	retryDelay      time.Duration
	requestDelay    time.Duration
	lastRequestTime time.Time
	limiter         *ratelimit.Limiter
	userAgent       string
}

// NewClient builds a client from the scraper configuration.
func NewClient(cfg config.ScraperConfig, userAgent string) *Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Printf("Scraper: Failed to create cookie jar: %v", err)
		jar = nil
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
			Jar:     jar,
		},
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.GetRetryDelay(),
		requestDelay: cfg.GetRequestDelay(),
		limiter:      ratelimit.New(cfg.RequestsPerMinute, 0, cfg.RequestsPerMinute > 0),
		userAgent:    userAgent,
	}
}

// pace enforces the minimum delay between requests.
func (c *Client) pace() {
	if c.requestDelay == 0 {
		return
	}
	elapsed := time.Since(c.lastRequestTime)
	if elapsed < c.requestDelay {
		time.Sleep(c.requestDelay - elapsed)
	}
	c.lastRequestTime = time.Now()
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fr-TN,fr;q=0.9,ar;q=0.8,en;q=0.7")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Connection", "keep-alive")
}

// FetchDocument downloads a page and parses it with goquery, retrying
// transient failures with exponential backoff.
func (c *Client) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	c.pace()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.doWithRetry(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// doWithRetry performs the request with exponential backoff. Client
// errors other than 429 are not retried.
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.retryDelay
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			log.Printf("Scraper: Retry %d/%d for %s after %v", attempt, c.maxRetries, req.URL, backoff)
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(backoff):
			}
		}

		resp, err = c.httpClient.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		if err != nil {
			log.Printf("Scraper: Request failed (attempt %d): %v", attempt+1, err)
			continue
		}

		log.Printf("Scraper: Request failed (attempt %d): status %d", attempt+1, resp.StatusCode)
		if resp.Body != nil {
			resp.Body.Close()
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			break
		}
	}

	if err != nil {
		return nil, fmt.Errorf("request failed after %d retries: %w", c.maxRetries, err)
	}
	return nil, fmt.Errorf("request failed after %d retries: status code %d", c.maxRetries, resp.StatusCode)
}

// FetchRenderedDocument loads a page in headless Chrome and parses the
// rendered DOM. Needed for portals that build their listings client
// side (mubawab).
func (c *Client) FetchRenderedDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	c.pace()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(c.userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 30*time.Second)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp error: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}
	return doc, nil
}

// Stats exposes the rate limiter state for the admin API.
func (c *Client) Stats() ratelimit.Stats {
	return c.limiter.GetStats()
}
