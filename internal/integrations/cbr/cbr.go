// Package cbr reads the Central Bank of Russia key rate from its DailyInfo SOAP service.
package cbr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"fintrack/internal/logger"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 6 * time.Hour
	lookbackDays    = 30
)

// Client fetches the key rate and caches it for a few hours.
type Client struct {
	url  string
	http *http.Client
	ttl  time.Duration
	now  func() time.Time
	log  *zap.SugaredLogger

	mu        sync.Mutex
	rate      float64
	fetchedAt time.Time
}

// NewClient returns a client for the DailyInfo endpoint at url.
func NewClient(url string) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: defaultTimeout},
		ttl:  defaultCacheTTL,
		now:  time.Now,
		log:  logger.Named("cbr"),
	}
}

// KeyRate returns the most recent key rate in percent.
func (c *Client) KeyRate(ctx context.Context) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.rate, nil
	}

	body, err := c.sendRequest(ctx, c.buildSOAPRequest())
	if err != nil {
		return 0, err
	}
	rate, err := parseKeyRate(body)
	if err != nil {
		return 0, err
	}

	c.rate, c.fetchedAt = rate, c.now()
	c.log.Infow("key rate refreshed", "rate", rate)
	return rate, nil
}

func (c *Client) buildSOAPRequest() string {
	to := c.now()
	from := to.AddDate(0, 0, -lookbackDays)
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
  <soap12:Body>
    <KeyRate xmlns="http://web.cbr.ru/">
      <fromDate>%s</fromDate>
      <ToDate>%s</ToDate>
    </KeyRate>
  </soap12:Body>
</soap12:Envelope>`, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func (c *Client) sendRequest(ctx context.Context, payload string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("key rate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key rate request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// parseKeyRate extracts the newest KR/Rate from a KeyRate diffgram. The
// service lists rows newest first.
func parseKeyRate(raw []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return 0, fmt.Errorf("parse XML: %w", err)
	}

	rows := doc.FindElements("//diffgram/KeyRate/KR")
	if len(rows) == 0 {
		return 0, fmt.Errorf("no key rate data in response")
	}

	rateEl := rows[0].FindElement("./Rate")
	if rateEl == nil {
		return 0, fmt.Errorf("rate element missing")
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(rateEl.Text()), 64)
	if err != nil {
		return 0, fmt.Errorf("parse rate %q: %w", rateEl.Text(), err)
	}
	return rate, nil
}
