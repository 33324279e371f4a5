package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/miradorstack/sentiment-dashboard/internal/cache"
	"github.com/miradorstack/sentiment-dashboard/internal/metrics"
	"github.com/miradorstack/sentiment-dashboard/internal/models"
	"github.com/miradorstack/sentiment-dashboard/internal/utils"
)

// Failure kinds returned (wrapped in *utils.AppError) by SentimentAPIClient.
var (
	ErrTransport    = errors.New("sentiment api unreachable")
	ErrStatus       = errors.New("sentiment api returned a non-success status")
	ErrUpstream     = errors.New("sentiment api reported an error")
	ErrInvalidRange = errors.New("invalid date range")
)

// Banner texts.
const (
	MsgServerError    = "Eroare la preluarea datelor de la server"
	MsgKeywordsFailed = "Nu s-au putut încărca cuvintele cheie"
	MsgStartAfterEnd  = "Data de început trebuie să fie înainte de data de sfârșit."
	MsgInvalidDates   = "Datele selectate nu sunt valide."
)

const (
	keywordsCacheKey = "sentiment-dashboard:keywords"
	maxBodyBytes     = 64 << 20

	endpointKeywords  = "keywords"
	endpointSentiment = "sentiment"
)

// StatusError records the HTTP status of a non-success upstream response.
// It matches ErrStatus under errors.Is.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sentiment api returned %d %s", e.Code, http.StatusText(e.Code))
}

// Is reports ErrStatus equivalence.
func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// SentimentAPIClient wraps the sentiment analysis HTTP API.
type SentimentAPIClient struct {
	baseURL       string
	keywordsPath  string
	sentimentPath string
	httpClient    *http.Client
	cache         cache.Provider
	keywordsTTL   time.Duration
	limiter       *rate.Limiter
}

// NewSentimentAPIClient constructs a client targeting the configured sentiment API.
// A nil cache disables keyword caching; a nil limiter disables rate limiting.
func NewSentimentAPIClient(baseURL, keywordsPath, sentimentPath string, timeout time.Duration, cacheProvider cache.Provider, keywordsTTL time.Duration, limiter *rate.Limiter) *SentimentAPIClient {
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	return &SentimentAPIClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		keywordsPath:  keywordsPath,
		sentimentPath: sentimentPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:       cacheProvider,
		keywordsTTL: keywordsTTL,
		limiter:     limiter,
	}
}

// FetchKeywords returns the suggested keywords, served from cache while fresh.
func (c *SentimentAPIClient) FetchKeywords(ctx context.Context) ([]string, error) {
	const op = "fetch keywords"
	if c == nil || c.baseURL == "" {
		return nil, utils.NewAppError(op, MsgKeywordsFailed, fmt.Errorf("%w: base URL not configured", ErrTransport))
	}

	if cached, ok := c.cachedKeywords(ctx); ok {
		return cached, nil
	}

	var response models.KeywordsResponse
	if _, err := c.getJSON(ctx, endpointKeywords, c.resolvePath(c.keywordsPath), &response); err != nil {
		return nil, utils.NewAppError(op, MsgKeywordsFailed, err)
	}
	keywords := response.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	if c.keywordsTTL > 0 {
		if data, err := json.Marshal(keywords); err == nil {
			_ = c.cache.Set(ctx, keywordsCacheKey, data, c.keywordsTTL)
		}
	}
	return keywords, nil
}

// FetchSentiment validates the filter and retrieves the analysis payload.
// Analyses are never cached.
func (c *SentimentAPIClient) FetchSentiment(ctx context.Context, filter models.Filter) (*models.SentimentResponse, error) {
	const op = "fetch sentiment"
	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}
	if c == nil || c.baseURL == "" {
		return nil, utils.NewAppError(op, "", fmt.Errorf("%w: base URL not configured", ErrTransport))
	}

	query := url.Values{}
	query.Set("keyword", filter.Keyword)
	query.Set("start_date", filter.StartDate)
	query.Set("end_date", filter.EndDate)
	endpoint := c.resolvePath(c.sentimentPath) + "?" + query.Encode()

	var payload struct {
		models.SentimentResponse
		Error string `json:"error"`
	}
	status, err := c.getJSON(ctx, endpointSentiment, endpoint, &payload)
	if err != nil {
		return nil, utils.NewAppError(op, userMessageFor(err), err)
	}
	if payload.Error != "" {
		return nil, utils.NewAppError(op, payload.Error, fmt.Errorf("%w (status %d)", ErrUpstream, status))
	}

	result := payload.SentimentResponse
	return &result, nil
}

// ValidateFilter enforces well-formed dates with start <= end.
func ValidateFilter(filter models.Filter) error {
	const op = "validate filter"
	start, err := utils.ParseDate(filter.StartDate)
	if err != nil {
		return utils.NewAppError(op, MsgInvalidDates, fmt.Errorf("%w: start date: %v", ErrInvalidRange, err))
	}
	end, err := utils.ParseDate(filter.EndDate)
	if err != nil {
		return utils.NewAppError(op, MsgInvalidDates, fmt.Errorf("%w: end date: %v", ErrInvalidRange, err))
	}
	if start.After(end) {
		return utils.NewAppError(op, MsgStartAfterEnd, fmt.Errorf("%w: %s after %s", ErrInvalidRange, filter.StartDate, filter.EndDate))
	}
	return nil
}

func (c *SentimentAPIClient) cachedKeywords(ctx context.Context) ([]string, bool) {
	if c.keywordsTTL <= 0 {
		return nil, false
	}
	data, err := c.cache.Get(ctx, keywordsCacheKey)
	if err != nil {
		metrics.ObserveCacheLookup(false)
		return nil, false
	}
	var keywords []string
	if err := json.Unmarshal(data, &keywords); err != nil {
		metrics.ObserveCacheLookup(false)
		_ = c.cache.Del(ctx, keywordsCacheKey)
		return nil, false
	}
	metrics.ObserveCacheLookup(true)
	return keywords, true
}

func (c *SentimentAPIClient) resolvePath(p string) string {
	if c.baseURL == "" {
		return ""
	}
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	return u.String()
}

// getJSON issues a GET and decodes the body into out. Non-success statuses are
// returned as *StatusError wrapped together with the upstream {error} text, if any.
func (c *SentimentAPIClient) getJSON(ctx context.Context, endpointLabel, endpoint string, out any) (int, error) {
	if endpoint == "" {
		return 0, fmt.Errorf("%w: empty endpoint", ErrTransport)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("%w: rate limit wait: %v", ErrTransport, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(endpointLabel, 0, time.Since(started))
		return 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.ObserveUpstream(endpointLabel, resp.StatusCode, time.Since(started))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Code: resp.StatusCode}
		var envelope models.ErrorResponse
		if decodeLenient(body, &envelope) == nil && envelope.Error != "" {
			return resp.StatusCode, &upstreamMessageError{status: statusErr, message: envelope.Error}
		}
		return resp.StatusCode, statusErr
	}

	if err := decodeLenient(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// upstreamMessageError carries the {error} text of a non-success response.
type upstreamMessageError struct {
	status  *StatusError
	message string
}

func (e *upstreamMessageError) Error() string { return e.status.Error() + ": " + e.message }
func (e *upstreamMessageError) Unwrap() error { return e.status }

func userMessageFor(err error) string {
	var withMessage *upstreamMessageError
	if errors.As(err, &withMessage) {
		return withMessage.message
	}
	if errors.Is(err, ErrStatus) {
		return MsgServerError
	}
	return ""
}

// decodeLenient decodes JSON, retrying once with NaN and Infinity literals
// replaced by null since the upstream serialises empty daily averages that way.
func decodeLenient(body []byte, out any) error {
	err := json.Unmarshal(body, out)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}
	patched, changed := nullNonFinite(body)
	if !changed {
		return err
	}
	return json.Unmarshal(patched, out)
}

var nonFiniteLiterals = [][]byte{
	[]byte("-Infinity"), []byte("Infinity"), []byte("-NaN"), []byte("NaN"),
}

// nullNonFinite rewrites bare NaN and Infinity values to null. String tokens
// are copied untouched.
func nullNonFinite(body []byte) ([]byte, bool) {
	var (
		buf      bytes.Buffer
		inString bool
		escaped  bool
		changed  bool
	)
	buf.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if inString {
			buf.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			buf.WriteByte(c)
			continue
		}
		if lit := nonFiniteAt(body[i:]); lit > 0 {
			buf.WriteString("null")
			i += lit - 1
			changed = true
			continue
		}
		buf.WriteByte(c)
	}
	return buf.Bytes(), changed
}

func nonFiniteAt(b []byte) int {
	for _, lit := range nonFiniteLiterals {
		if bytes.HasPrefix(b, lit) {
			return len(lit)
		}
	}
	return 0
}
