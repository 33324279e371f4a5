package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/miradorstack/sentiment-dashboard/internal/models"
	"github.com/miradorstack/sentiment-dashboard/internal/render"
	"github.com/miradorstack/sentiment-dashboard/internal/repo"
	"github.com/miradorstack/sentiment-dashboard/internal/utils"
)

type recordingView struct {
	Page
	loadingCalls []bool
	errors       []string
	renders      int
	clears       int
}

func (v *recordingView) ShowLoading(show bool) {
	v.loadingCalls = append(v.loadingCalls, show)
	v.Page.ShowLoading(show)
}

func (v *recordingView) ShowError(message string) {
	v.errors = append(v.errors, message)
	v.Page.ShowError(message)
}

func (v *recordingView) ClearResults() {
	v.clears++
	v.Page.ClearResults()
}

func (v *recordingView) Render(d render.Dashboard) {
	v.renders++
	v.Page.Render(d)
}

func (v *recordingView) lastLoading() bool {
	if len(v.loadingCalls) == 0 {
		return false
	}
	return v.loadingCalls[len(v.loadingCalls)-1]
}

type stubFetcher struct {
	mu             sync.Mutex
	keywords       []string
	keywordsErr    error
	response       *models.SentimentResponse
	sentimentErr   error
	sentimentCalls []models.Filter
	block          chan struct{}
}

func (s *stubFetcher) FetchKeywords(context.Context) ([]string, error) {
	return s.keywords, s.keywordsErr
}

func (s *stubFetcher) FetchSentiment(ctx context.Context, filter models.Filter) (*models.SentimentResponse, error) {
	s.mu.Lock()
	s.sentimentCalls = append(s.sentimentCalls, filter)
	block := s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.response, s.sentimentErr
}

func (s *stubFetcher) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sentimentCalls)
}

func newTestController(f Fetcher) *Controller {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewController(f, render.NewRenderer(time.UTC, logger), NewSequencer(), logger, "energie", 30)
	c.now = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }
	return c
}

func TestAnalyzeRejectsInvertedRangeWithoutFetching(t *testing.T) {
	fetcher := &stubFetcher{}
	view := &recordingView{Page: Page{Keyword: "energie", StartDate: "2024-04-01", EndDate: "2024-03-01"}}

	err := newTestController(fetcher).Analyze(context.Background(), "s1", view)
	if !errors.Is(err, repo.ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
	if len(fetcher.sentimentCalls) != 0 {
		t.Fatalf("network must not be touched")
	}
	if len(view.errors) != 1 || view.errors[0] != repo.MsgStartAfterEnd {
		t.Fatalf("unexpected banners %v", view.errors)
	}
	if view.lastLoading() {
		t.Fatalf("loading indicator left on")
	}
}

func TestLoadKeywordsSetsOptionsAndDefault(t *testing.T) {
	fetcher := &stubFetcher{keywords: []string{"energie", "politica"}}
	view := &recordingView{}

	got := newTestController(fetcher).LoadKeywords(context.Background(), view)
	if len(got) != 2 || len(view.KeywordOptions) != 2 || view.KeywordOptions[0] != "energie" || view.KeywordOptions[1] != "politica" {
		t.Fatalf("unexpected options %v", view.KeywordOptions)
	}
	if view.Keyword != "energie" {
		t.Fatalf("empty keyword must take the first suggestion, got %q", view.Keyword)
	}

	view = &recordingView{Page: Page{Keyword: "sport"}}
	newTestController(fetcher).LoadKeywords(context.Background(), view)
	if view.Keyword != "sport" {
		t.Fatalf("existing keyword overwritten: %q", view.Keyword)
	}
}

func TestLoadKeywordsFailureShowsBanner(t *testing.T) {
	fetcher := &stubFetcher{keywordsErr: errors.New("down")}
	view := &recordingView{}

	got := newTestController(fetcher).LoadKeywords(context.Background(), view)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
	if len(view.errors) != 1 || view.errors[0] != MsgKeywordsUnavailable {
		t.Fatalf("unexpected banners %v", view.errors)
	}
}

func TestBootstrapSeedsWindowAndAnalyzes(t *testing.T) {
	total := 3
	fetcher := &stubFetcher{
		keywordsErr: errors.New("down"),
		response:    &models.SentimentResponse{TotalTweets: &total},
	}
	view := &recordingView{}

	if err := newTestController(fetcher).Bootstrap(context.Background(), "s1", view); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.StartDate != "2024-02-14" || view.EndDate != "2024-03-15" {
		t.Fatalf("unexpected window %s..%s", view.StartDate, view.EndDate)
	}
	if len(fetcher.sentimentCalls) != 1 || fetcher.sentimentCalls[0].Keyword != "energie" {
		t.Fatalf("expected default keyword analysis, got %+v", fetcher.sentimentCalls)
	}
	if view.renders != 1 || view.Results == nil {
		t.Fatalf("dashboard not rendered")
	}
	if !view.loadingCalls[0] || view.lastLoading() {
		t.Fatalf("unexpected loading sequence %v", view.loadingCalls)
	}
}

func TestBootstrapAbortedContextShowsInitError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	view := &recordingView{}

	err := newTestController(&stubFetcher{}).Bootstrap(ctx, "s1", view)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if view.errors[len(view.errors)-1] != MsgInitFailed || view.lastLoading() {
		t.Fatalf("unexpected view state %+v", view)
	}
}

func TestAnalyzeFailureClearsLoadingAndShowsMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"upstream message", utils.NewAppError("fetch sentiment", "Nu s-au găsit tweet-uri", repo.ErrStatus), "Nu s-au găsit tweet-uri"},
		{"transport", utils.NewAppError("fetch sentiment", "", repo.ErrTransport), MsgAnalysisFailed},
		{"bare error", errors.New("boom"), MsgAnalysisFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &stubFetcher{sentimentErr: tc.err}
			view := &recordingView{Page: Page{Keyword: "energie", StartDate: "2024-03-01", EndDate: "2024-03-31"}}

			if err := newTestController(fetcher).Analyze(context.Background(), "s1", view); err == nil {
				t.Fatalf("expected error")
			}
			if view.lastLoading() {
				t.Fatalf("loading indicator left on")
			}
			if len(view.errors) != 1 || view.errors[0] != tc.want {
				t.Fatalf("unexpected banners %v", view.errors)
			}
			if view.renders != 0 || view.clears != 1 {
				t.Fatalf("previous results must be cleared and nothing rendered")
			}
		})
	}
}

func TestAnalyzeSupersededResultIsDiscarded(t *testing.T) {
	fetcher := &stubFetcher{block: make(chan struct{}), response: &models.SentimentResponse{}}
	c := newTestController(fetcher)

	first := &recordingView{Page: Page{Keyword: "vechi", StartDate: "2024-03-01", EndDate: "2024-03-31"}}
	done := make(chan error, 1)
	go func() { done <- c.Analyze(context.Background(), "s1", first) }()

	deadline := time.Now().Add(2 * time.Second)
	for fetcher.calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first analysis never started")
		}
		time.Sleep(time.Millisecond)
	}

	second := &recordingView{Page: Page{Keyword: "nou", StartDate: "2024-03-01", EndDate: "2024-03-31"}}
	fetcher.mu.Lock()
	fetcher.block = nil
	fetcher.mu.Unlock()
	if err := c.Analyze(context.Background(), "s1", second); err != nil {
		t.Fatalf("second analysis failed: %v", err)
	}

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected superseded, got %v", err)
	}
	if first.renders != 0 {
		t.Fatalf("stale response rendered")
	}
	if first.lastLoading() {
		t.Fatalf("loading indicator left on for superseded analysis")
	}
	if second.renders != 1 {
		t.Fatalf("latest response not rendered")
	}
}

func TestSequencerSessionsAreIndependent(t *testing.T) {
	s := NewSequencer()
	a := s.Begin(context.Background(), "a")
	b := s.Begin(context.Background(), "b")
	anon := s.Begin(context.Background(), "")
	if !a.Current() || !b.Current() || !anon.Current() {
		t.Fatalf("independent sessions must not supersede each other")
	}

	a2 := s.Begin(context.Background(), "a")
	if a.Current() || a.Context().Err() == nil {
		t.Fatalf("older ticket must be stale and cancelled")
	}
	a.Release()
	if !a2.Current() {
		t.Fatalf("releasing a stale ticket must not evict the newer one")
	}
	a2.Release()
	b.Release()
	anon.Release()
	if s.InFlight() != 0 {
		t.Fatalf("expected no sessions in flight, got %d", s.InFlight())
	}
}

func TestWithDefaultsFillsMissingValues(t *testing.T) {
	c := newTestController(&stubFetcher{})
	got := c.WithDefaults(models.Filter{Keyword: "  ", EndDate: "2024-01-31"})
	if got.Keyword != "energie" || got.StartDate != "2024-02-14" || got.EndDate != "2024-01-31" {
		t.Fatalf("unexpected filter %+v", got)
	}
}
