package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/miradorstack/sentiment-dashboard/internal/models"
	"github.com/miradorstack/sentiment-dashboard/internal/render"
	"github.com/miradorstack/sentiment-dashboard/internal/repo"
	"github.com/miradorstack/sentiment-dashboard/internal/utils"
)

// Banner texts.
const (
	MsgKeywordsUnavailable = "Eroare la încărcarea cuvintelor cheie. Vă rugăm reîncărcați pagina."
	MsgAnalysisFailed      = "A apărut o eroare la analizarea sentimentelor. Vă rugăm încercați din nou."
	MsgInitFailed          = "Eroare la inițializarea aplicației. Vă rugăm reîncărcați pagina."
)

// ErrSuperseded is returned when a newer analysis of the same session finished the race.
var ErrSuperseded = errors.New("analysis superseded by a newer request")

// Fetcher retrieves data from the sentiment API.
type Fetcher interface {
	FetchKeywords(ctx context.Context) ([]string, error)
	FetchSentiment(ctx context.Context, filter models.Filter) (*models.SentimentResponse, error)
}

// Controller runs bootstrap, keyword loading and analyses against a View.
type Controller struct {
	fetcher        Fetcher
	renderer       *render.Renderer
	sequencer      *Sequencer
	logger         *slog.Logger
	defaultKeyword string
	windowDays     int
	now            func() time.Time
}

// NewController wires a controller. A nil sequencer gets a fresh one.
func NewController(fetcher Fetcher, renderer *render.Renderer, sequencer *Sequencer, logger *slog.Logger, defaultKeyword string, windowDays int) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if sequencer == nil {
		sequencer = NewSequencer()
	}
	if renderer == nil {
		renderer = render.NewRenderer(time.UTC, logger)
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	return &Controller{
		fetcher:        fetcher,
		renderer:       renderer,
		sequencer:      sequencer,
		logger:         logger,
		defaultKeyword: defaultKeyword,
		windowDays:     windowDays,
		now:            time.Now,
	}
}

// Bootstrap seeds the default date window, loads keywords and runs the first analysis.
func (c *Controller) Bootstrap(ctx context.Context, session string, view View) error {
	start, end := utils.DefaultWindow(c.now(), c.windowDays)
	view.SetDateRange(start, end)
	view.ShowLoading(true)

	c.LoadKeywords(ctx, view)
	if err := ctx.Err(); err != nil {
		c.logger.Warn("bootstrap aborted", slog.String("error", err.Error()))
		view.ShowError(MsgInitFailed)
		view.ShowLoading(false)
		return err
	}
	return c.Analyze(ctx, session, view)
}

// LoadKeywords fills the suggestion list. Failures show a banner and yield an empty list.
func (c *Controller) LoadKeywords(ctx context.Context, view View) []string {
	keywords, err := c.fetcher.FetchKeywords(ctx)
	if err != nil {
		c.logger.Warn("keyword load failed", slog.String("error", err.Error()))
		view.ShowError(MsgKeywordsUnavailable)
		return []string{}
	}

	view.SetKeywordOptions(keywords)
	if len(keywords) > 0 && strings.TrimSpace(view.Inputs().Keyword) == "" {
		view.SetKeyword(keywords[0])
	}
	return keywords
}

// RestoreKeywords repopulates suggestions on follow-up pages. Failures are only logged
// since the browser already saw the keyword banner during bootstrap.
func (c *Controller) RestoreKeywords(ctx context.Context, view View) {
	keywords, err := c.fetcher.FetchKeywords(ctx)
	if err != nil {
		c.logger.Debug("keyword restore failed", slog.String("error", err.Error()))
		return
	}
	view.SetKeywordOptions(keywords)
}

// WithDefaults fills a missing keyword and missing dates the way the page does on bootstrap.
func (c *Controller) WithDefaults(filter models.Filter) models.Filter {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	if filter.Keyword == "" {
		filter.Keyword = c.defaultKeyword
	}
	start, end := utils.DefaultWindow(c.now(), c.windowDays)
	if strings.TrimSpace(filter.StartDate) == "" {
		filter.StartDate = start
	}
	if strings.TrimSpace(filter.EndDate) == "" {
		filter.EndDate = end
	}
	return filter
}

// Analyze validates the current inputs, fetches the analysis and renders it.
// The loading indicator is cleared on every path.
func (c *Controller) Analyze(ctx context.Context, session string, view View) error {
	view.ShowLoading(true)
	defer view.ShowLoading(false)

	filter := view.Inputs()
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	if filter.Keyword == "" {
		filter.Keyword = c.defaultKeyword
		view.SetKeyword(filter.Keyword)
	}

	if err := repo.ValidateFilter(filter); err != nil {
		view.ShowError(utils.UserMessage(err, MsgAnalysisFailed))
		return err
	}

	view.ClearResults()

	ticket := c.sequencer.Begin(ctx, session)
	defer ticket.Release()

	resp, err := c.fetcher.FetchSentiment(ticket.Context(), filter)
	if !ticket.Current() {
		c.logger.Debug("discarding superseded analysis", slog.String("session", session), slog.String("keyword", filter.Keyword))
		return ErrSuperseded
	}
	if err != nil {
		c.logger.Warn("analysis failed",
			slog.String("keyword", filter.Keyword),
			slog.String("start_date", filter.StartDate),
			slog.String("end_date", filter.EndDate),
			slog.String("error", err.Error()))
		view.ShowError(utils.UserMessage(err, MsgAnalysisFailed))
		return err
	}

	view.Render(c.renderer.Render(resp))
	return nil
}
