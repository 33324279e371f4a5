package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/miradorstack/sentiment-dashboard/internal/dashboard"
	"github.com/miradorstack/sentiment-dashboard/internal/models"
	"github.com/miradorstack/sentiment-dashboard/internal/repo"
	"github.com/miradorstack/sentiment-dashboard/internal/services"
	"github.com/miradorstack/sentiment-dashboard/internal/utils"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	indexTemplate = "index.html.tmpl"
	sessionCookie = "sd_session"
	sessionMaxAge = 30 * 24 * 60 * 60
)

// Dashboard is the service surface the handlers depend on.
type Dashboard interface {
	Page(ctx context.Context, session string, q services.PageQuery) (*dashboard.Page, error)
	Keywords(ctx context.Context) ([]string, error)
	Sentiment(ctx context.Context, filter models.Filter) (*models.SentimentResponse, error)
}

type handlers struct {
	svc    Dashboard
	logger *slog.Logger
}

// NewRouter builds the gin engine serving the page, the JSON API and static assets.
func NewRouter(svc Dashboard, logger *slog.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	h := &handlers{svc: svc, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", h.index)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.StaticFS("/static", http.FS(assets))

	apiGroup := r.Group("/api")
	apiGroup.GET("/keywords", h.keywords)
	apiGroup.GET("/sentiment", h.sentiment)

	return r, nil
}

func (h *handlers) index(c *gin.Context) {
	session := h.session(c)

	q := services.PageQuery{
		Keyword:   c.Query("keyword"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	_, hasKeyword := c.GetQuery("keyword")
	_, hasStart := c.GetQuery("start_date")
	_, hasEnd := c.GetQuery("end_date")
	q.Submitted = hasKeyword || hasStart || hasEnd

	page, err := h.svc.Page(c.Request.Context(), session, q)
	if errors.Is(err, dashboard.ErrSuperseded) {
		c.String(http.StatusConflict, "superseded by a newer request")
		return
	}
	if page == nil {
		h.logger.Error("page render failed", slog.Any("error", err))
		c.String(http.StatusInternalServerError, dashboard.MsgInitFailed)
		return
	}
	c.HTML(http.StatusOK, indexTemplate, page)
}

func (h *handlers) keywords(c *gin.Context) {
	keywords, err := h.svc.Keywords(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), models.ErrorResponse{Error: utils.UserMessage(err, repo.MsgKeywordsFailed)})
		return
	}
	c.JSON(http.StatusOK, models.KeywordsResponse{Keywords: keywords})
}

func (h *handlers) sentiment(c *gin.Context) {
	filter := models.Filter{
		Keyword:   c.Query("keyword"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	resp, err := h.svc.Sentiment(c.Request.Context(), filter)
	if err != nil {
		c.JSON(statusFor(err), models.ErrorResponse{Error: utils.UserMessage(err, repo.MsgServerError)})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// session returns the browser session id, issuing a new cookie when absent.
func (h *handlers) session(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, sessionMaxAge, "/", "", false, true)
	return id
}

// statusFor maps upstream failure kinds onto the status of our JSON endpoints.
func statusFor(err error) int {
	var statusErr *repo.StatusError
	switch {
	case errors.Is(err, repo.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.As(err, &statusErr) && statusErr.Code >= 400 && statusErr.Code < 500:
		return statusErr.Code
	default:
		return http.StatusBadGateway
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)))
	}
}
