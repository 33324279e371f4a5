package render

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/miradorstack/sentiment-dashboard/internal/format"
	"github.com/miradorstack/sentiment-dashboard/internal/models"
)

// Informational and error texts shown inside views.
const (
	MsgNoTimeSeries   = "Nu există date pentru afișarea graficului de evoluție."
	MsgNoDistribution = "Nu există date pentru distribuția sentimentelor."
	MsgNoWordCloud    = "Nu s-a putut genera word cloud-ul. Încercați cu alte cuvinte cheie."
	MsgNoTweets       = "Nu s-au găsit postări pentru criteriile selectate."

	MsgTimeSeriesFailed   = "Eroare la afișarea evoluției în timp."
	MsgDistributionFailed = "Eroare la afișarea distribuției sentimentelor."
	MsgWordCloudFailed    = "Eroare la afișarea word cloud-ului."
	MsgTweetsFailed       = "Eroare la afișarea postărilor."
	MsgSummaryFailed      = "Eroare la afișarea statisticilor."
)

const chartHeight = 400

var summaryTitles = map[models.Sentiment]string{
	models.SentimentVeryPositive:     "Foarte Pozitive",
	models.SentimentPositive:         "Pozitive",
	models.SentimentSlightlyPositive: "Ușor Pozitive",
	models.SentimentNeutral:          "Neutre",
	models.SentimentSlightlyNegative: "Ușor Negative",
	models.SentimentNegative:         "Negative",
	models.SentimentVeryNegative:     "Foarte Negative",
}

var summaryIDs = map[models.Sentiment]string{
	models.SentimentVeryPositive:     "veryPositiveTweets",
	models.SentimentPositive:         "positiveTweets",
	models.SentimentSlightlyPositive: "slightlyPositiveTweets",
	models.SentimentNeutral:          "neutralTweets",
	models.SentimentSlightlyNegative: "slightlyNegativeTweets",
	models.SentimentNegative:         "negativeTweets",
	models.SentimentVeryNegative:     "veryNegativeTweets",
}

// Renderer turns a SentimentResponse into a Dashboard. It holds no per-request state.
type Renderer struct {
	loc    *time.Location
	logger *slog.Logger
}

// NewRenderer builds a Renderer that shows post dates in loc.
func NewRenderer(loc *time.Location, logger *slog.Logger) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{loc: loc, logger: logger}
}

// Render builds every view independently. A failure inside one view becomes an
// error notice for that view only.
func (r *Renderer) Render(resp *models.SentimentResponse) Dashboard {
	if resp == nil {
		resp = &models.SentimentResponse{}
	}
	var d Dashboard

	d.TimeSeries = guard(r, "time_series", func() TimeSeriesView { return r.TimeSeries(resp.TimeSeries) },
		func() TimeSeriesView { return TimeSeriesView{Notice: danger(MsgTimeSeriesFailed)} })
	d.Pie = guard(r, "distribution", func() PieView { return r.Pie(resp.SentimentDistribution) },
		func() PieView { return PieView{Notice: danger(MsgDistributionFailed)} })
	d.WordCloud = guard(r, "wordcloud", func() WordCloudView { return r.WordCloud(resp.WordCloud) },
		func() WordCloudView { return WordCloudView{Hidden: true, Notice: danger(MsgWordCloudFailed)} })
	d.Tweets = guard(r, "tweets", func() TweetListView { return r.Tweets(resp.Tweets, resp.TotalTweets) },
		func() TweetListView { return TweetListView{Notice: danger(MsgTweetsFailed)} })
	d.Summary = guard(r, "summary", func() SummaryView { return r.Summary(resp) },
		func() SummaryView { return SummaryView{Notice: danger(MsgSummaryFailed)} })

	return d
}

func guard[T any](r *Renderer, view string, build func() T, fallback func() T) (out T) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("view render failed", slog.String("view", view), slog.Any("panic", rec))
			out = fallback()
		}
	}()
	return build()
}

// TimeSeries builds the daily score line chart, points ordered by date.
func (r *Renderer) TimeSeries(points []models.TimeSeriesPoint) TimeSeriesView {
	if len(points) == 0 {
		return TimeSeriesView{Notice: info(MsgNoTimeSeries)}
	}

	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b models.TimeSeriesPoint) int {
		return strings.Compare(a.Date, b.Date)
	})

	x := make([]string, len(sorted))
	y := make([]*float64, len(sorted))
	for i, p := range sorted {
		x[i] = p.Date
		y[i] = p.Score
	}

	return TimeSeriesView{Figure: &Figure{
		Data: []Trace{{
			Type:          "scatter",
			Mode:          "lines+markers",
			Name:          "Sentiment",
			X:             x,
			Y:             y,
			Line:          &Line{Color: "#4a90e2"},
			Marker:        &Marker{Size: 8},
			HoverTemplate: "Data: %{x}<br>Scor: %{y:.3f}<extra></extra>",
			ConnectGaps:   boolPtr(false),
		}},
		Layout: Layout{
			Title: "Evoluția sentimentelor în timp",
			XAxis: &Axis{Title: "Dată", Type: "date", TickFormat: "%d %b %Y"},
			YAxis: &Axis{
				Title:    "Scor sentiment",
				Range:    []float64{-1, 1},
				TickVals: []float64{-1, -0.75, -0.5, -0.25, 0, 0.25, 0.5, 0.75, 1},
				TickText: []string{"-1 (Foarte Negativ)", "-0.75", "-0.5", "-0.25", "0 (Neutru)", "0.25", "0.5", "0.75", "1 (Foarte Pozitiv)"},
			},
			HoverMode: "closest",
			Margin:    &Margin{T: 40, B: 80, L: 80, R: 40},
			Height:    chartHeight,
		},
		Config: map[string]any{"responsive": true},
	}}
}

// Pie builds the distribution chart in bucket order. Unknown buckets sort first.
func (r *Renderer) Pie(distribution []models.SentimentCount) PieView {
	if len(distribution) == 0 {
		return PieView{Notice: info(MsgNoDistribution)}
	}

	sorted := slices.Clone(distribution)
	slices.SortStableFunc(sorted, func(a, b models.SentimentCount) int {
		return a.Sentiment.Rank() - b.Sentiment.Rank()
	})

	labels := make([]string, len(sorted))
	values := make([]int, len(sorted))
	colors := make([]string, len(sorted))
	for i, c := range sorted {
		labels[i] = format.SentimentLabel(c.Sentiment)
		values[i] = c.Count
		colors[i] = format.SentimentColor(c.Sentiment)
	}

	return PieView{Figure: &Figure{
		Data: []Trace{{
			Type:         "pie",
			Labels:       labels,
			Values:       values,
			Marker:       &Marker{Colors: colors},
			TextInfo:     "label+percent",
			HoverInfo:    "label+percent+value",
			TextPosition: "inside",
			Sort:         boolPtr(false),
			Direction:    "clockwise",
		}},
		Layout: Layout{
			Title:  "Distribuția sentimentelor",
			Margin: &Margin{T: 30},
			Height: chartHeight,
		},
	}}
}

// WordCloud embeds the base64 PNG as a data URL. Missing or malformed payloads hide the image.
func (r *Renderer) WordCloud(payload *string) WordCloudView {
	if payload == nil || strings.TrimSpace(*payload) == "" {
		return WordCloudView{Hidden: true, Notice: info(MsgNoWordCloud)}
	}
	encoded := strings.TrimSpace(*payload)
	if _, err := base64.StdEncoding.DecodeString(encoded); err != nil {
		r.logger.Warn("discarding malformed word cloud", slog.String("error", err.Error()))
		return WordCloudView{Hidden: true, Notice: info(MsgNoWordCloud)}
	}
	return WordCloudView{Src: template.URL("data:image/png;base64," + encoded)}
}

// Tweets builds the recent posts list. total is the upstream match count, if known.
func (r *Renderer) Tweets(tweets []models.Tweet, total *int) TweetListView {
	if len(tweets) == 0 {
		return TweetListView{Notice: info(MsgNoTweets)}
	}

	matched := len(tweets)
	if total != nil && *total >= len(tweets) {
		matched = *total
	}

	items := make([]TweetItem, 0, len(tweets))
	for _, t := range tweets {
		color := format.SentimentColor(t.Sentiment)
		name := strings.TrimSpace(t.UserName)
		if name == "" {
			name = "Utilizator"
		}
		items = append(items, TweetItem{
			DisplayName:     name,
			Username:        t.Username,
			Date:            format.Timestamp(t.CreatedAt, r.loc),
			Text:            format.TweetText(t.Text),
			Engagement:      engagement(t),
			SentimentLabel:  format.SentimentLabel(t.Sentiment),
			SentimentClass:  "sentiment-" + string(t.Sentiment),
			Color:           color,
			BadgeBackground: color + "20",
		})
	}

	return TweetListView{
		Header: fmt.Sprintf("Postări recente (afișate %d din %d rezultate)", len(tweets), matched),
		Items:  items,
	}
}

func engagement(t models.Tweet) []string {
	var out []string
	if t.Retweets > 0 {
		out = append(out, "♻️ "+strconv.Itoa(t.Retweets))
	}
	if t.Likes > 0 {
		out = append(out, "❤️ "+strconv.Itoa(t.Likes))
	}
	if t.Replies > 0 {
		out = append(out, "💬 "+strconv.Itoa(t.Replies))
	}
	return out
}

// Summary builds the total card and one card per bucket; absent counters read 0.
func (r *Renderer) Summary(resp *models.SentimentResponse) SummaryView {
	cards := make([]SummaryCard, 0, len(models.SentimentOrder)+1)

	total := 0
	if resp.TotalTweets != nil {
		total = *resp.TotalTweets
	}
	cards = append(cards, SummaryCard{ID: "totalTweets", Title: "Total postări", Value: format.Count(total)})

	for _, s := range models.SentimentOrder {
		n, _ := resp.Count(s)
		cards = append(cards, SummaryCard{
			ID:    summaryIDs[s],
			Title: summaryTitles[s],
			Value: format.Count(n),
			Color: format.SentimentColor(s),
		})
	}
	return SummaryView{Cards: cards}
}

func info(text string) *Notice   { return &Notice{Class: NoticeInfo, Text: text} }
func danger(text string) *Notice { return &Notice{Class: NoticeDanger, Text: text} }
