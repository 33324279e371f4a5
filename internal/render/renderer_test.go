package render

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/miradorstack/sentiment-dashboard/internal/models"
)

func newTestRenderer() *Renderer {
	return NewRenderer(time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestPieOrdersBucketsBySentiment(t *testing.T) {
	view := newTestRenderer().Pie([]models.SentimentCount{
		{Sentiment: models.SentimentNeutral, Count: 5},
		{Sentiment: models.SentimentPositive, Count: 3},
	})
	if view.Notice != nil || view.Figure == nil {
		t.Fatalf("expected a figure, got %+v", view)
	}
	trace := view.Figure.Data[0]
	if len(trace.Labels) != 2 || trace.Labels[0] != "Pozitiv" || trace.Labels[1] != "Neutru" {
		t.Fatalf("expected positive before neutral, got %v", trace.Labels)
	}
	if trace.Values[0] != 3 || trace.Marker.Colors[0] != "#2e7d32" {
		t.Fatalf("values/colors not aligned with labels: %+v", trace)
	}
	if trace.Sort == nil || *trace.Sort {
		t.Fatalf("plotly sorting must be disabled")
	}
}

func TestPieUnknownBucketsSortFirst(t *testing.T) {
	view := newTestRenderer().Pie([]models.SentimentCount{
		{Sentiment: models.SentimentNegative, Count: 1},
		{Sentiment: "mixed", Count: 2},
	})
	if got := view.Figure.Data[0].Labels; got[0] != "mixed" || got[1] != "Negativ" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestWordCloudNullHidesImage(t *testing.T) {
	d := newTestRenderer().Render(&models.SentimentResponse{WordCloud: nil})
	if !d.WordCloud.Hidden || d.WordCloud.Src != "" {
		t.Fatalf("image must be hidden: %+v", d.WordCloud)
	}
	if d.WordCloud.Notice == nil || d.WordCloud.Notice.Text != MsgNoWordCloud || d.WordCloud.Notice.Class != NoticeInfo {
		t.Fatalf("expected exactly one informational notice: %+v", d.WordCloud.Notice)
	}
}

func TestWordCloudRejectsMalformedPayload(t *testing.T) {
	view := newTestRenderer().WordCloud(strPtr("not base64!!"))
	if !view.Hidden {
		t.Fatalf("malformed payload must hide the image")
	}
	ok := newTestRenderer().WordCloud(strPtr("iVBORw0KGgo="))
	if ok.Hidden || ok.Src != "data:image/png;base64,iVBORw0KGgo=" {
		t.Fatalf("unexpected view %+v", ok)
	}
}

func TestTimeSeriesSortsAndKeepsGaps(t *testing.T) {
	view := newTestRenderer().TimeSeries([]models.TimeSeriesPoint{
		{Date: "2024-03-03", Score: floatPtr(-0.2)},
		{Date: "2024-03-01", Score: floatPtr(0.4)},
		{Date: "2024-03-02", Score: nil},
	})
	trace := view.Figure.Data[0]
	if strings.Join(trace.X, ",") != "2024-03-01,2024-03-02,2024-03-03" {
		t.Fatalf("dates not sorted: %v", trace.X)
	}
	if trace.Y[1] != nil || *trace.Y[0] != 0.4 {
		t.Fatalf("scores misaligned: %v", trace.Y)
	}

	data, err := json.Marshal(view.Figure)
	if err != nil {
		t.Fatalf("marshal figure: %v", err)
	}
	if !strings.Contains(string(data), `"y":[0.4,null,-0.2]`) {
		t.Fatalf("gap must serialise as null: %s", data)
	}
	if len(view.Figure.Layout.YAxis.TickVals) != 9 || view.Figure.Layout.Height != 400 {
		t.Fatalf("unexpected layout %+v", view.Figure.Layout)
	}
}

func TestEmptyResponseShowsNoticePerView(t *testing.T) {
	d := newTestRenderer().Render(&models.SentimentResponse{})
	if d.TimeSeries.Notice == nil || d.TimeSeries.Notice.Text != MsgNoTimeSeries {
		t.Fatalf("missing time series notice")
	}
	if d.Pie.Notice == nil || d.Pie.Notice.Text != MsgNoDistribution {
		t.Fatalf("missing distribution notice")
	}
	if d.Tweets.Notice == nil || d.Tweets.Notice.Text != MsgNoTweets {
		t.Fatalf("missing tweets notice")
	}
	if len(d.Summary.Cards) != 8 {
		t.Fatalf("expected total plus seven bucket cards, got %d", len(d.Summary.Cards))
	}
	for _, card := range d.Summary.Cards {
		if card.Value != "0" {
			t.Fatalf("absent counters must read 0: %+v", card)
		}
	}
}

func TestTweetsHeaderAndEngagement(t *testing.T) {
	view := newTestRenderer().Tweets([]models.Tweet{
		{Username: "ana", Text: "salut #energie", CreatedAt: "2024-01-15 14:30:00", Retweets: 2, Likes: 0, Replies: 1, Sentiment: models.SentimentPositive},
		{Username: "dan", UserName: "Dan", Text: "x", Sentiment: models.SentimentNegative},
	}, intPtr(57))

	if view.Header != "Postări recente (afișate 2 din 57 rezultate)" {
		t.Fatalf("unexpected header %q", view.Header)
	}
	first := view.Items[0]
	if first.DisplayName != "Utilizator" || first.Date != "15 ian. 2024, 14:30" {
		t.Fatalf("unexpected item %+v", first)
	}
	if strings.Join(first.Engagement, " ") != "♻️ 2 💬 1" {
		t.Fatalf("zero metrics must be omitted: %v", first.Engagement)
	}
	if first.BadgeBackground != "#2e7d3220" || first.SentimentLabel != "Pozitiv" {
		t.Fatalf("unexpected badge %+v", first)
	}
	if view.Items[1].DisplayName != "Dan" {
		t.Fatalf("display name not used")
	}
}

func TestTweetsHeaderFallsBackToListLength(t *testing.T) {
	tweets := []models.Tweet{
		{Username: "ana", Text: "a", Sentiment: models.SentimentNeutral},
		{Username: "dan", Text: "b", Sentiment: models.SentimentNeutral},
		{Username: "ion", Text: "c", Sentiment: models.SentimentNeutral},
	}
	r := newTestRenderer()

	if got := r.Tweets(tweets, intPtr(1)).Header; got != "Postări recente (afișate 3 din 3 rezultate)" {
		t.Fatalf("smaller total must be ignored, got %q", got)
	}
	if got := r.Tweets(tweets, nil).Header; got != "Postări recente (afișate 3 din 3 rezultate)" {
		t.Fatalf("missing total must use list length, got %q", got)
	}
	if got := r.Tweets(tweets, intPtr(3)).Header; got != "Postări recente (afișate 3 din 3 rezultate)" {
		t.Fatalf("equal total, got %q", got)
	}
}

func TestSummaryCarriesAllBuckets(t *testing.T) {
	view := newTestRenderer().Summary(&models.SentimentResponse{
		TotalTweets:           intPtr(1234567),
		SlightlyPositiveCount: intPtr(4),
		SlightlyNegativeCount: intPtr(7),
	})
	byID := map[string]string{}
	for _, card := range view.Cards {
		byID[card.ID] = card.Value
	}
	if byID["totalTweets"] != "1.234.567" {
		t.Fatalf("unexpected total %q", byID["totalTweets"])
	}
	if byID["slightlyPositiveTweets"] != "4" || byID["slightlyNegativeTweets"] != "7" {
		t.Fatalf("slightly_* counters missing: %v", byID)
	}
}

func TestGuardTurnsPanicIntoNotice(t *testing.T) {
	r := newTestRenderer()
	view := guard(r, "time_series", func() TimeSeriesView { panic("boom") },
		func() TimeSeriesView { return TimeSeriesView{Notice: danger(MsgTimeSeriesFailed)} })
	if view.Notice == nil || view.Notice.Class != NoticeDanger {
		t.Fatalf("expected danger notice, got %+v", view)
	}
}
