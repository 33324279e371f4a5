package render

import "html/template"

// Notice classes.
const (
	NoticeInfo   = "info"
	NoticeDanger = "danger"
)

// Notice is an inline message shown inside a single view.
type Notice struct {
	Class string
	Text  string
}

// TimeSeriesView is the daily average score chart. Figure is nil when Notice is set.
type TimeSeriesView struct {
	Figure *Figure
	Notice *Notice
}

// PieView is the sentiment distribution chart.
type PieView struct {
	Figure *Figure
	Notice *Notice
}

// WordCloudView is the word-cloud image panel.
type WordCloudView struct {
	Src    template.URL
	Hidden bool
	Notice *Notice
}

// TweetItem is one rendered post.
type TweetItem struct {
	DisplayName     string
	Username        string
	Date            string
	Text            template.HTML
	Engagement      []string
	SentimentLabel  string
	SentimentClass  string
	Color           string
	BadgeBackground string
}

// TweetListView is the recent posts panel.
type TweetListView struct {
	Header string
	Items  []TweetItem
	Notice *Notice
}

// SummaryCard is one counter. ID is the DOM id the page binds to.
type SummaryCard struct {
	ID    string
	Title string
	Value string
	Color string
}

// SummaryView holds the total card followed by one card per sentiment bucket.
type SummaryView struct {
	Cards  []SummaryCard
	Notice *Notice
}

// Dashboard is the complete view-model produced from one analysis.
type Dashboard struct {
	TimeSeries TimeSeriesView
	Pie        PieView
	WordCloud  WordCloudView
	Tweets     TweetListView
	Summary    SummaryView
}
