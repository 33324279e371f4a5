package models

import "encoding/json"

// KeywordsResponse is the payload of the keyword suggestion endpoint.
type KeywordsResponse struct {
	Keywords []string `json:"keywords"`
}

// TimeSeriesPoint is a daily average score in [-1, 1]. Score is nil for days
// without posts.
type TimeSeriesPoint struct {
	Date  string   `json:"date"`
	Score *float64 `json:"score"`
}

// SentimentCount is one slice of the sentiment distribution.
type SentimentCount struct {
	Sentiment Sentiment `json:"sentiment"`
	Count     int       `json:"count"`
}

// Tweet is a classified post as returned by the analysis endpoint.
type Tweet struct {
	ID             json.Number `json:"id,omitempty"`
	Username       string      `json:"username"`
	UserName       string      `json:"user_name"`
	Text           string      `json:"text"`
	CreatedAt      string      `json:"created_at"`
	Retweets       int         `json:"retweets"`
	Likes          int         `json:"likes"`
	Replies        int         `json:"replies"`
	Sentiment      Sentiment   `json:"sentiment"`
	SentimentScore float64     `json:"sentiment_score,omitempty"`
}

// SentimentResponse is the full analysis payload. It is read-only and replaces
// any previous rendering. Counters are pointers because the upstream may omit them.
type SentimentResponse struct {
	TimeSeries            []TimeSeriesPoint `json:"time_series"`
	SentimentDistribution []SentimentCount  `json:"sentiment_distribution"`
	WordCloud             *string           `json:"wordcloud"`
	Tweets                []Tweet           `json:"tweets"`

	TotalTweets           *int `json:"total_tweets,omitempty"`
	VeryPositiveCount     *int `json:"very_positive_count,omitempty"`
	PositiveCount         *int `json:"positive_count,omitempty"`
	SlightlyPositiveCount *int `json:"slightly_positive_count,omitempty"`
	NeutralCount          *int `json:"neutral_count,omitempty"`
	SlightlyNegativeCount *int `json:"slightly_negative_count,omitempty"`
	NegativeCount         *int `json:"negative_count,omitempty"`
	VeryNegativeCount     *int `json:"very_negative_count,omitempty"`
}

// Count returns the per-bucket counter and whether the upstream supplied it.
func (r *SentimentResponse) Count(s Sentiment) (int, bool) {
	var v *int
	switch s {
	case SentimentVeryPositive:
		v = r.VeryPositiveCount
	case SentimentPositive:
		v = r.PositiveCount
	case SentimentSlightlyPositive:
		v = r.SlightlyPositiveCount
	case SentimentNeutral:
		v = r.NeutralCount
	case SentimentSlightlyNegative:
		v = r.SlightlyNegativeCount
	case SentimentNegative:
		v = r.NegativeCount
	case SentimentVeryNegative:
		v = r.VeryNegativeCount
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// ErrorResponse is the upstream failure envelope, also used by our JSON endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
