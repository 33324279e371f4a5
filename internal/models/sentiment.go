package models

// Sentiment is one of the seven ordered tone buckets assigned to a post.
type Sentiment string

const (
	SentimentVeryPositive     Sentiment = "very_positive"
	SentimentPositive         Sentiment = "positive"
	SentimentSlightlyPositive Sentiment = "slightly_positive"
	SentimentNeutral          Sentiment = "neutral"
	SentimentSlightlyNegative Sentiment = "slightly_negative"
	SentimentNegative         Sentiment = "negative"
	SentimentVeryNegative     Sentiment = "very_negative"
)

// SentimentOrder is the fixed display order, most positive first.
var SentimentOrder = []Sentiment{
	SentimentVeryPositive,
	SentimentPositive,
	SentimentSlightlyPositive,
	SentimentNeutral,
	SentimentSlightlyNegative,
	SentimentNegative,
	SentimentVeryNegative,
}

// Rank returns the bucket position in SentimentOrder, or -1 for unknown codes.
func (s Sentiment) Rank() int {
	for i, known := range SentimentOrder {
		if s == known {
			return i
		}
	}
	return -1
}

// Known reports whether s is one of the seven buckets.
func (s Sentiment) Known() bool {
	return s.Rank() >= 0
}
