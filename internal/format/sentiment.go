// Package format holds the pure presentation helpers of the dashboard: sentiment
// labels and colors, Romanian dates and numbers, and safe tweet markup.
package format

import "github.com/miradorstack/sentiment-dashboard/internal/models"

// NeutralColor is used for neutral and unknown sentiments.
const NeutralColor = "#9e9e9e"

var sentimentLabels = map[models.Sentiment]string{
	models.SentimentVeryPositive:     "Foarte Pozitiv",
	models.SentimentPositive:         "Pozitiv",
	models.SentimentSlightlyPositive: "Ușor Pozitiv",
	models.SentimentNeutral:          "Neutru",
	models.SentimentSlightlyNegative: "Ușor Negativ",
	models.SentimentNegative:         "Negativ",
	models.SentimentVeryNegative:     "Foarte Negativ",
}

var sentimentColors = map[models.Sentiment]string{
	models.SentimentVeryPositive:     "#1a5f1f",
	models.SentimentPositive:         "#2e7d32",
	models.SentimentSlightlyPositive: "#4caf50",
	models.SentimentNeutral:          NeutralColor,
	models.SentimentSlightlyNegative: "#ff9800",
	models.SentimentNegative:         "#f44336",
	models.SentimentVeryNegative:     "#c62828",
}

// SentimentLabel returns the Romanian label of s. Unknown codes map to themselves.
func SentimentLabel(s models.Sentiment) string {
	if label, ok := sentimentLabels[s]; ok {
		return label
	}
	return string(s)
}

// SentimentColor returns the hex color of s, gray for unknown codes.
func SentimentColor(s models.Sentiment) string {
	if color, ok := sentimentColors[s]; ok {
		return color
	}
	return NeutralColor
}
