package format

import (
	"html"
	"html/template"
	"regexp"
	"strings"
)

const (
	urlDisplayLimit = 30
	hashtagBaseURL  = "https://twitter.com/hashtag/"
	profileBaseURL  = "https://twitter.com/"
)

// Links, hashtags and mentions are matched on the raw text; everything else is escaped.
var tweetTokens = regexp.MustCompile(`https?://[^\s]+|#[\p{L}\p{N}_]+|@[\p{L}\p{N}_]+`)

// TweetText turns untrusted post text into markup. All user text is escaped and
// only http(s) links, #hashtags and @mentions are re-introduced as anchors.
// Newlines become <br>.
func TweetText(text string) template.HTML {
	if text == "" {
		return ""
	}

	var b strings.Builder
	last := 0
	for _, loc := range tweetTokens.FindAllStringIndex(text, -1) {
		writePlain(&b, text[last:loc[0]])
		writeToken(&b, text[loc[0]:loc[1]])
		last = loc[1]
	}
	writePlain(&b, text[last:])
	return template.HTML(b.String())
}

func writePlain(b *strings.Builder, s string) {
	b.WriteString(strings.ReplaceAll(html.EscapeString(s), "\n", "<br>"))
}

func writeToken(b *strings.Builder, token string) {
	switch token[0] {
	case '#':
		writeAnchor(b, hashtagBaseURL+token[1:], token)
	case '@':
		writeAnchor(b, profileBaseURL+token[1:], token)
	default:
		writeAnchor(b, token, truncate(token, urlDisplayLimit))
	}
}

func writeAnchor(b *strings.Builder, href, label string) {
	b.WriteString(`<a href="`)
	b.WriteString(html.EscapeString(href))
	b.WriteString(`" target="_blank" rel="noopener noreferrer">`)
	b.WriteString(html.EscapeString(label))
	b.WriteString(`</a>`)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
