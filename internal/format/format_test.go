package format

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/miradorstack/sentiment-dashboard/internal/models"
)

func TestSentimentLabelAndColor(t *testing.T) {
	if got := SentimentLabel(models.SentimentSlightlyNegative); got != "Ușor Negativ" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := SentimentLabel("mixed"); got != "mixed" {
		t.Fatalf("unknown codes must map to themselves, got %q", got)
	}
	if got := SentimentColor(models.SentimentVeryNegative); got != "#c62828" {
		t.Fatalf("unexpected color %q", got)
	}
	if got := SentimentColor("mixed"); got != "#9e9e9e" {
		t.Fatalf("unknown codes must be gray, got %q", got)
	}
}

func TestTimestampRendersRomanianShortDate(t *testing.T) {
	bucharest, err := time.LoadLocation("Europe/Bucharest")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	if got := Timestamp("2024-01-15 14:30:00", bucharest); got != "15 ian. 2024, 14:30" {
		t.Fatalf("unexpected local render %q", got)
	}
	if got := Timestamp("2024-09-03T10:05:00Z", bucharest); got != "3 sept. 2024, 13:05" {
		t.Fatalf("unexpected zoned render %q", got)
	}
	if got := Timestamp("not a date", bucharest); got != "not a date" {
		t.Fatalf("unparseable values must pass through, got %q", got)
	}
}

func TestCountUsesRomanianGrouping(t *testing.T) {
	if got := Count(1234567); got != "1.234.567" {
		t.Fatalf("unexpected grouping %q", got)
	}
	if got := Count(0); got != "0" {
		t.Fatalf("unexpected zero %q", got)
	}
}

func TestTweetTextLinksAllowListedTokens(t *testing.T) {
	out := string(TweetText("check https://example.com/abc #news @bob"))

	doc, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var hrefs []string
	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					hrefs = append(hrefs, attr.Val)
				}
			}
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(hrefs) != 3 {
		t.Fatalf("expected three anchors, got %d in %s", len(hrefs), out)
	}
	want := []string{"https://example.com/abc", "https://twitter.com/hashtag/news", "https://twitter.com/bob"}
	for i := range want {
		if hrefs[i] != want[i] {
			t.Fatalf("anchor %d: expected %s, got %s", i, want[i], hrefs[i])
		}
	}
	if text.String() != "check https://example.com/abc #news @bob" {
		t.Fatalf("plain text not preserved: %q", text.String())
	}
}

func TestTweetTextEscapesMarkup(t *testing.T) {
	out := string(TweetText("<script>alert(\"x\")</script> salut\nlume"))
	if strings.Contains(out, "<script>") || strings.Contains(out, `"x"`) {
		t.Fatalf("markup was not escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("expected escaped tag: %s", out)
	}
	if !strings.Contains(out, "salut<br>lume") {
		t.Fatalf("newline not converted: %s", out)
	}
}

func TestTweetTextTruncatesLongURLs(t *testing.T) {
	url := "https://example.com/a/very/long/path/that/keeps/going"
	out := string(TweetText(url))
	if !strings.Contains(out, `href="`+url+`"`) {
		t.Fatalf("href must keep the full URL: %s", out)
	}
	if !strings.Contains(out, ">https://example.com/a/very/lon...</a>") {
		t.Fatalf("label not truncated: %s", out)
	}
}

func TestTweetTextUnicodeHashtag(t *testing.T) {
	out := string(TweetText("#energieVerde și #România"))
	if strings.Count(out, "<a ") != 2 || !strings.Contains(out, "hashtag/România") {
		t.Fatalf("unexpected hashtag markup: %s", out)
	}
}
