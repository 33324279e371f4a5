package main

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

// 1x1 transparent PNG.
const samplePNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

var keywords = []string{"energie", "politica", "economie", "sanatate", "educatie"}

var buckets = []string{"very_positive", "positive", "slightly_positive", "neutral", "slightly_negative", "negative", "very_negative"}

type timePoint struct {
	Date  string   `json:"date"`
	Score *float64 `json:"score"`
}

type bucketCount struct {
	Sentiment string `json:"sentiment"`
	Count     int    `json:"count"`
}

type tweet struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	UserName       string  `json:"user_name"`
	Text           string  `json:"text"`
	CreatedAt      string  `json:"created_at"`
	Retweets       int     `json:"retweets"`
	Likes          int     `json:"likes"`
	Replies        int     `json:"replies"`
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/keywords", func(w http.ResponseWriter, r *http.Request) {
		if !enforceGet(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"keywords": keywords})
	})

	mux.HandleFunc("/api/sentiment", func(w http.ResponseWriter, r *http.Request) {
		if !enforceGet(w, r) {
			return
		}
		q := r.URL.Query()
		keyword := q.Get("keyword")
		if keyword == "" {
			keyword = "energie"
		}
		end, err := time.Parse("2006-01-02", q.Get("end_date"))
		if err != nil {
			end = time.Now().UTC()
		}
		start, err := time.Parse("2006-01-02", q.Get("start_date"))
		if err != nil {
			start = end.AddDate(0, 0, -30)
		}
		if keyword == "gol" || start.After(end) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": "Nu s-au găsit tweet-uri pentru criteriile selectate. Încercați alte cuvinte cheie sau interval de timp.",
			})
			return
		}
		writeJSON(w, http.StatusOK, syntheticAnalysis(keyword, start, end))
	})

	addr := ":5000"
	if v := os.Getenv("MOCK_SENTIMENT_ADDRESS"); v != "" {
		addr = v
	}
	logger := log.New(log.Writer(), "sentiment-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    addr,
		Handler: logRequests(logger, mux),
	}

	logger.Printf("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func syntheticAnalysis(keyword string, start, end time.Time) map[string]any {
	h := fnv.New64a()
	_, _ = h.Write([]byte(keyword))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	var series []timePoint
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		point := timePoint{Date: day.Format("2006-01-02")}
		if rng.Intn(6) != 0 {
			score := rng.Float64()*2 - 1
			point.Score = &score
		}
		series = append(series, point)
	}

	counts := make(map[string]int, len(buckets))
	var distribution []bucketCount
	total := 0
	for _, b := range buckets {
		n := rng.Intn(40)
		counts[b] = n
		total += n
		distribution = append(distribution, bucketCount{Sentiment: b, Count: n})
	}

	tweets := make([]tweet, 0, 10)
	for i := 0; i < 10; i++ {
		b := buckets[rng.Intn(len(buckets))]
		created := end.Add(-time.Duration(rng.Intn(72)) * time.Hour)
		tweets = append(tweets, tweet{
			ID:             1_760_000_000_000_000_000 + int64(i),
			Username:       fmt.Sprintf("user%d", i),
			UserName:       fmt.Sprintf("Utilizator %d", i),
			Text:           fmt.Sprintf("Discuție despre #%s cu @user%d https://example.com/articol/%d", keyword, (i+1)%10, i),
			CreatedAt:      created.Format("2006-01-02 15:04:05"),
			Retweets:       rng.Intn(5),
			Likes:          rng.Intn(50),
			Replies:        rng.Intn(3),
			Sentiment:      b,
			SentimentScore: rng.Float64()*2 - 1,
		})
	}

	payload := map[string]any{
		"time_series":            series,
		"sentiment_distribution": distribution,
		"wordcloud":              samplePNG,
		"tweets":                 tweets,
		"total_tweets":           total,
	}
	for _, b := range buckets {
		payload[b+"_count"] = counts[b]
	}
	return payload
}

func enforceGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
