package insights

import (
	"sync"

	"github.com/jonreiter/govader"
	"github.com/montanaflynn/stats"

	"github.com/ensigniasec/run-ticker/internal/market"
)

const (
	// RecentHeadlines is how many headlines are scored per ticker.
	RecentHeadlines = 5
	keptHeadlines   = 2
)

//nolint:gochecknoglobals // the lexicon is loaded once and shared.
var (
	analyzerOnce sync.Once
	analyzer     *govader.SentimentIntensityAnalyzer
)

func sentimentAnalyzer() *govader.SentimentIntensityAnalyzer {
	analyzerOnce.Do(func() {
		analyzer = govader.NewSentimentIntensityAnalyzer()
	})
	return analyzer
}

// Polarity scores text in [-1, 1] with VADER's normalized compound score. Negations and
// boosters ("not", "very") are handled by the lexicon rules. Text without hits scores 0.
func Polarity(text string) float64 {
	return sentimentAnalyzer().PolarityScores(text).Compound
}

// AnalyzeHeadlines scores up to RecentHeadlines headlines. It reports false when none has a title.
// Score and strength are rounded to two places; the first two scored headlines are kept.
func AnalyzeHeadlines(headlines []market.Headline) (Sentiment, bool) {
	if len(headlines) > RecentHeadlines {
		headlines = headlines[:RecentHeadlines]
	}
	var scores []float64
	var scored []ScoredHeadline
	for _, h := range headlines {
		if h.Title == "" {
			continue
		}
		p := Polarity(h.Title)
		scores = append(scores, p)
		scored = append(scored, ScoredHeadline{Headline: h, Sentiment: p})
	}
	if len(scores) == 0 {
		return Sentiment{}, false
	}
	avg, err := stats.Mean(scores)
	if err != nil {
		return Sentiment{}, false
	}
	if len(scored) > keptHeadlines {
		scored = scored[:keptHeadlines]
	}
	return Sentiment{
		Score:     round(avg, 2),
		Strength:  round(abs(avg), 2),
		Headlines: scored,
	}, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
