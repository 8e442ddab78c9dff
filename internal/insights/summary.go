package insights

import "sort"

// Breadth describes how many indices moved in each direction.
type Breadth int

const (
	BreadthMixed Breadth = iota
	BreadthPositive
	BreadthNegative
)

// Outlook is the skew of next-day predictions.
type Outlook int

const (
	OutlookMixed Outlook = iota
	OutlookPositive
	OutlookNegative
)

// Mood is the average headline sentiment.
type Mood int

const (
	MoodNone Mood = iota
	MoodNeutral
	MoodPositive
	MoodNegative
)

const (
	biggestMovers    = 3
	breadthRatio     = 2
	moodThreshold    = 0.2
	outlookUpShare   = 0.7
	outlookDownShare = 0.3
)

// Summary is the market-wide reading of a set of insights.
type Summary struct {
	Total   int
	Up      int
	Down    int
	Breadth Breadth
	Movers  []Insight
	Mood    Mood
	Outlook Outlook
}

// Summarize condenses insights. Unchanged indices count as up. Indices without a prediction
// count as not predicted to rise.
func Summarize(in []Insight) Summary {
	s := Summary{Total: len(in)}
	if len(in) == 0 {
		return s
	}
	for _, i := range in {
		if i.Change.Sign() >= 0 {
			s.Up++
		}
	}
	s.Down = s.Total - s.Up
	switch {
	case s.Up > s.Down*breadthRatio:
		s.Breadth = BreadthPositive
	case s.Down > s.Up*breadthRatio:
		s.Breadth = BreadthNegative
	default:
		s.Breadth = BreadthMixed
	}

	movers := append([]Insight(nil), in...)
	sort.SliceStable(movers, func(a, b int) bool {
		return movers[a].Change.Abs().GreaterThan(movers[b].Change.Abs())
	})
	if len(movers) > biggestMovers {
		movers = movers[:biggestMovers]
	}
	s.Movers = movers

	var sum float64
	var n int
	for _, i := range in {
		if i.Sentiment != nil {
			sum += i.Sentiment.Score
			n++
		}
	}
	if n > 0 {
		avg := sum / float64(n)
		switch {
		case avg > moodThreshold:
			s.Mood = MoodPositive
		case avg < -moodThreshold:
			s.Mood = MoodNegative
		default:
			s.Mood = MoodNeutral
		}
	}

	positive := 0
	for _, i := range in {
		if i.Prediction != nil && i.Prediction.ChangePct > 0 {
			positive++
		}
	}
	switch share := float64(positive); {
	case share > float64(s.Total)*outlookUpShare:
		s.Outlook = OutlookPositive
	case share < float64(s.Total)*outlookDownShare:
		s.Outlook = OutlookNegative
	default:
		s.Outlook = OutlookMixed
	}
	return s
}
