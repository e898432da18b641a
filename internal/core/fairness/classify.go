package fairness

// Map colour bands for a neighborhood's unfairness percentage.
const (
	BandVeryUnfair       = "very_unfair"
	BandHighlyUnfair     = "highly_unfair"
	BandUnfair           = "unfair"
	BandModeratelyUnfair = "moderately_unfair"
	BandSlightlyAbove    = "slightly_above"
	BandFair             = "fair"
	BandVeryFair         = "very_fair"
)

// BandFor buckets an unfairness percentage.
func BandFor(pct float64) string {
	switch {
	case pct >= 20:
		return BandVeryUnfair
	case pct >= 15:
		return BandHighlyUnfair
	case pct >= 10:
		return BandUnfair
	case pct >= 5:
		return BandModeratelyUnfair
	case pct >= 0:
		return BandSlightlyAbove
	case pct >= -5:
		return BandFair
	default:
		return BandVeryFair
	}
}

// Levels for a single rent compared with its neighborhood average.
const (
	LevelExcellent = "excellent"
	LevelGood      = "good"
	LevelFair      = "fair"
	LevelHigh      = "high"
	LevelVeryHigh  = "very_high"
)

// LevelFor classifies the difference (EUR per sqm) between an observed price
// and the neighborhood average.
func LevelFor(diffPerSqm float64) string {
	switch {
	case diffPerSqm <= -2:
		return LevelExcellent
	case diffPerSqm <= 0:
		return LevelGood
	case diffPerSqm <= 2:
		return LevelFair
	case diffPerSqm <= 4:
		return LevelHigh
	default:
		return LevelVeryHigh
	}
}
