package models

import "time"

// TimeframeStep returns the candle spacing for a provider interval string.
// Unknown intervals fall back to one minute so synthetic padding still
// produces strictly increasing timestamps.
func TimeframeStep(timeframe string) time.Duration {
	switch timeframe {
	case "1min":
		return time.Minute
	case "5min":
		return 5 * time.Minute
	case "15min":
		return 15 * time.Minute
	case "30min":
		return 30 * time.Minute
	case "45min":
		return 45 * time.Minute
	case "1h":
		return time.Hour
	case "2h":
		return 2 * time.Hour
	case "4h":
		return 4 * time.Hour
	case "8h":
		return 8 * time.Hour
	case "1day":
		return 24 * time.Hour
	case "1week":
		return 7 * 24 * time.Hour
	case "1month":
		return 30 * 24 * time.Hour
	}
	return time.Minute
}

// ValidTimeframe reports whether the interval is one the candle provider
// accepts.
func ValidTimeframe(timeframe string) bool {
	switch timeframe {
	case "1min", "5min", "15min", "30min", "45min",
		"1h", "2h", "4h", "8h", "1day", "1week", "1month":
		return true
	}
	return false
}
