package ratings

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AveragePlaces is the number of decimal places averages are rounded to.
const AveragePlaces = 4

// Summary is the read-time aggregate of one store's ratings.
type Summary struct {
	Average *float64 `json:"average"`
	Count   int64    `json:"count"`
}

// Average divides total by count exactly and rounds half-up to AveragePlaces.
// It returns nil when there is nothing to average.
func Average(total, count int64) *float64 {
	if count <= 0 {
		return nil
	}
	avg, _ := decimal.NewFromInt(total).
		DivRound(decimal.NewFromInt(count), AveragePlaces).
		Float64()
	return &avg
}

// Summarize turns raw stats into summaries keyed by store.
func Summarize(stats []StoreStat) map[uuid.UUID]Summary {
	out := make(map[uuid.UUID]Summary, len(stats))
	for _, stat := range stats {
		out[stat.StoreID] = Summary{Average: Average(stat.Total, stat.Count), Count: stat.Count}
	}
	return out
}

// Pooled averages every rating across all stats, not the mean of store means.
func Pooled(stats []StoreStat) *float64 {
	var total, count int64
	for _, stat := range stats {
		total += stat.Total
		count += stat.Count
	}
	return Average(total, count)
}
