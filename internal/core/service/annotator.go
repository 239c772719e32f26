package service

import (
	"time"

	"github.com/satstack/swapkit/internal/core/domain"
)

// Annotate maps each classified transfer onto the bucket whose day is nearest
// to the transfer's own day, for overlaying trade markers on the price chart.
//
// Distance is the absolute difference between the transfer's UTC day key and
// the bucket's day; ties go to the earlier bucket. An empty bucket series
// produces no annotations rather than an error. Transfers are not
// deduplicated: several may anchor to the same bucket.
func Annotate(buckets []domain.PriceBucket, transfers []domain.ClassifiedTransfer) []domain.Annotation {
	if len(buckets) == 0 {
		return nil
	}

	annotations := make([]domain.Annotation, 0, len(transfers))
	for _, tr := range transfers {
		day := utcDay(tr.TimestampMillis)

		best := buckets[0]
		bestDist := absDuration(day.Sub(buckets[0].Day))
		for _, b := range buckets[1:] {
			if d := absDuration(day.Sub(b.Day)); d < bestDist {
				best, bestDist = b, d
			}
		}

		annotations = append(annotations, domain.Annotation{
			Bucket:   best,
			Transfer: tr,
			Label:    string(tr.Direction),
		})
	}
	return annotations
}

func utcDay(timestampMillis int64) time.Time {
	t := time.UnixMilli(timestampMillis).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
