package service

import (
	"sort"
	"time"

	"github.com/satstack/swapkit/internal/core/domain"
)

// Aggregator buckets raw, irregular price samples into one mean value per
// calendar day. Day boundaries use a single fixed location, UTC by default,
// so the same input multiset always produces the same series.
type Aggregator struct {
	loc *time.Location
}

// NewAggregator creates an aggregator with UTC day boundaries.
func NewAggregator() *Aggregator {
	return &Aggregator{loc: time.UTC}
}

// Aggregate groups the samples by calendar day and returns the buckets in
// ascending day order. Input order is irrelevant; days without samples are
// absent from the output. An empty input yields an empty output.
func (a *Aggregator) Aggregate(points []domain.PricePoint) []domain.PriceBucket {
	type acc struct {
		sum   float64
		count int
	}
	days := make(map[time.Time]*acc)

	for _, p := range points {
		day := a.dayKey(p.TimestampMillis)
		if cur, ok := days[day]; ok {
			cur.sum += p.Price
			cur.count++
		} else {
			days[day] = &acc{sum: p.Price, count: 1}
		}
	}

	buckets := make([]domain.PriceBucket, 0, len(days))
	for day, cur := range days {
		buckets = append(buckets, domain.PriceBucket{
			Day:         day,
			MeanPrice:   cur.sum / float64(cur.count),
			SampleCount: cur.count,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Day.Before(buckets[j].Day)
	})
	return buckets
}

// Merge folds one live sample into an existing series, updating the sample's
// day bucket in place or appending a new one. The input slice is not mutated.
func (a *Aggregator) Merge(buckets []domain.PriceBucket, p domain.PricePoint) []domain.PriceBucket {
	day := a.dayKey(p.TimestampMillis)

	out := make([]domain.PriceBucket, len(buckets))
	copy(out, buckets)

	for i, b := range out {
		if b.Day.Equal(day) {
			n := float64(b.SampleCount)
			out[i].MeanPrice = (b.MeanPrice*n + p.Price) / (n + 1)
			out[i].SampleCount++
			return out
		}
	}

	out = append(out, domain.PriceBucket{Day: day, MeanPrice: p.Price, SampleCount: 1})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})
	return out
}

// PriceChange returns the percentage change of the last bucket's mean price
// against the previous bucket's. Fewer than two buckets yields zero.
func PriceChange(buckets []domain.PriceBucket) float64 {
	if len(buckets) < 2 {
		return 0
	}
	prev := buckets[len(buckets)-2].MeanPrice
	last := buckets[len(buckets)-1].MeanPrice
	if prev == 0 {
		return 0
	}
	return (last - prev) / prev * 100
}

func (a *Aggregator) dayKey(timestampMillis int64) time.Time {
	t := time.UnixMilli(timestampMillis).In(a.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.loc)
}
