package service

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/satstack/swapkit/internal/core/domain"
)

func millis(year int, month time.Month, day, hour int) int64 {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC).UnixMilli()
}

func utcMidnight(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregate(t *testing.T) {
	agg := NewAggregator()

	points := []domain.PricePoint{
		{TimestampMillis: millis(2025, time.March, 2, 9), Price: 51_200},
		{TimestampMillis: millis(2025, time.March, 1, 3), Price: 49_500},
		{TimestampMillis: millis(2025, time.March, 1, 15), Price: 50_500},
		{TimestampMillis: millis(2025, time.March, 4, 1), Price: 52_000},
	}

	buckets := agg.Aggregate(points)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}

	want := []struct {
		day   time.Time
		mean  float64
		count int
	}{
		{utcMidnight(2025, time.March, 1), 50_000, 2},
		{utcMidnight(2025, time.March, 2), 51_200, 1},
		{utcMidnight(2025, time.March, 4), 52_000, 1},
	}
	for i, w := range want {
		if !buckets[i].Day.Equal(w.day) {
			t.Errorf("bucket %d day = %v, want %v", i, buckets[i].Day, w.day)
		}
		if !almostEqual(buckets[i].MeanPrice, w.mean) {
			t.Errorf("bucket %d mean = %v, want %v", i, buckets[i].MeanPrice, w.mean)
		}
		if buckets[i].SampleCount != w.count {
			t.Errorf("bucket %d count = %d, want %d", i, buckets[i].SampleCount, w.count)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := NewAggregator().Aggregate(nil); len(got) != 0 {
		t.Errorf("empty input produced %d buckets", len(got))
	}
}

func TestAggregateOrderInvariant(t *testing.T) {
	agg := NewAggregator()

	points := make([]domain.PricePoint, 0, 50)
	for i := 0; i < 50; i++ {
		points = append(points, domain.PricePoint{
			TimestampMillis: millis(2025, time.March, 1+i%7, i%24),
			Price:           40_000 + float64(i)*37.5,
		})
	}

	reference := agg.Aggregate(points)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]domain.PricePoint, len(points))
		copy(shuffled, points)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got := agg.Aggregate(shuffled)
		if len(got) != len(reference) {
			t.Fatalf("trial %d: %d buckets, want %d", trial, len(got), len(reference))
		}
		for i := range got {
			if !got[i].Day.Equal(reference[i].Day) ||
				!almostEqual(got[i].MeanPrice, reference[i].MeanPrice) ||
				got[i].SampleCount != reference[i].SampleCount {
				t.Errorf("trial %d bucket %d = %+v, want %+v", trial, i, got[i], reference[i])
			}
		}
	}
}

func TestAggregateDayBoundary(t *testing.T) {
	agg := NewAggregator()

	// One millisecond before midnight and midnight itself are different days.
	points := []domain.PricePoint{
		{TimestampMillis: utcMidnight(2025, time.March, 2).UnixMilli() - 1, Price: 100},
		{TimestampMillis: utcMidnight(2025, time.March, 2).UnixMilli(), Price: 200},
	}

	buckets := agg.Aggregate(points)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets across the midnight boundary, got %d", len(buckets))
	}
	if !buckets[0].Day.Equal(utcMidnight(2025, time.March, 1)) {
		t.Errorf("first bucket day = %v", buckets[0].Day)
	}
	if !buckets[1].Day.Equal(utcMidnight(2025, time.March, 2)) {
		t.Errorf("second bucket day = %v", buckets[1].Day)
	}
}

func TestMerge(t *testing.T) {
	agg := NewAggregator()
	base := agg.Aggregate([]domain.PricePoint{
		{TimestampMillis: millis(2025, time.March, 1, 3), Price: 100},
		{TimestampMillis: millis(2025, time.March, 1, 9), Price: 200},
	})

	t.Run("existing day updates mean", func(t *testing.T) {
		got := agg.Merge(base, domain.PricePoint{TimestampMillis: millis(2025, time.March, 1, 20), Price: 600})
		if len(got) != 1 {
			t.Fatalf("expected 1 bucket, got %d", len(got))
		}
		if !almostEqual(got[0].MeanPrice, 300) {
			t.Errorf("merged mean = %v, want 300", got[0].MeanPrice)
		}
		if got[0].SampleCount != 3 {
			t.Errorf("merged count = %d, want 3", got[0].SampleCount)
		}
		// The original series must be untouched.
		if !almostEqual(base[0].MeanPrice, 150) || base[0].SampleCount != 2 {
			t.Errorf("input series mutated: %+v", base[0])
		}
	})

	t.Run("new day appends sorted", func(t *testing.T) {
		got := agg.Merge(base, domain.PricePoint{TimestampMillis: millis(2025, time.February, 27, 12), Price: 50})
		if len(got) != 2 {
			t.Fatalf("expected 2 buckets, got %d", len(got))
		}
		if !got[0].Day.Equal(utcMidnight(2025, time.February, 27)) {
			t.Errorf("new earlier day not sorted first: %v", got[0].Day)
		}
	})
}

func TestPriceChange(t *testing.T) {
	tests := []struct {
		name    string
		buckets []domain.PriceBucket
		want    float64
	}{
		{name: "empty", want: 0},
		{name: "single", buckets: []domain.PriceBucket{{MeanPrice: 100}}, want: 0},
		{name: "up", buckets: []domain.PriceBucket{{MeanPrice: 100}, {MeanPrice: 110}}, want: 10},
		{name: "down", buckets: []domain.PriceBucket{{MeanPrice: 200}, {MeanPrice: 150}}, want: -25},
		{name: "zero previous", buckets: []domain.PriceBucket{{MeanPrice: 0}, {MeanPrice: 100}}, want: 0},
		{name: "uses last two", buckets: []domain.PriceBucket{{MeanPrice: 1}, {MeanPrice: 100}, {MeanPrice: 101}}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriceChange(tt.buckets); !almostEqual(got, tt.want) {
				t.Errorf("PriceChange = %v, want %v", got, tt.want)
			}
		})
	}
}
