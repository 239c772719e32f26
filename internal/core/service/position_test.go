package service

import (
	"math/big"
	"testing"
	"time"

	"github.com/satstack/swapkit/internal/core/domain"
)

func annotationAt(ts int64, dir domain.TransferDirection, rawAmount int64, bucketMean float64) domain.Annotation {
	return domain.Annotation{
		Bucket: domain.PriceBucket{Day: utcDay(ts), MeanPrice: bucketMean},
		Transfer: domain.ClassifiedTransfer{
			Transfer:  domain.Transfer{TimestampMillis: ts, RawAmount: big.NewInt(rawAmount)},
			Direction: dir,
		},
	}
}

func TestPositionCalculate(t *testing.T) {
	calc := NewPositionCalculator()

	// Buy 0.002 BTC at a 50k mean, sell 0.0005 at a 60k mean, spot 52k.
	annotations := []domain.Annotation{
		annotationAt(millis(2025, time.March, 1, 10), domain.DirectionBuy, 200_000, 50_000),
		annotationAt(millis(2025, time.March, 3, 10), domain.DirectionSell, 50_000, 60_000),
	}

	pos := calc.Calculate(annotations, 8, 52_000)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"total bought", pos.TotalBought, 0.002},
		{"total sold", pos.TotalSold, 0.0005},
		{"balance", pos.CurrentBalance, 0.0015},
		{"avg buy", pos.AverageBuyPrice, 50_000},
		{"avg sell", pos.AverageSellPrice, 60_000},
		{"realized", pos.RealizedPnL, 5},
		{"unrealized", pos.UnrealizedPnL, 3},
		{"total pnl", pos.TotalPnL, 8},
		{"roi", pos.ROI, 8},
	}
	for _, c := range checks {
		if !almostEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestPositionNegativeBalanceClamped(t *testing.T) {
	calc := NewPositionCalculator()

	// Only a sell visible: the buy fell off the provider's page.
	annotations := []domain.Annotation{
		annotationAt(millis(2025, time.March, 1, 10), domain.DirectionSell, 100_000, 50_000),
	}

	pos := calc.Calculate(annotations, 8, 52_000)
	if pos.CurrentBalance != 0 {
		t.Errorf("balance = %v, want 0 when sells exceed visible buys", pos.CurrentBalance)
	}
	if pos.UnrealizedPnL != 0 {
		t.Errorf("unrealized = %v, want 0 at zero balance", pos.UnrealizedPnL)
	}
}

func TestPositionEmpty(t *testing.T) {
	pos := NewPositionCalculator().Calculate(nil, 8, 52_000)
	if pos.TotalBought != 0 || pos.TotalSold != 0 || pos.TotalPnL != 0 || pos.ROI != 0 {
		t.Errorf("empty history produced a non-zero position: %+v", pos)
	}
}

func TestPositionOrderIndependent(t *testing.T) {
	calc := NewPositionCalculator()

	a := annotationAt(millis(2025, time.March, 1, 10), domain.DirectionBuy, 200_000, 50_000)
	b := annotationAt(millis(2025, time.March, 3, 10), domain.DirectionSell, 50_000, 60_000)

	fwd := calc.Calculate([]domain.Annotation{a, b}, 8, 52_000)
	rev := calc.Calculate([]domain.Annotation{b, a}, 8, 52_000)

	if !almostEqual(fwd.TotalPnL, rev.TotalPnL) || !almostEqual(fwd.ROI, rev.ROI) {
		t.Errorf("input order changed the position: %+v vs %+v", fwd, rev)
	}
}
