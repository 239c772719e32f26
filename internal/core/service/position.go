package service

import (
	"math"
	"math/big"
	"sort"

	"github.com/satstack/swapkit/internal/core/domain"
)

// PositionCalculator computes profit-and-loss metrics for the subject
// wallet's holdings of one token, valuing each historical trade at the mean
// price of the bucket it was anchored to.
type PositionCalculator struct{}

// NewPositionCalculator creates a position calculator.
func NewPositionCalculator() *PositionCalculator {
	return &PositionCalculator{}
}

// Calculate derives the position from annotated transfers using average-cost
// accounting. currentPrice values the remaining balance; tokenDecimals scales
// raw transfer amounts into display units for the float-only PnL figures.
func (p *PositionCalculator) Calculate(annotations []domain.Annotation, tokenDecimals uint8, currentPrice float64) *domain.Position {
	sorted := make([]domain.Annotation, len(annotations))
	copy(sorted, annotations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Transfer.TimestampMillis < sorted[j].Transfer.TimestampMillis
	})

	var totalBought, totalSold float64
	var totalCost, totalRevenue float64

	for _, a := range sorted {
		tokens := tokensFromRaw(a.Transfer.RawAmount, tokenDecimals)
		price := a.Bucket.MeanPrice

		switch a.Transfer.Direction {
		case domain.DirectionBuy:
			totalBought += tokens
			totalCost += tokens * price
		case domain.DirectionSell:
			totalSold += tokens
			totalRevenue += tokens * price
		}
	}

	currentBalance := totalBought - totalSold
	if currentBalance < 0 {
		// Provider page may be truncated; never report a negative holding.
		currentBalance = 0
	}

	avgBuyPrice := 0.0
	if totalBought > 0 {
		avgBuyPrice = totalCost / totalBought
	}
	avgSellPrice := 0.0
	if totalSold > 0 {
		avgSellPrice = totalRevenue / totalSold
	}

	realizedPnL := totalRevenue - totalSold*avgBuyPrice
	unrealizedPnL := currentBalance*currentPrice - currentBalance*avgBuyPrice
	totalPnL := realizedPnL + unrealizedPnL

	roi := 0.0
	if totalCost > 0 {
		roi = totalPnL / totalCost * 100
	}

	return &domain.Position{
		TotalBought:      totalBought,
		TotalSold:        totalSold,
		CurrentBalance:   currentBalance,
		AverageBuyPrice:  avgBuyPrice,
		AverageSellPrice: avgSellPrice,
		RealizedPnL:      realizedPnL,
		UnrealizedPnL:    unrealizedPnL,
		TotalPnL:         totalPnL,
		ROI:              roi,
	}
}

// tokensFromRaw converts base units into display units. Float precision is
// fine here: the result only feeds human-facing PnL figures, never a call.
func tokensFromRaw(raw *big.Int, decimals uint8) float64 {
	if raw == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(raw).Float64()
	return f / math.Pow10(int(decimals))
}
