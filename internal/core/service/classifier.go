package service

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/satstack/swapkit/internal/core/domain"
)

// Classify partitions a wallet's transfer history into buys and sells
// relative to the subject address.
//
// The recipient test runs first, then the sender test, and the tests are
// exclusive: a transfer where the subject is both sender and recipient
// (a self-transfer) lands in neither set. That check order is a deliberate,
// documented choice carried over from the product's existing behavior, not
// an accident; changing it needs product sign-off.
//
// Addresses are compared as parsed common.Address values, so two textually
// different renderings of the same checksummed address are equal. Transfers
// touching neither side of the subject (stale provider data) are dropped.
func Classify(transfers []domain.Transfer, subject common.Address) (buys, sells []domain.ClassifiedTransfer) {
	for _, tr := range transfers {
		switch {
		case tr.To == subject && tr.From != subject:
			buys = append(buys, domain.ClassifiedTransfer{Transfer: tr, Direction: domain.DirectionBuy})
		case tr.From == subject && tr.To != subject:
			sells = append(sells, domain.ClassifiedTransfer{Transfer: tr, Direction: domain.DirectionSell})
		}
	}
	return buys, sells
}
