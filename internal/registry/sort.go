package registry

import (
	"slices"
	"strings"

	"gastos/internal/core"
)

// SortByAmountDesc orders payments by base amount, largest first. Payments
// with equal amounts keep their relative order.
func SortByAmountDesc(payments []*core.Payment) {
	slices.SortStableFunc(payments, func(a, b *core.Payment) int {
		return b.Amount.Cmp(a.Amount)
	})
}

// SortByIdentifier orders members by identifier, ascending.
func SortByIdentifier(members []*core.Member) {
	slices.SortStableFunc(members, func(a, b *core.Member) int {
		return strings.Compare(a.Identifier(), b.Identifier())
	})
}
