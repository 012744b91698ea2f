package market

import (
	"fmt"

	"marketSettle/internal/ledger"
)

// Settlement reports how one payment was split.
type Settlement struct {
	Payment  uint64
	Fee      uint64
	Royalty  uint64
	Proceeds uint64
}

// settle splits a held payment into proceeds, fee, and royalty and
// deposits each share. Fee and royalty are floor(fraction * payment),
// extracted in that order; the remainder is the proceeds. If the shares
// exceed the payment the balance is left intact and nothing is deposited.
func settle(funds *ledger.Ledger, payment *ledger.Balance, terms PoolTerms) (Settlement, error) {
	total := payment.Value()
	fee := terms.FeeFraction.Apply(total)
	royalty := terms.RoyaltyFraction.Apply(total)
	if fee+royalty > total {
		return Settlement{}, fmt.Errorf("fee %d + royalty %d over payment %d: %w", fee, royalty, total, ledger.ErrBalanceUnderflow)
	}

	feeShare, err := payment.Extract(fee)
	if err != nil {
		return Settlement{}, fmt.Errorf("extract fee: %w", err)
	}
	royaltyShare, err := payment.Extract(royalty)
	if err != nil {
		// Restore the fee share; the payment must stay whole on failure.
		payment.Merge(feeShare)
		return Settlement{}, fmt.Errorf("extract royalty: %w", err)
	}

	funds.Deposit(terms.CoinRecipient, payment)
	funds.Deposit(terms.FeeRecipient, feeShare)
	funds.Deposit(terms.RoyaltyRecipient, royaltyShare)

	return Settlement{
		Payment:  total,
		Fee:      fee,
		Royalty:  royalty,
		Proceeds: total - fee - royalty,
	}, nil
}
