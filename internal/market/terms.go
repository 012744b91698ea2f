package market

import "github.com/ethereum/go-ethereum/common"

// PoolTerms carries the payout configuration shared by every mechanism:
// where proceeds, platform fee, and royalty land, and the two fractions.
// Each fraction is validated below one at creation; their sum is not
// capped, so the splitter still guards against over-extraction.
type PoolTerms struct {
	FeeRecipient     common.Address
	RoyaltyRecipient common.Address
	CoinRecipient    common.Address
	FeeFraction      Fraction
	RoyaltyFraction  Fraction
}

// normalize fills the proceeds recipient with the creator when unset.
func (t *PoolTerms) normalize(creator common.Address) {
	if t.CoinRecipient == (common.Address{}) {
		t.CoinRecipient = creator
	}
}
