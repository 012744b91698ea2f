package market

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"marketSettle/internal/ledger"
)

var (
	testCreator  = common.BytesToAddress([]byte{0x01})
	testAlice    = common.BytesToAddress([]byte{0x02})
	testBob      = common.BytesToAddress([]byte{0x03})
	testCarol    = common.BytesToAddress([]byte{0x04})
	testDave     = common.BytesToAddress([]byte{0x05})
	testErin     = common.BytesToAddress([]byte{0x06})
	testPlatform = common.BytesToAddress([]byte{0x10})
	testArtist   = common.BytesToAddress([]byte{0x11})
)

const testCollection = "test"

func newTestEngine(t *testing.T) (*Engine, *ledger.FakeClock) {
	t.Helper()
	clock := ledger.NewFakeClock(1_000, 10)
	e := NewEngine(ledger.NewLedger(), ledger.NewCustody(), clock, nil)
	for _, account := range []common.Address{testAlice, testBob, testCarol, testDave, testErin} {
		e.Funds().Credit(account, 1_000)
	}
	return e, clock
}

// testTerms pays fees to the platform and royalties to the artist at 2.5%
// and 5%; proceeds default to the creator.
func testTerms(t *testing.T) PoolTerms {
	t.Helper()
	fee, err := NewFraction(25, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	royalty, err := NewFraction(5, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return PoolTerms{
		FeeRecipient:     testPlatform,
		RoyaltyRecipient: testArtist,
		FeeFraction:      fee,
		RoyaltyFraction:  royalty,
	}
}

// giveItems provisions n fresh items to owner and returns them.
func giveItems(e *Engine, owner common.Address, from, to uint64) []ledger.Item {
	items := make([]ledger.Item, 0, to-from+1)
	for id := from; id <= to; id++ {
		item := ledger.Item{Collection: testCollection, ID: id}
		e.Custody().Deposit(owner, item)
		items = append(items, item)
	}
	return items
}
