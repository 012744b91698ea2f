package market

import (
	"errors"
	"testing"
)

func createBlindBox(t *testing.T, e *Engine, name string, price uint64, from, to uint64) {
	t.Helper()
	items := giveItems(e, testCreator, from, to)
	err := e.CreateBlindBoxPool(testCreator, BlindBoxParams{
		Name: name, Price: price, MintAt: 1_000, Items: items, Terms: testTerms(t),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBlindBoxMint(t *testing.T) {
	e, _ := newTestEngine(t)
	createBlindBox(t, e, "mystery", 50, 1, 5)

	minted, err := e.MintBlindBox(testBob, testCreator, "mystery", 120, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(minted) != 2 {
		t.Fatalf("minted %d, want 2", len(minted))
	}
	// Items come off the back of the escrow sequence.
	if minted[0].ID != 5 || minted[1].ID != 4 {
		t.Fatalf("minted ids %d,%d, want 5,4", minted[0].ID, minted[1].ID)
	}

	// The full payment settles, not price*count.
	total := e.Funds().BalanceOf(testCreator) + e.Funds().BalanceOf(testPlatform) + e.Funds().BalanceOf(testArtist)
	if total != 120 {
		t.Fatalf("settled total = %d, want 120", total)
	}
}

func TestBlindBoxMintPreconditions(t *testing.T) {
	e, clock := newTestEngine(t)
	createBlindBox(t, e, "mystery", 50, 1, 3)

	if _, err := e.MintBlindBox(testBob, testCreator, "mystery", 100, 0); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("error = %v, want ErrInvalidCount", err)
	}
	if _, err := e.MintBlindBox(testBob, testCreator, "mystery", 99, 2); !errors.Is(err, ErrPaymentTooLow) {
		t.Fatalf("error = %v, want ErrPaymentTooLow", err)
	}
	if _, err := e.MintBlindBox(testBob, testCreator, "mystery", 200, 4); !errors.Is(err, ErrInsufficientAssets) {
		t.Fatalf("error = %v, want ErrInsufficientAssets", err)
	}

	clock.Set(900, 10)
	if _, err := e.MintBlindBox(testBob, testCreator, "mystery", 100, 2); !errors.Is(err, ErrPoolNotOpen) {
		t.Fatalf("error = %v, want ErrPoolNotOpen", err)
	}
	if got := e.Funds().BalanceOf(testBob); got != 1_000 {
		t.Fatalf("failed mints touched buyer balance: %d", got)
	}
}

func TestBlindBoxDestroyOnlyWhenEmpty(t *testing.T) {
	e, _ := newTestEngine(t)
	createBlindBox(t, e, "mystery", 50, 1, 2)

	if err := e.DestroyBlindBoxPool(testCreator, "mystery"); !errors.Is(err, ErrPoolNotEmpty) {
		t.Fatalf("error = %v, want ErrPoolNotEmpty", err)
	}

	if _, err := e.MintBlindBox(testBob, testCreator, "mystery", 100, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.DestroyBlindBoxPool(testCreator, "mystery"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.DestroyBlindBoxPool(testCreator, "mystery"); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("error = %v, want ErrPoolNotFound", err)
	}
}
