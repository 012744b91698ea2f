package market

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func createLottery(t *testing.T, e *Engine, name string, shareNum, maxPlayers uint64, from, to uint64) {
	t.Helper()
	items := giveItems(e, testCreator, from, to)
	err := e.CreateLotteryPool(testCreator, LotteryParams{
		Name: name, CloseAt: 2_000, MaxPlayers: maxPlayers, ShareNum: shareNum,
		Items: items, Terms: testTerms(t),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLotteryCreateValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	terms := testTerms(t)
	items := giveItems(e, testCreator, 1, 1)

	cases := []struct {
		name   string
		params LotteryParams
		want   error
	}{
		{"close in the past", LotteryParams{Name: "l", CloseAt: 1_000, MaxPlayers: 5, ShareNum: 2, Items: items, Terms: terms}, ErrInvalidWindow},
		{"zero shares", LotteryParams{Name: "l", CloseAt: 2_000, MaxPlayers: 5, ShareNum: 0, Items: items, Terms: terms}, ErrInvalidShares},
		{"zero capacity", LotteryParams{Name: "l", CloseAt: 2_000, MaxPlayers: 0, ShareNum: 2, Items: items, Terms: terms}, ErrInvalidCapacity},
		{"no assets", LotteryParams{Name: "l", CloseAt: 2_000, MaxPlayers: 5, ShareNum: 2, Terms: terms}, ErrNoAssets},
		{"unnamed", LotteryParams{CloseAt: 2_000, MaxPlayers: 5, ShareNum: 2, Items: items, Terms: terms}, ErrInvalidName},
	}
	for _, tc := range cases {
		if err := e.CreateLotteryPool(testCreator, tc.params); !errors.Is(err, tc.want) {
			t.Fatalf("%s: error = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestLotteryBetPreconditions(t *testing.T) {
	e, clock := newTestEngine(t)
	createLottery(t, e, "raffle", 2, 2, 1, 3)

	if err := e.BetLottery(testAlice, testCreator, "raffle", 0); !errors.Is(err, ErrPaymentTooLow) {
		t.Fatalf("error = %v, want ErrPaymentTooLow", err)
	}
	if err := e.BetLottery(testAlice, testCreator, "raffle", 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.BetLottery(testAlice, testCreator, "raffle", 40); !errors.Is(err, ErrAlreadyEntered) {
		t.Fatalf("error = %v, want ErrAlreadyEntered", err)
	}
	if err := e.BetLottery(testBob, testCreator, "raffle", 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.BetLottery(testCarol, testCreator, "raffle", 40); !errors.Is(err, ErrPoolFull) {
		t.Fatalf("error = %v, want ErrPoolFull", err)
	}

	clock.Set(2_000, 20)
	if err := e.BetLottery(testCarol, testCreator, "raffle", 40); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("error = %v, want ErrPoolClosed", err)
	}
}

func TestLotteryExactShareNumWinners(t *testing.T) {
	e, clock := newTestEngine(t)
	createLottery(t, e, "raffle", 2, 10, 1, 3)

	players := []common.Address{testAlice, testBob, testCarol, testDave, testErin}
	for i, player := range players {
		clock.Set(1_100+uint64(i)*10, 10+uint64(i))
		if err := e.BetLottery(player, testCreator, "raffle", 40); err != nil {
			t.Fatalf("bet %d: unexpected error: %v", i, err)
		}
	}

	// Not decided before close.
	if _, err := e.IsLotteryWinner(testCreator, "raffle", testAlice); !errors.Is(err, ErrPoolNotClosed) {
		t.Fatalf("error = %v, want ErrPoolNotClosed", err)
	}

	clock.Set(2_000, 20)
	if _, err := e.IsLotteryWinner(testCreator, "raffle", testPlatform); !errors.Is(err, ErrNotEntrant) {
		t.Fatalf("error = %v, want ErrNotEntrant", err)
	}

	winners := 0
	for _, player := range players {
		won, err := e.IsLotteryWinner(testCreator, "raffle", player)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		claimed, err := e.ClaimLottery(player, testCreator, "raffle")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claimed != won {
			t.Fatalf("claim result %v disagrees with winner check %v", claimed, won)
		}
		if won {
			winners++
		}
	}
	if winners != 2 {
		t.Fatalf("winners = %d, want exactly 2", winners)
	}
}

func TestLotteryFirstClaimantSettlesAllBids(t *testing.T) {
	e, clock := newTestEngine(t)
	createLottery(t, e, "raffle", 2, 10, 1, 3)

	players := []common.Address{testAlice, testBob, testCarol, testDave, testErin}
	for _, player := range players {
		if err := e.BetLottery(player, testCreator, "raffle", 40); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	clock.Set(2_000, 20)

	// The first claim settles the whole 200 regardless of who wins:
	// fee 4, royalty 9, proceeds 187.
	if _, err := e.ClaimLottery(testAlice, testCreator, "raffle"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := e.Funds().BalanceOf(testPlatform); got != 4 {
		t.Fatalf("platform balance = %d, want 4", got)
	}
	if got := e.Funds().BalanceOf(testArtist); got != 9 {
		t.Fatalf("artist balance = %d, want 9", got)
	}
	if got := e.Funds().BalanceOf(testCreator); got != 187 {
		t.Fatalf("creator balance = %d, want 187", got)
	}

	// Later claims have nothing left to settle.
	if _, err := e.ClaimLottery(testBob, testCreator, "raffle"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := e.Funds().BalanceOf(testCreator); got != 187 {
		t.Fatalf("creator balance after second claim = %d, want 187", got)
	}

	if _, err := e.ClaimLottery(testAlice, testCreator, "raffle"); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("error = %v, want ErrAlreadyClaimed", err)
	}

	if got := e.Funds().TotalSupply(); got != 5_000 {
		t.Fatalf("total supply = %d, want 5000", got)
	}
}

func TestLotteryUnderfilledEveryoneWins(t *testing.T) {
	e, clock := newTestEngine(t)
	createLottery(t, e, "raffle", 3, 10, 1, 3)

	if err := e.BetLottery(testAlice, testCreator, "raffle", 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.Set(2_000, 20)

	won, err := e.ClaimLottery(testAlice, testCreator, "raffle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !won {
		t.Fatalf("sole entrant of an underfilled lottery must win")
	}
	if e.Custody().Count(testAlice) != 1 {
		t.Fatalf("winner custody = %d, want 1", e.Custody().Count(testAlice))
	}

	// The creator drains the two unwon items, then the empty pool can go.
	if err := e.ClaimLotteryAsOwner(testCreator, "raffle"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Custody().Count(testCreator) != 2 {
		t.Fatalf("creator custody = %d, want 2", e.Custody().Count(testCreator))
	}
	if err := e.DestroyLotteryPool(testCreator, "raffle"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.IsLotteryWinner(testCreator, "raffle", testAlice); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("error = %v, want ErrPoolNotFound", err)
	}
}

func TestLotteryOwnerClaimRequiresUnderfill(t *testing.T) {
	e, clock := newTestEngine(t)
	createLottery(t, e, "raffle", 2, 10, 1, 3)

	if err := e.BetLottery(testAlice, testCreator, "raffle", 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.BetLottery(testBob, testCreator, "raffle", 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := e.ClaimLotteryAsOwner(testCreator, "raffle"); !errors.Is(err, ErrPoolNotClosed) {
		t.Fatalf("error = %v, want ErrPoolNotClosed", err)
	}
	clock.Set(2_000, 20)
	if err := e.ClaimLotteryAsOwner(testCreator, "raffle"); !errors.Is(err, ErrLotteryFilled) {
		t.Fatalf("error = %v, want ErrLotteryFilled", err)
	}
}

func TestLotteryOwnerDrainBeforeEntrantClaim(t *testing.T) {
	e, clock := newTestEngine(t)
	createLottery(t, e, "raffle", 3, 10, 1, 2)

	if err := e.BetLottery(testAlice, testCreator, "raffle", 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.Set(2_000, 20)

	// Draining ahead of the winner leaves them without an item to take,
	// and the pending bid balance keeps the pool alive.
	if err := e.ClaimLotteryAsOwner(testCreator, "raffle"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.ClaimLottery(testAlice, testCreator, "raffle"); !errors.Is(err, ErrInsufficientAssets) {
		t.Fatalf("error = %v, want ErrInsufficientAssets", err)
	}
	if err := e.DestroyLotteryPool(testCreator, "raffle"); !errors.Is(err, ErrBalancePending) {
		t.Fatalf("error = %v, want ErrBalancePending", err)
	}
}

func TestLotteryDestroyWithAssets(t *testing.T) {
	e, clock := newTestEngine(t)
	createLottery(t, e, "raffle", 2, 10, 1, 3)

	clock.Set(2_000, 20)
	if err := e.DestroyLotteryPool(testCreator, "raffle"); !errors.Is(err, ErrPoolNotEmpty) {
		t.Fatalf("error = %v, want ErrPoolNotEmpty", err)
	}
}
