package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marketSettle/internal/config"
	"marketSettle/internal/ledger"
	"marketSettle/internal/market"
	"marketSettle/internal/storage"
	"marketSettle/internal/storage/postgres"
)

const demoCollection = "genesis"

func runDemo(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sinks := storage.Multi{storage.NewJsonlStorage(cfg.SettlementsOut, cfg.SnapshotsOut)}
	if cfg.PgDSN != "" {
		pgStore, err := postgres.NewStore(context.Background(), cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		sinks = append(sinks, pgStore)
	}

	clock := ledger.NewFakeClock(1_700_000_000, 1000)
	funds := ledger.NewLedger()
	custody := ledger.NewCustody()
	engine := market.NewEngine(funds, custody, clock, logger).WithStorage(sinks)

	creator := common.BytesToAddress([]byte{0x01})
	alice := common.BytesToAddress([]byte{0x02})
	bob := common.BytesToAddress([]byte{0x03})
	carol := common.BytesToAddress([]byte{0x04})
	dave := common.BytesToAddress([]byte{0x05})
	erin := common.BytesToAddress([]byte{0x06})
	platform := common.BytesToAddress([]byte{0x10})
	artist := common.BytesToAddress([]byte{0x11})

	for _, account := range []common.Address{alice, bob, carol, dave, erin} {
		funds.Credit(account, 1_000_000)
	}
	for id := uint64(1); id <= 20; id++ {
		custody.Deposit(creator, ledger.Item{Collection: demoCollection, ID: id})
	}

	feeFrac, err := market.NewFraction(25, 1000) // 2.5%
	if err != nil {
		return err
	}
	royaltyFrac, err := market.NewFraction(5, 100) // 5%
	if err != nil {
		return err
	}
	terms := market.PoolTerms{
		FeeRecipient:     platform,
		RoyaltyRecipient: artist,
		FeeFraction:      feeFrac,
		RoyaltyFraction:  royaltyFrac,
	}

	items := func(from, to uint64) []ledger.Item {
		out := make([]ledger.Item, 0, to-from+1)
		for id := from; id <= to; id++ {
			out = append(out, ledger.Item{Collection: demoCollection, ID: id})
		}
		return out
	}

	// Fixed price: three assets at 100, Alice pays 250 for two.
	if err := engine.CreateFixedPricePool(creator, market.FixedPriceParams{
		Name: "drop-1", Price: 100, OpenAt: clock.Now(), Items: items(1, 3), Terms: terms,
	}); err != nil {
		return err
	}
	if _, err := engine.BuyFixedPrice(alice, creator, "drop-1", 250); err != nil {
		return err
	}

	// Blind box: five assets at 50, Bob mints two.
	if err := engine.CreateBlindBoxPool(creator, market.BlindBoxParams{
		Name: "mystery", Price: 50, MintAt: clock.Now(), Items: items(4, 8), Terms: terms,
	}); err != nil {
		return err
	}
	if _, err := engine.MintBlindBox(bob, creator, "mystery", 100, 2); err != nil {
		return err
	}

	// English auction: rolling close, two bids, bidder claims after close.
	if err := engine.CreateEnglishAuction(creator, market.EnglishAuctionParams{
		Name: "one-of-one", Item: ledger.Item{Collection: demoCollection, ID: 9},
		MinAmount: 100, MinIncrease: 10, OpenAt: clock.Now(), ConfirmTime: 600, Terms: terms,
	}); err != nil {
		return err
	}
	if err := engine.BidEnglish(carol, creator, "one-of-one", 150); err != nil {
		return err
	}
	if err := engine.BidEnglish(dave, creator, "one-of-one", 200); err != nil {
		return err
	}
	clock.Advance(601, 50)
	if err := engine.ClaimEnglishAsBidder(dave, creator, "one-of-one"); err != nil {
		return err
	}

	// Dutch auction: 1000 decaying to 100 over 100 seconds.
	if err := engine.CreateDutchAuction(creator, market.DutchAuctionParams{
		Name: "descent", StartingPrice: 1000, ReservePrice: 100,
		StartAt: clock.Now(), EndAt: clock.Now() + 100, Items: items(10, 12), Terms: terms,
	}); err != nil {
		return err
	}
	clock.Advance(50, 4)
	price, err := engine.DutchPrice(creator, "descent")
	if err != nil {
		return err
	}
	logger.Info("dutch price at half-life", zap.Uint64("price", price))
	if _, err := engine.MintDutch(erin, creator, "descent", price, 1); err != nil {
		return err
	}

	// Lottery: three prizes, five entrants, two shares.
	if err := engine.CreateLotteryPool(creator, market.LotteryParams{
		Name: "raffle", CloseAt: clock.Now() + 300, MaxPlayers: 5, ShareNum: 2,
		Items: items(13, 15), Terms: terms,
	}); err != nil {
		return err
	}
	for _, player := range []common.Address{alice, bob, carol, dave, erin} {
		if err := engine.BetLottery(player, creator, "raffle", 40); err != nil {
			return err
		}
		clock.Advance(10, 1)
	}
	clock.Advance(300, 25)
	winners := 0
	for _, player := range []common.Address{alice, bob, carol, dave, erin} {
		won, err := engine.ClaimLottery(player, creator, "raffle")
		if err != nil {
			return err
		}
		if won {
			winners++
		}
	}
	logger.Info("lottery resolved", zap.Int("winners", winners))

	logger.Info("demo complete",
		zap.Uint64("creator_proceeds", funds.BalanceOf(creator)),
		zap.Uint64("platform_fees", funds.BalanceOf(platform)),
		zap.Uint64("artist_royalties", funds.BalanceOf(artist)),
		zap.String("settlements", cfg.SettlementsOut),
		zap.String("snapshots", cfg.SnapshotsOut),
	)
	return nil
}
