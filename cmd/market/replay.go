package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marketSettle/internal/config"
	"marketSettle/internal/model"
)

type poolTotals struct {
	Payments uint64
	Fees     uint64
	Royalty  uint64
	Proceeds uint64
	Count    int
}

func runReplay(cmd *cobra.Command, _ []string) error {
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

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	file, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	totals := make(map[string]*poolTotals)
	var records, violations int

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record model.SettlementRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("decode settlement record: %w", err)
		}
		records++

		if record.Fee+record.Royalty+record.Proceeds != record.Payment {
			violations++
			logger.Warn("fund conservation violated",
				zap.String("pool", record.PoolName),
				zap.Uint64("payment", record.Payment),
				zap.Uint64("fee", record.Fee),
				zap.Uint64("royalty", record.Royalty),
				zap.Uint64("proceeds", record.Proceeds),
			)
		}

		key := record.Mechanism + "/" + record.Owner + "/" + record.PoolName
		agg := totals[key]
		if agg == nil {
			agg = &poolTotals{}
			totals[key] = agg
		}
		agg.Payments += record.Payment
		agg.Fees += record.Fee
		agg.Royalty += record.Royalty
		agg.Proceeds += record.Proceeds
		agg.Count++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	for key, agg := range totals {
		logger.Info("pool totals",
			zap.String("pool", key),
			zap.Int("settlements", agg.Count),
			zap.Uint64("payments", agg.Payments),
			zap.Uint64("fees", agg.Fees),
			zap.Uint64("royalties", agg.Royalty),
			zap.Uint64("proceeds", agg.Proceeds),
		)
	}

	logger.Info("replay complete",
		zap.Int("records", records),
		zap.Int("pools", len(totals)),
		zap.Int("violations", violations),
	)

	if violations > 0 {
		return fmt.Errorf("%d settlement records violate fund conservation", violations)
	}
	return nil
}
