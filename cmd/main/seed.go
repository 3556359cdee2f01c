package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"msku-service/internal/config"
	"msku-service/internal/fileio"
	"msku-service/internal/resolve/catalog"
	"msku-service/internal/resolve/ingest"
	"msku-service/internal/resolve/model"
)

var demoMappings = []model.Mapping{
	{SKU: "GOLDEN-APPLE", MSKU: "APPLE-001", Marketplace: "Amazon"},
	{SKU: "GLD", MSKU: "APPLE-001", Marketplace: "Shopify"},
	{SKU: "REDAPPLE", MSKU: "APPLE-002", Marketplace: "Amazon"},
	{SKU: "RED-A", MSKU: "APPLE-002", Marketplace: "Shopify"},
	{SKU: "WIDGET-BLUE", MSKU: "WIDGET-001", Marketplace: "Amazon"},
	{SKU: "BLUE-W", MSKU: "WIDGET-001", Marketplace: "Shopify"},
	{SKU: "WIDGET-RED", MSKU: "WIDGET-002", Marketplace: "Amazon"},
	{SKU: "RED-W", MSKU: "WIDGET-002", Marketplace: "Shopify"},
	{SKU: "GADGET-SMALL", MSKU: "GADGET-001", Marketplace: "Amazon"},
	{SKU: "SMALL-G", MSKU: "GADGET-001", Marketplace: "Shopify"},
	{SKU: "GADGET-LARGE", MSKU: "GADGET-002", Marketplace: "Amazon"},
	{SKU: "LARGE-G", MSKU: "GADGET-002", Marketplace: "Shopify"},
}

// seed fills an empty catalog from SEED_FILE, or the demo set when SEED_DEMO is on.
func seed(ctx context.Context, cfg config.Config, cat *catalog.Catalog, logger zerolog.Logger) error {
	var mappings []model.Mapping
	switch {
	case cfg.SeedFile != "":
		m, err := loadMappings(cfg.SeedFile)
		if err != nil {
			return err
		}
		mappings = m
	case cfg.SeedDemo:
		mappings = demoMappings
	default:
		return nil
	}

	n, err := cat.Seed(ctx, mappings)
	if err != nil {
		return err
	}
	logger.Info().Int("mappings", n).Msg("seed done")
	return nil
}

func loadMappings(path string) ([]model.Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := fileio.ReadAnyMaps(f, path, 1)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ingest.Mappings(rows), nil
}
