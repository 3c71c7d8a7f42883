// Package config содержит логику чтения конфигурации сервиса ресторанных заказов.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress     string `env:"RUN_ADDRESS"`
	DatabaseURI    string `env:"DATABASE_URI"`
	SnapshotFile   string `env:"SNAPSHOT_FILE"`
	MenuFile       string `env:"MENU_FILE"`
	BranchID       string `env:"BRANCH_ID"`
	PrinterAddress string `env:"PRINTER_ADDRESS"`
	TaxRateBP      int64  `env:"TAX_RATE_BP"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Значения из окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envSnapshotFile := cfg.SnapshotFile
	envMenuFile := cfg.MenuFile
	envBranchID := cfg.BranchID
	envPrinterAddress := cfg.PrinterAddress
	envTaxRateBP := cfg.TaxRateBP
	// Для числовой ставки нулевое значение легитимно, поэтому
	// приоритет окружения определяется по наличию переменной.
	_, envTaxRateSet := os.LookupEnv("TAX_RATE_BP")

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI for the snapshot store")
	flag.StringVar(&cfg.SnapshotFile, "f", "", "path to the snapshot file (used when no database URI is set)")
	flag.StringVar(&cfg.MenuFile, "m", "", "path to a JSON menu file overriding the built-in menu")
	flag.StringVar(&cfg.BranchID, "b", "satara", "branch identifier of this instance")
	flag.StringVar(&cfg.PrinterAddress, "p", "", "receipt printer service address")
	flag.Int64Var(&cfg.TaxRateBP, "t", 500, "tax rate in basis points")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envSnapshotFile != "" {
		cfg.SnapshotFile = envSnapshotFile
	}
	if envMenuFile != "" {
		cfg.MenuFile = envMenuFile
	}
	if envBranchID != "" {
		cfg.BranchID = envBranchID
	}
	if envPrinterAddress != "" {
		cfg.PrinterAddress = envPrinterAddress
	}
	if envTaxRateSet {
		cfg.TaxRateBP = envTaxRateBP
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	if cfg.TaxRateBP < 0 || cfg.TaxRateBP > 10000 {
		return nil, fmt.Errorf("tax rate %d is out of range [0, 10000]", cfg.TaxRateBP)
	}

	return cfg, nil
}
