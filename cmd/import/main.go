// Command import appends transactions from a CSV file to a ledger account,
// creating the account first when -new-account is given.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/AlexyDarius/finarius/internal/config"
	"github.com/AlexyDarius/finarius/internal/database"
	"github.com/AlexyDarius/finarius/internal/ledger"
	"github.com/AlexyDarius/finarius/internal/logger"
)

func main() {
	accountID := flag.Uint("account", 0, "existing account ID")
	newAccount := flag.String("new-account", "", "create an account with this name and import into it")
	currency := flag.String("currency", "", "ISO 4217 currency for -new-account (default USD)")
	flag.Parse()

	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if flag.NArg() != 1 || (*accountID == 0) == (*newAccount == "") {
		fmt.Fprintln(os.Stderr, "usage: import (-account ID | -new-account NAME [-currency CCY]) transactions.csv")
		os.Exit(1)
	}

	failed, err := run(flag.Arg(0), uint(*accountID), *newAccount, *currency)
	if err != nil {
		logger.Get().Fatalf("Import error: %v", err)
	}
	if failed > 0 {
		logger.Sync()
		os.Exit(2)
	}
}

func run(path string, accountID uint, newAccount, currency string) (int, error) {
	log := logger.Named("import")

	cfg, err := config.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	if err := dbManager.RunMigrations(); err != nil {
		return 0, fmt.Errorf("failed to run database migrations: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	recorder := ledger.NewRecorder(dbManager.DB())
	if newAccount != "" {
		account, err := recorder.CreateAccount(ledger.Account{Name: newAccount, Currency: currency})
		if err != nil {
			return 0, fmt.Errorf("failed to create account: %w", err)
		}
		log.Infow("account created", "account_id", account.ID, "name", account.Name, "currency", account.Currency)
		accountID = account.ID
	}

	result, err := recorder.ImportCSV(accountID, f)
	if err != nil {
		return 0, err
	}

	for _, rowErr := range result.Failed {
		log.Warnw("row skipped", "line", rowErr.Line, "error", rowErr.Err.Error())
	}
	log.Infow("import completed", "account_id", accountID, "recorded", result.Recorded, "failed", len(result.Failed))
	return len(result.Failed), nil
}
