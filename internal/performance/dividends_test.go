package performance_test

import (
	"testing"

	"github.com/AlexyDarius/finarius/internal/models"
	"github.com/AlexyDarius/finarius/internal/performance"
	"github.com/AlexyDarius/finarius/internal/testutil"
)

func TestDividends(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	dividends := performance.NewDividends(newEngine(db), nil)

	day := testutil.Date(2024, 6, 30)
	account := testutil.CreateTestAccount(t, db)
	testutil.CreateTestBuy(t, db, account.ID, testutil.Date(2023, 1, 2), "AAPL", 10, 150, 0)
	testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeDividend, testutil.Date(2023, 3, 1), "AAPL", testutil.Float(4), nil, 0)
	testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeDividend, testutil.Date(2024, 1, 15), "aapl", testutil.Float(10), testutil.Float(1), 0)
	testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeDividend, testutil.Date(2024, 2, 1), "MSFT", testutil.Float(5), nil, 0)
	testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeDividend, testutil.Date(2024, 3, 1), "", testutil.Float(3), nil, 0)
	testutil.CreateTestCashFlow(t, db, account.ID, models.TransactionTypeDeposit, testutil.Date(2024, 3, 2), 1000)
	testutil.CreateTestPrice(t, db, "AAPL", day, 200)

	start := testutil.Date(2024, 1, 1)

	t.Run("history_only_dividends", func(t *testing.T) {
		history, err := dividends.History(account.ID, start, day)
		testutil.AssertNoError(t, err)
		if len(history) != 3 {
			t.Fatalf("expected 3 dividends, got %d", len(history))
		}
		for _, d := range history {
			if d.Type != models.TransactionTypeDividend {
				t.Errorf("unexpected %s in dividend history", d.Type)
			}
		}
	})

	t.Run("income", func(t *testing.T) {
		income, err := dividends.Income(account.ID, start, day)
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, income, 18, 1e-9)
	})

	t.Run("by_symbol", func(t *testing.T) {
		bySymbol, err := dividends.BySymbol(account.ID, start, day)
		testutil.AssertNoError(t, err)
		if len(bySymbol) != 2 {
			t.Fatalf("expected 2 symbols, got %v", bySymbol)
		}
		testutil.AssertFloat(t, bySymbol["AAPL"], 10, 1e-9)
		testutil.AssertFloat(t, bySymbol["MSFT"], 5, 1e-9)
	})

	t.Run("trailing_year_yield", func(t *testing.T) {
		yield, err := dividends.Yield(account.ID, day)
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, yield, 18.0/2000, 1e-12)
	})

	t.Run("yield_by_symbol", func(t *testing.T) {
		yield, err := dividends.YieldBySymbol("aapl", account.ID, day)
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, yield, 10.0/2000, 1e-12)
	})

	t.Run("yield_by_symbol_without_position", func(t *testing.T) {
		yield, err := dividends.YieldBySymbol("MSFT", account.ID, day)
		testutil.AssertNoError(t, err)
		if yield != 0 {
			t.Errorf("expected 0, got %v", yield)
		}
	})

	t.Run("yield_by_symbol_without_price", func(t *testing.T) {
		yield, err := dividends.YieldBySymbol("AAPL", account.ID, testutil.Date(2024, 6, 29))
		testutil.AssertNoError(t, err)
		if yield != 0 {
			t.Errorf("expected 0, got %v", yield)
		}
	})

	t.Run("yield_of_empty_portfolio", func(t *testing.T) {
		empty := testutil.CreateTestAccount(t, db)
		testutil.CreateTestTransaction(t, db, empty.ID, models.TransactionTypeDividend, testutil.Date(2024, 3, 1), "AAPL", testutil.Float(9), nil, 0)

		yield, err := dividends.Yield(empty.ID, day)
		testutil.AssertNoError(t, err)
		if yield != 0 {
			t.Errorf("expected 0, got %v", yield)
		}
	})
}
