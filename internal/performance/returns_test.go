package performance_test

import (
	"math"
	"testing"

	"github.com/AlexyDarius/finarius/internal/models"
	"github.com/AlexyDarius/finarius/internal/performance"
	"github.com/AlexyDarius/finarius/internal/testutil"
)

func TestReturns_TotalReturn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	engine := newEngine(db)
	returns := performance.NewReturns(engine, performance.NewGains(engine, nil), nil)

	start, end := testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 31)
	account := testutil.CreateTestAccount(t, db)
	testutil.CreateTestBuy(t, db, account.ID, start, "AAPL", 10, 150, 5)
	testutil.CreateTestSell(t, db, account.ID, testutil.Date(2024, 1, 10), "AAPL", 4, 160, 3)
	testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeDividend, testutil.Date(2024, 1, 15), "AAPL", testutil.Float(12), nil, 0)
	testutil.CreateTestPrice(t, db, "AAPL", start, 150)
	testutil.CreateTestPrice(t, db, "AAPL", end, 170)

	t.Run("realized_plus_unrealized_plus_dividends", func(t *testing.T) {
		total, err := returns.TotalReturn(account.ID, start, end)
		testutil.AssertNoError(t, err)
		// 35 realized, 6*170-903 unrealized, 12 dividends.
		testutil.AssertFloat(t, total, 35+117+12, 1e-9)
	})

	t.Run("pct_of_start_value", func(t *testing.T) {
		pct, err := returns.TotalReturnPct(account.ID, start, end)
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, pct, 164.0/1500, 1e-9)
	})

	t.Run("pct_zero_start_value", func(t *testing.T) {
		pct, err := returns.TotalReturnPct(account.ID, testutil.Date(2023, 12, 1), end)
		testutil.AssertNoError(t, err)
		if pct != 0 {
			t.Errorf("expected 0, got %v", pct)
		}
	})
}

func TestReturns_CAGR(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	engine := newEngine(db)
	returns := performance.NewReturns(engine, performance.NewGains(engine, nil), nil)

	start, end := testutil.Date(2022, 1, 1), testutil.Date(2024, 1, 1)
	account := testutil.CreateTestAccount(t, db)
	testutil.CreateTestBuy(t, db, account.ID, start, "VTI", 10, 100, 0)
	testutil.CreateTestPrice(t, db, "VTI", start, 100)
	testutil.CreateTestPrice(t, db, "VTI", end, 121)
	testutil.CreateTestPrice(t, db, "VTI", testutil.Date(2023, 1, 1), 0)

	t.Run("annualized_growth", func(t *testing.T) {
		cagr, err := returns.CAGR(account.ID, start, end)
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, cagr, math.Pow(1.21, 365.25/730)-1, 1e-12)
	})

	t.Run("zero_start_value", func(t *testing.T) {
		cagr, err := returns.CAGR(account.ID, testutil.Date(2021, 1, 1), end)
		testutil.AssertNoError(t, err)
		if cagr != 0 {
			t.Errorf("expected 0, got %v", cagr)
		}
	})

	t.Run("zero_elapsed_days", func(t *testing.T) {
		cagr, err := returns.CAGR(account.ID, start, start)
		testutil.AssertNoError(t, err)
		if cagr != 0 {
			t.Errorf("expected 0, got %v", cagr)
		}
	})

	t.Run("total_loss", func(t *testing.T) {
		cagr, err := returns.CAGR(account.ID, start, testutil.Date(2023, 1, 1))
		testutil.AssertNoError(t, err)
		if cagr != -1 {
			t.Errorf("expected -1, got %v", cagr)
		}
	})

	t.Run("history", func(t *testing.T) {
		history, err := returns.CAGRHistory(account.ID, start, testutil.Date(2022, 1, 3))
		testutil.AssertNoError(t, err)
		if len(history) != 3 {
			t.Fatalf("expected 3 points, got %d", len(history))
		}
		if history[0].Value != 0 {
			t.Errorf("expected first point 0, got %v", history[0].Value)
		}
	})
}

func TestSolveIRR(t *testing.T) {
	t.Run("ten_percent_over_a_year", func(t *testing.T) {
		rate := performance.SolveIRR([]performance.Flow{
			{Date: testutil.Date(2021, 1, 1), Amount: -1000},
			{Date: testutil.Date(2022, 1, 1), Amount: 1100},
		})
		if rate == nil {
			t.Fatal("expected a rate")
		}
		testutil.AssertFloat(t, *rate, math.Pow(1.1, 365.25/365)-1, 1e-6)
	})

	t.Run("fewer_than_two_flows", func(t *testing.T) {
		if rate := performance.SolveIRR([]performance.Flow{{Date: testutil.Date(2021, 1, 1), Amount: -1000}}); rate != nil {
			t.Errorf("expected nil, got %v", *rate)
		}
		if rate := performance.SolveIRR(nil); rate != nil {
			t.Errorf("expected nil, got %v", *rate)
		}
	})

	t.Run("no_sign_change", func(t *testing.T) {
		rate := performance.SolveIRR([]performance.Flow{
			{Date: testutil.Date(2021, 1, 1), Amount: 100},
			{Date: testutil.Date(2022, 1, 1), Amount: 100},
		})
		if rate != nil {
			t.Errorf("expected nil, got %v", *rate)
		}
	})
}

func TestReturns_IRR(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	engine := newEngine(db)
	returns := performance.NewReturns(engine, performance.NewGains(engine, nil), nil)

	start, end := testutil.Date(2023, 1, 1), testutil.Date(2024, 1, 1)

	t.Run("deposit_growing_ten_percent", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db)
		testutil.CreateTestCashFlow(t, db, account.ID, models.TransactionTypeDeposit, start, 1000)
		testutil.CreateTestBuy(t, db, account.ID, testutil.Date(2023, 1, 2), "AAPL", 10, 100, 0)
		testutil.CreateTestPrice(t, db, "AAPL", end, 110)

		flows, err := returns.IRRFlows(account.ID, start, end)
		testutil.AssertNoError(t, err)
		if len(flows) != 2 || flows[0].Amount != -1000 || flows[1].Amount != 1100 {
			t.Fatalf("unexpected flows: %+v", flows)
		}

		rate, err := returns.IRR(account.ID, start, end)
		testutil.AssertNoError(t, err)
		if rate == nil {
			t.Fatal("expected a rate")
		}
		testutil.AssertFloat(t, *rate, 0.10, 1e-3)
	})

	t.Run("withdrawal_keeps_ledger_sign", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db)
		testutil.CreateTestCashFlow(t, db, account.ID, models.TransactionTypeDeposit, start, 1000)
		testutil.CreateTestCashFlow(t, db, account.ID, models.TransactionTypeWithdraw, testutil.Date(2023, 6, 1), 200)
		testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeDividend, testutil.Date(2023, 7, 1), "AAPL", testutil.Float(15), nil, 0)

		flows, err := returns.IRRFlows(account.ID, start, end)
		testutil.AssertNoError(t, err)

		want := []float64{-1000, -200, 15}
		if len(flows) != len(want) {
			t.Fatalf("expected %d flows, got %+v", len(want), flows)
		}
		for i, f := range flows {
			testutil.AssertFloat(t, f.Amount, want[i], 1e-9)
		}
	})

	t.Run("withdrawal_lowers_rate", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db)
		testutil.CreateTestCashFlow(t, db, account.ID, models.TransactionTypeDeposit, start, 1000)
		testutil.CreateTestBuy(t, db, account.ID, testutil.Date(2023, 1, 2), "AAPL", 10, 100, 0)
		testutil.CreateTestCashFlow(t, db, account.ID, models.TransactionTypeWithdraw, testutil.Date(2023, 7, 1), 200)

		flows, err := returns.IRRFlows(account.ID, start, end)
		testutil.AssertNoError(t, err)
		want := []float64{-1000, -200, 1100}
		if len(flows) != len(want) {
			t.Fatalf("expected %d flows, got %+v", len(want), flows)
		}
		for i, f := range flows {
			testutil.AssertFloat(t, f.Amount, want[i], 1e-9)
		}

		rate, err := returns.IRR(account.ID, start, end)
		testutil.AssertNoError(t, err)
		if rate == nil {
			t.Fatal("expected a rate")
		}
		testutil.AssertFloat(t, *rate, -0.0907, 1e-3)
	})

	t.Run("single_flow_is_undefined", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db)
		testutil.CreateTestCashFlow(t, db, account.ID, models.TransactionTypeDeposit, start, 1000)

		rate, err := returns.IRR(account.ID, start, end)
		testutil.AssertNoError(t, err)
		if rate != nil {
			t.Errorf("expected nil, got %v", *rate)
		}
	})

	t.Run("history_length", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db)
		history, err := returns.IRRHistory(account.ID, start, testutil.Date(2023, 1, 4))
		testutil.AssertNoError(t, err)
		if len(history) != 4 {
			t.Fatalf("expected 4 points, got %d", len(history))
		}
		for _, p := range history {
			if p.Value != nil {
				t.Errorf("%v: expected nil for an empty account", p.Date)
			}
		}
	})
}

func TestReturns_TWRR(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	engine := newEngine(db)
	returns := performance.NewReturns(engine, performance.NewGains(engine, nil), nil)

	start, mid, end := testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 15), testutil.Date(2024, 1, 31)
	testutil.CreateTestPrice(t, db, "VTI", start, 100)
	testutil.CreateTestPrice(t, db, "VTI", mid, 110)
	testutil.CreateTestPrice(t, db, "VTI", end, 120)

	t.Run("no_flows_equals_simple_return", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db)
		testutil.CreateTestBuy(t, db, account.ID, start, "VTI", 10, 100, 0)

		twrr, err := returns.TWRR(account.ID, start, end)
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, twrr, 0.2, 1e-12)
	})

	t.Run("chains_sub_periods", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db)
		testutil.CreateTestBuy(t, db, account.ID, start, "VTI", 10, 100, 0)
		testutil.CreateTestCashFlow(t, db, account.ID, models.TransactionTypeDeposit, mid, 500)

		twrr, err := returns.TWRR(account.ID, start, end)
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, twrr, 1.1*(1200.0/1100)-1, 1e-12)
	})

	t.Run("empty_portfolio", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db)

		twrr, err := returns.TWRR(account.ID, start, end)
		testutil.AssertNoError(t, err)
		if twrr != 0 {
			t.Errorf("expected 0, got %v", twrr)
		}
	})

	t.Run("history", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db)
		testutil.CreateTestBuy(t, db, account.ID, start, "VTI", 10, 100, 0)

		history, err := returns.TWRRHistory(account.ID, start, mid)
		testutil.AssertNoError(t, err)
		if len(history) != 15 {
			t.Fatalf("expected 15 points, got %d", len(history))
		}
		testutil.AssertFloat(t, history[len(history)-1].Value, 0.1, 1e-12)
	})

	t.Run("invalid_range", func(t *testing.T) {
		_, err := returns.TWRR(1, end, start)
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})
}
