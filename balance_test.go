package gxledger

import "testing"

func seedCash(l *BalanceLedger, cash float64) {
	l.Seed(Balance{
		Date:        MustParseDate("20070507"),
		Account:     AccountCash,
		Cash:        M(cash, "CNY"),
		NetTransfer: M(300000.0, "CNY"),
		Recorded:    M(0, "CNY"),
		Diff:        M(0, "CNY"),
		MarginLoan:  M(0, "CNY"),
		Frozen:      M(0, "CNY"),
	})
}

func TestApplyMovesEveryBalanceIndependently(t *testing.T) {
	ledger := NewBalanceLedger()
	seedCash(ledger, 1000)
	on := MustParseDate("20070508")

	// A margin-loan draw: cash and bank flow move, and so does the loan balance.
	ledger.Apply(on, AccountCash, M(50000.0, "CNY"), M(50000.0, "CNY"), true, false)
	bal, _ := ledger.Get(AccountCash)
	if !bal.Cash.Equal(M(51000.0, "CNY")) {
		t.Errorf("Cash = %v, want 51000", bal.Cash)
	}
	if !bal.NetTransfer.Equal(M(350000.0, "CNY")) {
		t.Errorf("NetTransfer = %v, want 350000", bal.NetTransfer)
	}
	if !bal.MarginLoan.Equal(M(50000.0, "CNY")) {
		t.Errorf("MarginLoan = %v, want 50000", bal.MarginLoan)
	}

	// A plain sell: only cash moves.
	ledger.Apply(on, AccountCash, M(1000.0, "CNY"), M(0, "CNY"), false, false)
	if !bal.Cash.Equal(M(52000.0, "CNY")) || !bal.NetTransfer.Equal(M(350000.0, "CNY")) {
		t.Errorf("after sell: cash=%v transfer=%v", bal.Cash, bal.NetTransfer)
	}

	// A frozen-funds event moves the frozen balance.
	ledger.Apply(on, AccountCash, M(-8000.0, "CNY"), M(0, "CNY"), false, true)
	if !bal.Frozen.Equal(M(-8000.0, "CNY")) {
		t.Errorf("Frozen = %v, want -8000", bal.Frozen)
	}
}

func TestReconcilePicksClosestValue(t *testing.T) {
	ledger := NewBalanceLedger()
	seedCash(ledger, 155046.37)

	ledger.Reconcile(AccountCash, []Money{
		M(120000.0, "CNY"),
		M(155046.40, "CNY"),
		M(200000.0, "CNY"),
	})
	bal, _ := ledger.Get(AccountCash)
	if !bal.Recorded.Equal(M(155046.40, "CNY")) {
		t.Errorf("Recorded = %v, want 155046.40", bal.Recorded)
	}
	if !bal.Diff.Equal(M(-0.03, "CNY")) {
		t.Errorf("Diff = %v, want -0.03", bal.Diff)
	}
}

func TestReconcileTieKeepsFirstSeen(t *testing.T) {
	ledger := NewBalanceLedger()
	seedCash(ledger, 100)

	// 99 and 101 are equally close; the first seen wins.
	ledger.Reconcile(AccountCash, []Money{M(99.0, "CNY"), M(101.0, "CNY")})
	bal, _ := ledger.Get(AccountCash)
	if !bal.Recorded.Equal(M(99.0, "CNY")) {
		t.Errorf("Recorded = %v, want first-seen 99", bal.Recorded)
	}
}

func TestReconcileSkipsEmptyDay(t *testing.T) {
	ledger := NewBalanceLedger()
	seedCash(ledger, 100)

	ledger.Reconcile(AccountCash, nil)
	bal, _ := ledger.Get(AccountCash)
	if !bal.Recorded.IsZero() || !bal.Diff.IsZero() {
		t.Errorf("reconciliation without recorded values must make no claim: %+v", bal)
	}
}

func TestFlushNoise(t *testing.T) {
	ledger := NewBalanceLedger()
	seedCash(ledger, 100)
	bal, _ := ledger.Get(AccountCash)
	bal.Diff = M(0.004, "CNY")
	bal.MarginLoan = M(-0.009, "CNY")

	ledger.FlushNoise()
	if !bal.Diff.IsZero() || !bal.MarginLoan.IsZero() {
		t.Errorf("sub-epsilon values must flush to zero: diff=%v loan=%v", bal.Diff, bal.MarginLoan)
	}

	bal.Diff = M(0.02, "CNY")
	ledger.FlushNoise()
	if bal.Diff.IsZero() {
		t.Error("a real discrepancy must survive FlushNoise")
	}
}
