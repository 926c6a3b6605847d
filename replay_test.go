package gxledger

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
)

// row builds one settlement-log record for engine tests.
func row(date string, account AccountType, label, code, name string, amount, quantity, stated float64) TransactionRecord {
	return TransactionRecord{
		Date:          MustParseDate(date),
		Currency:      "人民币",
		Label:         label,
		Amount:        M(amount, "CNY"),
		Quantity:      Q(quantity),
		Code:          code,
		Name:          name,
		Account:       account,
		StatedBalance: M(stated, "CNY"),
	}
}

func TestReplaySellDay(t *testing.T) {
	engine := NewEngine(DefaultTable(SubscriptionFrozen), DefaultOpeningState())

	history, diags, err := engine.Replay([]TransactionRecord{
		row("20070508", AccountCash, "证券卖出", "600161", "天坛生物", 110000.0, 5000, 155046.37),
	})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}

	on := MustParseDate("20070508")
	holdings := history.HoldingsOn(on)
	byCode := make(map[string]Position)
	for _, pos := range holdings {
		byCode[pos.Code] = pos
	}

	sold := byCode["600161"]
	if !sold.Quantity.Equal(Q(7000)) || !sold.Cost.Equal(M(135040.0, "CNY")) {
		t.Errorf("600161 = %v/%v, want 7000/135040", sold.Quantity, sold.Cost)
	}

	// Frame isolation: every untouched bootstrap position carries forward unchanged.
	untouched := byCode["600677"]
	if !untouched.Quantity.Equal(Q(18000)) || !untouched.Cost.Equal(M(588600.0, "CNY")) {
		t.Errorf("600677 = %v/%v, want 18000/588600", untouched.Quantity, untouched.Cost)
	}
	if len(holdings) != len(DefaultHoldings()) {
		t.Errorf("len(holdings) = %d, want %d", len(holdings), len(DefaultHoldings()))
	}

	// A single-transaction day is always exactly reconcilable.
	for _, bal := range history.BalancesOn(on) {
		if bal.Account != AccountCash {
			continue
		}
		if !bal.Cash.Equal(M(155046.37, "CNY")) {
			t.Errorf("Cash = %v, want 155046.37", bal.Cash)
		}
		if !bal.Recorded.Equal(M(155046.37, "CNY")) || !bal.Diff.IsZero() {
			t.Errorf("Recorded = %v Diff = %v, want exact reconciliation", bal.Recorded, bal.Diff)
		}
	}
}

func TestReplayUnknownLabelAborts(t *testing.T) {
	engine := NewEngine(DefaultTable(SubscriptionFrozen), DefaultOpeningState())
	_, _, err := engine.Replay([]TransactionRecord{
		row("20070508", AccountCash, "前所未见", "600161", "天坛生物", 1.0, 1, 0),
	})
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("Replay(unknown label) error = %v, want ErrUnknownType", err)
	}
}

func pairOpening() OpeningState {
	return NewOpeningState(MustParseDate("20140101"),
		[]InitialHolding{
			{Account: AccountCash, Code: "600036", Name: "招商银行", Quantity: Q(2000), UnitCost: M(20.0, "CNY")},
		},
		[]InitialBalance{
			{Account: AccountCash, NetTransfer: M(0, "CNY"), Cash: M(0, "CNY")},
			{Account: AccountMargin, NetTransfer: M(0, "CNY"), Cash: M(0, "CNY")},
		})
}

func TestReplayTransferPair(t *testing.T) {
	engine := NewEngine(DefaultTable(SubscriptionFrozen), pairOpening())

	history, diags, err := engine.Replay([]TransactionRecord{
		row("20140102", AccountMargin, LabelCollateralIn, "600036", "招商银行", 0, 1000, 0),
		row("20140102", AccountCash, LabelShareOut, "600036", "招商银行", 0, 1000, 0),
	})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}

	holdings := history.HoldingsOn(MustParseDate("20140102"))
	if len(holdings) != 2 {
		t.Fatalf("len(holdings) = %d, want 2", len(holdings))
	}
	for _, pos := range holdings {
		if !pos.Quantity.Equal(Q(1000)) || !pos.Cost.Equal(M(20000.0, "CNY")) {
			t.Errorf("%s = %v/%v, want 1000/20000", pos.Account, pos.Quantity, pos.Cost)
		}
	}
}

func TestReplayTransferPairReverse(t *testing.T) {
	// The mirror pair moves collateral back: shares leave the financing
	// account and reappear in the nominal one.
	opening := NewOpeningState(MustParseDate("20140101"),
		[]InitialHolding{
			{Account: AccountMargin, Code: "600036", Name: "招商银行", Quantity: Q(2000), UnitCost: M(20.0, "CNY")},
		},
		[]InitialBalance{
			{Account: AccountCash, NetTransfer: M(0, "CNY"), Cash: M(0, "CNY")},
			{Account: AccountMargin, NetTransfer: M(0, "CNY"), Cash: M(0, "CNY")},
		})
	engine := NewEngine(DefaultTable(SubscriptionFrozen), opening)

	history, diags, err := engine.Replay([]TransactionRecord{
		row("20140102", AccountCash, LabelShareIn, "600036", "招商银行", 0, 1000, 0),
		row("20140102", AccountMargin, LabelCollateralOut, "600036", "招商银行", 0, 1000, 0),
	})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}

	holdings := history.HoldingsOn(MustParseDate("20140102"))
	if len(holdings) != 2 {
		t.Fatalf("len(holdings) = %d, want 2", len(holdings))
	}
	for _, pos := range holdings {
		if !pos.Quantity.Equal(Q(1000)) || !pos.Cost.Equal(M(20000.0, "CNY")) {
			t.Errorf("%s = %v/%v, want 1000/20000", pos.Account, pos.Quantity, pos.Cost)
		}
	}
}

func TestReplayUnpairedShareTransferIsIgnored(t *testing.T) {
	engine := NewEngine(DefaultTable(SubscriptionFrozen), pairOpening())

	// A lone 股份转出 freezes the shares without moving them.
	history, _, err := engine.Replay([]TransactionRecord{
		row("20140102", AccountCash, LabelShareOut, "600036", "招商银行", 0, 1000, 0),
	})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	holdings := history.HoldingsOn(MustParseDate("20140102"))
	if len(holdings) != 1 {
		t.Fatalf("len(holdings) = %d, want 1", len(holdings))
	}
	if !holdings[0].Quantity.Equal(Q(2000)) {
		t.Errorf("quantity = %v, want unchanged 2000", holdings[0].Quantity)
	}
}

func TestReplayTransferPairMissingSourceIsWarning(t *testing.T) {
	opening := NewOpeningState(MustParseDate("20140101"), nil,
		[]InitialBalance{{Account: AccountCash, NetTransfer: M(0, "CNY"), Cash: M(0, "CNY")}})
	engine := NewEngine(DefaultTable(SubscriptionFrozen), opening)

	history, diags, err := engine.Replay([]TransactionRecord{
		row("20140102", AccountMargin, LabelCollateralIn, "600999", "招商证券", 0, 100, 0),
		row("20140102", AccountCash, LabelShareOut, "600999", "招商证券", 0, 100, 0),
	})
	if err != nil {
		t.Fatalf("a missing transfer source must not abort the replay: %v", err)
	}
	if len(diags) != 1 {
		t.Fatalf("diags = %v, want one warning", diags)
	}
	if diags[0].Code != "600999" {
		t.Errorf("diagnostic = %+v", diags[0])
	}
	if history.LastDate() != MustParseDate("20140102") {
		t.Errorf("history must still cover the warned date")
	}
}

func TestReplayCloseoutRealizesProfit(t *testing.T) {
	opening := NewOpeningState(MustParseDate("20140101"), nil,
		[]InitialBalance{{Account: AccountCash, NetTransfer: M(0, "CNY"), Cash: M(100000.0, "CNY")}})
	engine := NewEngine(DefaultTable(SubscriptionFrozen), opening)

	history, _, err := engine.Replay([]TransactionRecord{
		row("20140102", AccountCash, "证券买入", "600100", "同方股份", -10000.0, 1000, 90000.0),
		row("20140103", AccountCash, "证券卖出", "600100", "同方股份", 12000.0, 1000, 102000.0),
	})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	if len(history.Profits) != 1 {
		t.Fatalf("len(Profits) = %d, want 1", len(history.Profits))
	}
	profit := history.Profits[0]
	if profit.Code != "600100" || !profit.Profit.Equal(M(2000.0, "CNY")) {
		t.Errorf("profit = %+v, want 600100 / 2000", profit)
	}
	if profit.Date != MustParseDate("20140103") {
		t.Errorf("profit date = %s, want the closeout date", profit.Date)
	}

	// The position is absent from the live table on and after the closeout date.
	if holdings := history.HoldingsOn(MustParseDate("20140103")); len(holdings) != 0 {
		t.Errorf("holdings on closeout date = %v, want none", holdings)
	}
}

func TestReplayIncrementalMatchesFull(t *testing.T) {
	records := []TransactionRecord{
		row("20070508", AccountCash, "证券卖出", "600161", "天坛生物", 110000.0, 5000, 155046.37),
		row("20070510", AccountCash, "证券买入", "600677", "航天通信", -32700.0, 1000, 122346.37),
		row("20070511", AccountCash, "红利入账", "600161", "天坛生物", 1200.0, 0, 123546.37),
	}

	full := NewEngine(DefaultTable(SubscriptionFrozen), DefaultOpeningState())
	fullHistory, _, err := full.Replay(records)
	if err != nil {
		t.Fatalf("full Replay() error = %v", err)
	}

	// Replay the first day only, then resume from its persisted snapshot.
	head := NewEngine(DefaultTable(SubscriptionFrozen), DefaultOpeningState())
	headHistory, _, err := head.Replay(records[:1])
	if err != nil {
		t.Fatalf("head Replay() error = %v", err)
	}
	resumeOn := headHistory.LastDate()
	resumed := NewEngine(DefaultTable(SubscriptionFrozen),
		ResumeState(resumeOn, headHistory.HoldingsOn(resumeOn), headHistory.BalancesOn(resumeOn)))
	tailHistory, _, err := resumed.Replay(records)
	if err != nil {
		t.Fatalf("resumed Replay() error = %v", err)
	}

	final := MustParseDate("20070511")
	wantHoldings := fullHistory.HoldingsOn(final)
	gotHoldings := tailHistory.HoldingsOn(final)
	if len(wantHoldings) != len(gotHoldings) {
		t.Fatalf("holdings at %s: full %d rows, incremental %d rows", final, len(wantHoldings), len(gotHoldings))
	}
	for i := range wantHoldings {
		w, g := wantHoldings[i], gotHoldings[i]
		if w.Account != g.Account || w.Code != g.Code || !w.Quantity.Equal(g.Quantity) || !w.Cost.Equal(g.Cost) {
			t.Errorf("holdings mismatch: full %+v incremental %+v", w, g)
		}
	}

	wantBalances := fullHistory.BalancesOn(final)
	gotBalances := tailHistory.BalancesOn(final)
	if len(wantBalances) != len(gotBalances) {
		t.Fatalf("balances at %s: full %d rows, incremental %d rows", final, len(wantBalances), len(gotBalances))
	}
	for i := range wantBalances {
		w, g := wantBalances[i], gotBalances[i]
		if w.Account != g.Account || !w.Cash.Equal(g.Cash) || !w.NetTransfer.Equal(g.NetTransfer) {
			t.Errorf("balances mismatch: full %+v incremental %+v", w, g)
		}
	}
}

func TestReplaySkipsRowsOnOpeningDateWithWarning(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	engine := NewEngine(DefaultTable(SubscriptionFrozen), DefaultOpeningState())
	history, diags, err := engine.Replay([]TransactionRecord{
		row("20070507", AccountCash, "证券卖出", "600161", "天坛生物", 110000.0, 5000, 155046.37),
	})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}

	// A row dated on the opening date itself is covered by the opening
	// tables: it must not apply, but it must not vanish silently either.
	if !history.LastDate().IsZero() {
		t.Errorf("LastDate() = %s, want an empty history", history.LastDate())
	}
	if !strings.Contains(buf.String(), "on or before the opening date") {
		t.Errorf("log = %q, want a skipped-rows warning", buf.String())
	}
}

func TestReplayMarginLoanDay(t *testing.T) {
	opening := NewOpeningState(MustParseDate("20140101"), nil,
		[]InitialBalance{{Account: AccountMargin, NetTransfer: M(0, "CNY"), Cash: M(0, "CNY")}})
	engine := NewEngine(DefaultTable(SubscriptionFrozen), opening)

	history, _, err := engine.Replay([]TransactionRecord{
		row("20140102", AccountMargin, "融资借款", "-", "", 50000.0, 0, 50000.0),
	})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	balances := history.BalancesOn(MustParseDate("20140102"))
	if len(balances) != 1 {
		t.Fatalf("len(balances) = %d, want 1", len(balances))
	}
	bal := balances[0]
	if !bal.Cash.Equal(M(50000.0, "CNY")) || !bal.MarginLoan.Equal(M(50000.0, "CNY")) || !bal.NetTransfer.Equal(M(50000.0, "CNY")) {
		t.Errorf("loan day balance = %+v", bal)
	}
	// A loan draw buys nothing.
	if holdings := history.HoldingsOn(MustParseDate("20140102")); len(holdings) != 0 {
		t.Errorf("holdings = %v, want none", holdings)
	}
}
