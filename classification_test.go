package gxledger

import (
	"errors"
	"strings"
	"testing"
)

func TestLookupKnownLabels(t *testing.T) {
	table := DefaultTable(SubscriptionFrozen)

	rule, err := table.Lookup("证券卖出")
	if err != nil {
		t.Fatalf("Lookup(证券卖出) error = %v", err)
	}
	if rule.QuantitySign != -1 || rule.AmountSign != 1 || rule.BankFlowSign != 0 {
		t.Errorf("证券卖出 signs = (%d,%d,%d), want (-1,1,0)", rule.QuantitySign, rule.AmountSign, rule.BankFlowSign)
	}

	rule, err = table.Lookup("融资借款")
	if err != nil {
		t.Fatalf("Lookup(融资借款) error = %v", err)
	}
	if rule.QuantitySign != 0 || rule.AmountSign != 1 || rule.BankFlowSign != 1 {
		t.Errorf("融资借款 signs = (%d,%d,%d), want (0,1,1)", rule.QuantitySign, rule.AmountSign, rule.BankFlowSign)
	}
	if !rule.MarginLoan || !rule.CostSuppressed() {
		t.Errorf("融资借款 must be a cost-suppressed margin-loan flow")
	}

	// Financing interest stays inside the account: no bank flow.
	rule, err = table.Lookup("融资利息")
	if err != nil {
		t.Fatalf("Lookup(融资利息) error = %v", err)
	}
	if rule.BankFlowSign != 0 {
		t.Errorf("融资利息 BankFlowSign = %d, want 0", rule.BankFlowSign)
	}
}

func TestLookupUnknownLabelFails(t *testing.T) {
	table := DefaultTable(SubscriptionFrozen)
	_, err := table.Lookup("从未见过的摘要")
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("Lookup(unknown) error = %v, want ErrUnknownType", err)
	}
}

func TestSubscriptionModes(t *testing.T) {
	frozen := DefaultTable(SubscriptionFrozen)
	rule, err := frozen.Lookup(LabelSubscription)
	if err != nil {
		t.Fatal(err)
	}
	if rule.AmountSign != 0 || !rule.FrozenFunds {
		t.Errorf("frozen-mode 新股申购 = %+v, want zero amount effect and frozen flag", rule)
	}

	cash := DefaultTable(SubscriptionCash)
	rule, err = cash.Lookup(LabelSubscription)
	if err != nil {
		t.Fatal(err)
	}
	if rule.AmountSign != 1 {
		t.Errorf("cash-mode 新股申购 AmountSign = %d, want 1", rule.AmountSign)
	}
}

func TestValidateReportsEveryUnknown(t *testing.T) {
	table := DefaultTable(SubscriptionFrozen)

	if err := table.Validate([]string{"证券买入", "证券卖出", "红利入账"}); err != nil {
		t.Fatalf("Validate(known labels) error = %v", err)
	}

	err := table.Validate([]string{"证券买入", "神秘摘要甲", "神秘摘要乙", "神秘摘要甲"})
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("Validate error = %v, want ErrUnknownType", err)
	}
	// Both unknowns must be named, once each.
	msg := err.Error()
	for _, label := range []string{"神秘摘要甲", "神秘摘要乙"} {
		if strings.Count(msg, label) != 1 {
			t.Errorf("Validate error %q must name %q exactly once", msg, label)
		}
	}
}

func TestResolveAccountType(t *testing.T) {
	if got := ResolveAccountType("人民币", "是"); got != AccountMargin {
		t.Errorf("margin flag wins: got %s", got)
	}
	if got := ResolveAccountType("人民币", "否"); got != AccountCash {
		t.Errorf("人民币 non-margin: got %s", got)
	}
	if got := ResolveAccountType("美元", ""); got != AccountBShare {
		t.Errorf("foreign currency: got %s", got)
	}
}
