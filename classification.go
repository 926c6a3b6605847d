package gxledger

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownType reports a transaction type label that has no classification
// rule. It always means the table is out of date with new source data, so it
// is fatal: a label is never silently treated as a zero-effect transaction.
var ErrUnknownType = errors.New("unknown transaction type")

// AccountType identifies one of the sub-accounts of the brokerage relationship.
type AccountType string

const (
	// AccountCash is the nominal RMB cash account.
	AccountCash AccountType = "国信账户"
	// AccountMargin is the financing (collateral) sub-account.
	AccountMargin AccountType = "国信融资账户"
	// AccountBShare is the foreign-currency B-share sub-account.
	AccountBShare AccountType = "国信B股"
)

// ResolveAccountType maps a row's currency label and margin-account flag to
// the sub-account it belongs to. The broker stamps the margin flag as "是".
func ResolveAccountType(currency, marginFlag string) AccountType {
	switch {
	case marginFlag == "是":
		return AccountMargin
	case currency == "人民币":
		return AccountCash
	default:
		return AccountBShare
	}
}

// Transaction type labels with special handling in the replay engine.
const (
	LabelCollateralIn  = "担保品划入" // collateral pledged into the margin account
	LabelCollateralOut = "担保品划出" // collateral released back to the cash account
	LabelShareIn       = "股份转入"  // share transfer in
	LabelShareOut      = "股份转出"  // share transfer out
	LabelSubscription  = "新股申购"  // new-share subscription (funds frozen, not spent)
	LabelSubRefund     = "申购还款"  // subscription refund when no shares are allotted
)

// Rule classifies one transaction type label. The three signs independently
// control whether a row affects position quantity, account cash balance, and
// cumulative external bank transfer. A margin-loan draw, for instance, moves
// cash and counts as a bank-like flow but buys nothing.
type Rule struct {
	QuantitySign int  // effect on position quantity: -1, 0 or +1
	AmountSign   int  // effect on account cash balance
	BankFlowSign int  // effect on cumulative net external transfer
	MarginLoan   bool // counts into the financing loan balance
	FrozenFunds  bool // counts into the frozen-funds balance
}

// CostSuppressed reports whether the row's amount must be excluded from cost
// basis. Financing and freeze flows carry an amount but no genuine price.
func (r Rule) CostSuppressed() bool { return r.MarginLoan || r.FrozenFunds }

// SubscriptionMode selects how new-share subscriptions (新股申购/申购还款) are
// classified. The broker's own statements are ambiguous on whether the order
// amount is real spending at order time or only frozen until allotment.
type SubscriptionMode int

const (
	// SubscriptionFrozen treats the subscription as a temporary freeze: no
	// quantity, no cash effect until the allotment row (申购中签) arrives.
	SubscriptionFrozen SubscriptionMode = iota
	// SubscriptionCash treats the subscription amount as a real cash outflow
	// at order time, refunded by 申购还款.
	SubscriptionCash
)

// Table is the closed, hand-curated classification of every transaction type
// label the settlement log is known to contain.
type Table struct {
	rules map[string]Rule
}

// Lookup resolves a label to its rule. An unresolved label is a data error,
// never a silent default.
func (t *Table) Lookup(label string) (Rule, error) {
	rule, ok := t.rules[label]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownType, label)
	}
	return rule, nil
}

// Known reports whether the label has a classification rule.
func (t *Table) Known(label string) bool {
	_, ok := t.rules[label]
	return ok
}

// Validate checks every distinct label of an input batch against the table
// and returns one joined error naming each unknown label.
func (t *Table) Validate(labels []string) error {
	seen := make(map[string]struct{})
	var unknown []string
	for _, label := range labels {
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		if !t.Known(label) {
			unknown = append(unknown, label)
		}
	}
	sort.Strings(unknown)
	var errs error
	for _, label := range unknown {
		errs = errors.Join(errs, fmt.Errorf("%w: %q", ErrUnknownType, label))
	}
	return errs
}

// DefaultTable returns the classification of the Guoxin settlement log.
// Amount signs are almost always +1 because the source stamps the amount with
// its own sign; quantity signs apply to the unsigned quantity magnitude.
func DefaultTable(mode SubscriptionMode) *Table {
	rules := map[string]Rule{
		"Tn证券买入":    {QuantitySign: 1, AmountSign: 1},
		"Tn证券卖出":    {QuantitySign: -1, AmountSign: 1},
		"三方券商签约划入":  {QuantitySign: 1, AmountSign: 1},
		"三方券商签约划出":  {QuantitySign: 1, AmountSign: 1},
		"三方券商解约划入":  {QuantitySign: 1, AmountSign: 1},
		"三方券商解约划出":  {QuantitySign: 1, AmountSign: 1},
		"三方银行签约划入":  {QuantitySign: 1, AmountSign: 1},
		"三方银行签约划出":  {QuantitySign: 1, AmountSign: 1},
		"专项融券回购(日)": {QuantitySign: 1, AmountSign: 1},
		"专项融券回购续约":  {QuantitySign: 1, AmountSign: 1},
		"专项融券购回(日)": {QuantitySign: -1, AmountSign: 1},
		"中签缴款":      {QuantitySign: 1, AmountSign: 1},
		"保证金理财赎回":   {QuantitySign: -1, AmountSign: 1},
		"利息归本":      {QuantitySign: -1, AmountSign: 1},
		"利息税代扣":     {QuantitySign: 1, AmountSign: 1},
		"基金申购拨出":    {QuantitySign: 1, AmountSign: 1},
		"分级基金上折":    {QuantitySign: 1, AmountSign: 1}, // manual record for a structured fund restructuring
		"开放基金拆分减股":  {QuantitySign: -1, AmountSign: 1},
		"开放基金拆分增股":  {QuantitySign: 1, AmountSign: 1},
		"手续费多退少补取":  {QuantitySign: 1, AmountSign: 1},
		"投票确认":      {QuantitySign: 0, AmountSign: 1},
		// Pledge/transfer labels: when paired on the same day and code, the
		// inbound leg is ignored and the outbound leg moves quantity and cost.
		LabelCollateralIn:  {QuantitySign: 1, AmountSign: 1},
		LabelCollateralOut: {QuantitySign: -1, AmountSign: 1},
		LabelShareIn:       {QuantitySign: 1, AmountSign: 1},
		LabelShareOut:      {QuantitySign: -1, AmountSign: 1},
		"新股入帐":   {QuantitySign: 1, AmountSign: 1},
		"港股通组合费": {QuantitySign: 1, AmountSign: 1},
		"港股通股票买入": {QuantitySign: 1, AmountSign: 1},
		"港股通股票卖出": {QuantitySign: -1, AmountSign: 1},
		"申购中签":   {QuantitySign: 0, AmountSign: 1},
		"红利入帐0":  {QuantitySign: 0, AmountSign: 1},
		"红利入账":   {QuantitySign: 0, AmountSign: 1},
		"红利税补扣":  {QuantitySign: 0, AmountSign: 1},
		"红股入账":   {QuantitySign: 1, AmountSign: 1},
		// Financing principal flows: cash moves, loan balance moves, but no
		// security is priced.
		"自有资金还融资": {QuantitySign: 0, AmountSign: 1, BankFlowSign: 1, MarginLoan: true},
		"融入方初始交易": {QuantitySign: 0, AmountSign: 1, BankFlowSign: 1, MarginLoan: true},
		"融入购回减资金": {QuantitySign: 0, AmountSign: 1, BankFlowSign: 1, MarginLoan: true},
		"融券回购":    {QuantitySign: 1, AmountSign: 1},
		"融券购回":    {QuantitySign: -1, AmountSign: 1},
		"融资借款":    {QuantitySign: 0, AmountSign: 1, BankFlowSign: 1, MarginLoan: true},
		// Financing interest is consumed inside the account, not a bank flow
		// and not principal.
		"融资利息":    {QuantitySign: 1, AmountSign: 1, BankFlowSign: 0},
		"融资平仓":    {QuantitySign: -1, AmountSign: 1},
		"融资开仓":    {QuantitySign: 1, AmountSign: 1},
		"融资还款":    {QuantitySign: 0, AmountSign: 1, BankFlowSign: 1, MarginLoan: true},
		"要约资金":    {QuantitySign: -1, AmountSign: 1}, // tender-offer sale proceeds
		"证券买入":    {QuantitySign: 1, AmountSign: 1},
		"证券卖出":    {QuantitySign: -1, AmountSign: 1},
		"证券转银行":   {QuantitySign: 1, AmountSign: 1, BankFlowSign: 1},
		"资金冻结":    {QuantitySign: -1, AmountSign: 0, FrozenFunds: true},
		"资金自动还融资": {QuantitySign: 0, AmountSign: 1, BankFlowSign: 1, MarginLoan: true},
		"银行转证券":   {QuantitySign: -1, AmountSign: 1, BankFlowSign: 1},
	}

	switch mode {
	case SubscriptionCash:
		rules[LabelSubscription] = Rule{QuantitySign: 0, AmountSign: 1, FrozenFunds: true}
		rules[LabelSubRefund] = Rule{QuantitySign: 0, AmountSign: 1, FrozenFunds: true}
	default:
		// A subscription only freezes funds; money actually leaves on 申购中签.
		rules[LabelSubscription] = Rule{QuantitySign: 0, AmountSign: 0, FrozenFunds: true}
		rules[LabelSubRefund] = Rule{QuantitySign: 0, AmountSign: 0, FrozenFunds: true}
	}

	return &Table{rules: rules}
}

// Labels returns every label in the table, sorted, for documentation and tests.
func (t *Table) Labels() []string {
	labels := make([]string, 0, len(t.rules))
	for label := range t.rules {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
