package gxledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ErrUnparsableSecurity reports a free-text security field from which no
// (name, code) pair could be extracted.
var ErrUnparsableSecurity = errors.New("unparsable security field")

// TransactionRecord is one executed cash or security movement from the
// broker's settlement log. It is immutable: the replay engine reads it, never
// writes it.
type TransactionRecord struct {
	Date          Date        // settlement date, not trade date
	Currency      string      // source currency label (人民币, 美元, 港币)
	Label         string      // transaction type label driving classification
	Amount        Money       // signed source amount, before classification
	Quantity      Quantity    // unsigned magnitude
	Code          string      // security code split out of the free-text field
	Name          string      // security name split out of the free-text field
	Account       AccountType // resolved sub-account
	StatedBalance Money       // balance value stamped on the row by the broker
}

// SplitSecurity splits the broker's combined free-text security cell into
// (name, code). The source mixes a security's human name and its code in one
// cell with inconsistent separators; this heuristic must be reproduced
// exactly for historical data to parse identically.
//
// In priority order: a leading sign character followed by digits is a bare
// code (zero-padded to 6); two whitespace tokens are (name, code); a single
// all-digit token has no name; with more tokens the last one is the code and
// the rest, space-joined, are the name.
func SplitSecurity(field string) (name, code string, err error) {
	if strings.HasPrefix(field, "-") && isDigits(field[1:]) {
		num := field[1:]
		if len(num) < 6 {
			num = strings.Repeat("0", 6-len(num)) + num
		}
		return field[:1], num, nil
	}

	parts := strings.Fields(field)
	switch {
	case len(parts) == 2:
		return parts[0], parts[1], nil
	case len(parts) == 1 && isDigits(parts[0]):
		return parts[0], "-", nil
	case len(parts) >= 1: // the name itself contains spaces
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1], nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnparsableSecurity, field)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Settlement log column headers as exported by the broker portal.
const (
	colDate     = "交收日期"
	colCurrency = "货币代码"
	colLabel    = "摘要"
	colAmount   = "发生金额"
	colQuantity = "成交数量"
	colSecurity = "交易证券"
	colMargin   = "融资账户"
	colBalance  = "资金余额"
)

// ReadTransactions decodes a settlement log in the broker's CSV export
// format. The export is GBK-encoded; pass gbk=false for files already
// re-encoded as UTF-8. Rows keep their source order within a date, and the
// result is stable-sorted by settlement date.
func ReadTransactions(r io.Reader, gbk bool) ([]TransactionRecord, error) {
	if gbk {
		r = transform.NewReader(r, simplifiedchinese.GBK.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read settlement log header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, want := range []string{colDate, colCurrency, colLabel, colAmount, colQuantity, colSecurity, colMargin, colBalance} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("settlement log is missing column %q", want)
		}
	}

	var records []TransactionRecord
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read settlement log row: %w", err)
		}
		line++

		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("settlement log line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	// The pair detector relies on same-day row order, so the sort must be stable.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records, nil
}

func parseRow(row []string, cols map[string]int) (TransactionRecord, error) {
	field := func(name string) string { return strings.TrimSpace(row[cols[name]]) }

	on, err := ParseDate(field(colDate))
	if err != nil {
		return TransactionRecord{}, err
	}
	currency := field(colCurrency)
	amount, err := parseMoney(field(colAmount), currency)
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("bad amount: %w", err)
	}
	quantity, err := parseQuantity(field(colQuantity))
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("bad quantity: %w", err)
	}
	stated, err := parseMoney(field(colBalance), currency)
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("bad stated balance: %w", err)
	}
	name, code, err := SplitSecurity(field(colSecurity))
	if err != nil {
		return TransactionRecord{}, err
	}

	return TransactionRecord{
		Date:          on,
		Currency:      currency,
		Label:         field(colLabel),
		Amount:        amount,
		Quantity:      quantity.Abs(),
		Code:          code,
		Name:          name,
		Account:       ResolveAccountType(currency, field(colMargin)),
		StatedBalance: stated,
	}, nil
}

// CurrencyCode maps the broker's currency labels to ISO 4217 codes.
func CurrencyCode(label string) string {
	switch label {
	case "人民币":
		return "CNY"
	case "美元":
		return "USD"
	case "港币":
		return "HKD"
	default:
		return label
	}
}

func parseMoney(s, currency string) (Money, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	return M(d, CurrencyCode(currency)), nil
}

func parseQuantity(s string) (Quantity, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return Quantity{}, err
	}
	return Q(d), nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, ",", "") // portal exports use thousands separators
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// Labels returns the distinct type labels of a batch, in first-seen order.
// Feed it to [Table.Validate] before a replay run.
func Labels(records []TransactionRecord) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, rec := range records {
		if _, ok := seen[rec.Label]; ok {
			continue
		}
		seen[rec.Label] = struct{}{}
		labels = append(labels, rec.Label)
	}
	return labels
}
