package store

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/luoqi/gxledger"
)

// ExportCSV writes the history as three spreadsheet-friendly files in dir:
// balances.csv, holdings.csv and profits.csv. Existing files are replaced.
func ExportCSV(dir string, h *gxledger.History) error {
	if err := exportBalances(filepath.Join(dir, "balances.csv"), h.Balances); err != nil {
		return err
	}
	if err := exportHoldings(filepath.Join(dir, "holdings.csv"), h.Holdings); err != nil {
		return err
	}
	return exportProfits(filepath.Join(dir, "profits.csv"), h.Profits)
}

func exportBalances(path string, balances []gxledger.Balance) error {
	return writeCSV(path,
		[]string{"date", "account", "currency", "cash", "net_transfer", "recorded", "diff", "margin_loan", "frozen"},
		len(balances),
		func(i int) []string {
			b := balances[i]
			return []string{
				b.Date.String(),
				string(b.Account),
				b.Cash.Currency(),
				b.Cash.Decimal().String(),
				b.NetTransfer.Decimal().String(),
				b.Recorded.Decimal().String(),
				b.Diff.Decimal().String(),
				b.MarginLoan.Decimal().String(),
				b.Frozen.Decimal().String(),
			}
		})
}

func exportHoldings(path string, holdings []gxledger.Position) error {
	return writeCSV(path,
		[]string{"date", "account", "code", "name", "currency", "quantity", "cost"},
		len(holdings),
		func(i int) []string {
			p := holdings[i]
			return []string{
				p.Date.String(),
				string(p.Account),
				p.Code,
				p.Name,
				p.Cost.Currency(),
				p.Quantity.Decimal().String(),
				p.Cost.Decimal().String(),
			}
		})
}

func exportProfits(path string, profits []gxledger.RealizedProfitRecord) error {
	return writeCSV(path,
		[]string{"date", "account", "code", "name", "currency", "quantity", "profit"},
		len(profits),
		func(i int) []string {
			r := profits[i]
			return []string{
				r.Date.String(),
				string(r.Account),
				r.Code,
				r.Name,
				r.Profit.Currency(),
				r.Quantity.Decimal().String(),
				r.Profit.Decimal().String(),
			}
		})
}

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
