package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/luoqi/gxledger"
)

// SQLite persists the replay history in a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// SaveHistory replaces the whole persisted history with h.
func (s *SQLite) SaveHistory(h *gxledger.History) error {
	return s.replaceAfter(h, gxledger.Date{})
}

// AppendHistory persists the rows of h dated strictly after the given date.
// Previously persisted rows after that date are replaced, so re-running an
// incremental replay is idempotent.
func (s *SQLite) AppendHistory(h *gxledger.History, after gxledger.Date) error {
	return s.replaceAfter(h, after)
}

func (s *SQLite) replaceAfter(h *gxledger.History, after gxledger.Date) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cut := after.String()
	if after.IsZero() {
		cut = ""
	}
	for _, table := range []string{"balances", "holdings", "profits"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE date > ?", table), cut); err != nil {
			return err
		}
	}

	for _, b := range h.Balances {
		if !b.Date.After(after) {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO balances
			(date, account, currency, cash, net_transfer, recorded, diff, margin_loan, frozen)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.Date.String(), string(b.Account), b.Cash.Currency(),
			b.Cash.Decimal().String(), b.NetTransfer.Decimal().String(),
			b.Recorded.Decimal().String(), b.Diff.Decimal().String(),
			b.MarginLoan.Decimal().String(), b.Frozen.Decimal().String(),
		)
		if err != nil {
			return err
		}
	}
	for _, p := range h.Holdings {
		if !p.Date.After(after) {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO holdings
			(date, account, code, name, currency, quantity, cost)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Date.String(), string(p.Account), p.Code, p.Name,
			p.Cost.Currency(), p.Quantity.Decimal().String(), p.Cost.Decimal().String(),
		)
		if err != nil {
			return err
		}
	}
	for _, r := range h.Profits {
		if !r.Date.After(after) {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO profits
			(date, account, code, name, currency, quantity, profit)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.Date.String(), string(r.Account), r.Code, r.Name,
			r.Profit.Currency(), r.Quantity.Decimal().String(), r.Profit.Decimal().String(),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LatestDate returns the most recent settled date in the store.
func (s *SQLite) LatestDate() (gxledger.Date, error) {
	var latest sql.NullString
	if err := s.db.QueryRow(`SELECT MAX(date) FROM balances`).Scan(&latest); err != nil {
		return gxledger.Date{}, err
	}
	if !latest.Valid {
		return gxledger.Date{}, ErrNoHistory
	}
	return gxledger.ParseDate(latest.String)
}

// LoadSnapshot returns the holdings and balance rows persisted for one date.
func (s *SQLite) LoadSnapshot(on gxledger.Date) ([]gxledger.Position, []gxledger.Balance, error) {
	positions, err := s.queryHoldings(`SELECT date, account, code, name, currency, quantity, cost FROM holdings WHERE date = ? ORDER BY account, code`, on.String())
	if err != nil {
		return nil, nil, err
	}
	balances, err := s.queryBalances(`SELECT date, account, currency, cash, net_transfer, recorded, diff, margin_loan, frozen FROM balances WHERE date = ? ORDER BY account`, on.String())
	if err != nil {
		return nil, nil, err
	}
	if len(balances) == 0 {
		return nil, nil, fmt.Errorf("no snapshot for %s: %w", on, ErrNoHistory)
	}
	return positions, balances, nil
}

// LoadHistory reloads the whole persisted history in date order.
func (s *SQLite) LoadHistory() (*gxledger.History, error) {
	h := &gxledger.History{}
	var err error
	h.Holdings, err = s.queryHoldings(`SELECT date, account, code, name, currency, quantity, cost FROM holdings ORDER BY date, account, code`)
	if err != nil {
		return nil, err
	}
	h.Balances, err = s.queryBalances(`SELECT date, account, currency, cash, net_transfer, recorded, diff, margin_loan, frozen FROM balances ORDER BY date, account`)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT date, account, code, name, currency, quantity, profit FROM profits ORDER BY date, account, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var date, account, code, name, currency, quantity, profit string
		if err := rows.Scan(&date, &account, &code, &name, &currency, &quantity, &profit); err != nil {
			return nil, err
		}
		rec := gxledger.RealizedProfitRecord{Account: gxledger.AccountType(account), Code: code, Name: name}
		if rec.Date, err = gxledger.ParseDate(date); err != nil {
			return nil, err
		}
		if rec.Quantity, err = parseQuantity(quantity); err != nil {
			return nil, err
		}
		if rec.Profit, err = parseMoney(profit, currency); err != nil {
			return nil, err
		}
		h.Profits = append(h.Profits, rec)
	}
	return h, rows.Err()
}

func (s *SQLite) queryHoldings(query string, args ...any) ([]gxledger.Position, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gxledger.Position
	for rows.Next() {
		var date, account, code, name, currency, quantity, cost string
		if err := rows.Scan(&date, &account, &code, &name, &currency, &quantity, &cost); err != nil {
			return nil, err
		}
		pos := gxledger.Position{Account: gxledger.AccountType(account), Code: code, Name: name}
		if pos.Date, err = gxledger.ParseDate(date); err != nil {
			return nil, err
		}
		if pos.Quantity, err = parseQuantity(quantity); err != nil {
			return nil, err
		}
		if pos.Cost, err = parseMoney(cost, currency); err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, rows.Err()
}

func (s *SQLite) queryBalances(query string, args ...any) ([]gxledger.Balance, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gxledger.Balance
	for rows.Next() {
		var date, account, currency string
		var cols [6]string
		if err := rows.Scan(&date, &account, &currency, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5]); err != nil {
			return nil, err
		}
		bal := gxledger.Balance{Account: gxledger.AccountType(account)}
		if bal.Date, err = gxledger.ParseDate(date); err != nil {
			return nil, err
		}
		fields := []*gxledger.Money{&bal.Cash, &bal.NetTransfer, &bal.Recorded, &bal.Diff, &bal.MarginLoan, &bal.Frozen}
		for i, field := range fields {
			if *field, err = parseMoney(cols[i], currency); err != nil {
				return nil, err
			}
		}
		out = append(out, bal)
	}
	return out, rows.Err()
}

func parseMoney(value, currency string) (gxledger.Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return gxledger.Money{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return gxledger.M(d, currency), nil
}

func parseQuantity(value string) (gxledger.Quantity, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return gxledger.Quantity{}, fmt.Errorf("invalid quantity %q: %w", value, err)
	}
	return gxledger.Q(d), nil
}
