package store

// Schema creates the three history tables. Amounts and quantities are stored
// as decimal strings to keep them exact; dates are ISO strings so that
// lexical order is date order.
const Schema = `
CREATE TABLE IF NOT EXISTS balances (
	date TEXT NOT NULL,
	account TEXT NOT NULL,
	currency TEXT NOT NULL,
	cash TEXT NOT NULL,
	net_transfer TEXT NOT NULL,
	recorded TEXT NOT NULL,
	diff TEXT NOT NULL,
	margin_loan TEXT NOT NULL,
	frozen TEXT NOT NULL,
	PRIMARY KEY (date, account)
);

CREATE TABLE IF NOT EXISTS holdings (
	date TEXT NOT NULL,
	account TEXT NOT NULL,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	currency TEXT NOT NULL,
	quantity TEXT NOT NULL,
	cost TEXT NOT NULL,
	PRIMARY KEY (date, account, code)
);

CREATE TABLE IF NOT EXISTS profits (
	date TEXT NOT NULL,
	account TEXT NOT NULL,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	currency TEXT NOT NULL,
	quantity TEXT NOT NULL,
	profit TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_balances_date ON balances(date);
CREATE INDEX IF NOT EXISTS idx_holdings_date ON holdings(date);
CREATE INDEX IF NOT EXISTS idx_profits_date ON profits(date);
`
