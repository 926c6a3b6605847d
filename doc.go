// Package gxledger reconstructs a complete, date-ordered ledger of security
// holdings and cash balances for a multi-sub-account brokerage relationship,
// by replaying the broker's raw settlement-transaction log from a known
// initial position.
//
// The engine applies type-specific sign rules to each transaction's quantity,
// amount and bank-flow effects, resolves same-day pledge/transfer pairs that
// are not economic trades, tracks per-security cost basis, realizes profit
// when a position closes at zero quantity, and cross-checks its computed cash
// balances against the balance values stamped on the source rows.
package gxledger
