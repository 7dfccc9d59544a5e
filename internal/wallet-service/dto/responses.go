package dto

import "github.com/radieske/fantasy-sportsbook/internal/shared/ledger"

type WalletResponse struct {
	UserID       string `json:"user_id"`
	BalanceCents int64  `json:"balance_cents"`
}

type TransactionsResponse struct {
	UserID       string         `json:"user_id"`
	Transactions []ledger.Entry `json:"transactions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
