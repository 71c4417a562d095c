package payout

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Provider sends money to a bank account.
//
// Errors are classified:
//   - errors.ErrProviderDefinite: the provider rejected the transfer, no money moved
//   - errors.ErrProviderAmbiguous: the outcome is unknown (timeout, 5xx, unreadable response)
type Provider interface {
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}

type TransferRequest struct {
	AccountNumber string
	AccountName   string
	BankCode      string
	Amount        decimal.Decimal
	Reference     string
}

type TransferResult struct {
	ProviderReference string
	Message           string
	Data              map[string]interface{}
}

type transferPayload struct {
	AccountNumber string      `json:"account_number"`
	AccountName   string      `json:"account_name"`
	BankCode      string      `json:"bank_code"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	SenderName    string      `json:"sender_name"`
	Narration     string      `json:"narration"`
	Reference     string      `json:"reference"`
}

type providerResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}
