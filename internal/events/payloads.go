package events

type WithdrawalPayload struct {
	WithdrawalID uint   `json:"withdrawal_id"`
	UserID       uint   `json:"user_id"`
	Reference    string `json:"reference"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
}

type DepositPayload struct {
	DepositID  uint   `json:"deposit_id"`
	UserID     uint   `json:"user_id"`
	WalletID   uint   `json:"wallet_id"`
	Reference  string `json:"reference"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	NewBalance string `json:"new_balance"`
}

type InterestPayload struct {
	SavingID      uint   `json:"saving_id"`
	UserID        uint   `json:"user_id"`
	AccrualPeriod string `json:"accrual_period"`
	Amount        string `json:"amount"`
	Frequency     string `json:"frequency"`
}

type SavingMaturedPayload struct {
	SavingID uint   `json:"saving_id"`
	UserID   uint   `json:"user_id"`
	Amount   string `json:"amount"`
}
