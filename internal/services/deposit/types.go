package deposit

import (
	"github.com/shopspring/decimal"
)

// Event is the provider webhook body.
type Event struct {
	Event         string                 `json:"event"`
	Data          *EventData             `json:"data"`
	SenderDetails map[string]interface{} `json:"sender_details"`
}

type EventData struct {
	Reference     string                 `json:"reference"`
	Status        string                 `json:"status"`
	Amount        decimal.Decimal        `json:"amount"`
	Currency      string                 `json:"currency"`
	Channel       string                 `json:"channel"`
	CustomerInfo  *CustomerInfo          `json:"customerinfo"`
	SenderDetails map[string]interface{} `json:"sender_details"`
}

type CustomerInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Ack is the webhook response body.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const (
	EventTransaction = "transaction"
	StatusSuccess    = "success"
	ChannelBank      = "banktransfer"

	AckSuccess   = "success"
	AckDuplicate = "duplicate"
)

func ackSuccess() Ack   { return Ack{Success: true, Message: AckSuccess} }
func ackDuplicate() Ack { return Ack{Success: true, Message: AckDuplicate} }

// senderDetails prefers the top level block and falls back to the one nested
// under data.
func (e *Event) senderDetails() map[string]interface{} {
	if len(e.SenderDetails) > 0 {
		return e.SenderDetails
	}
	if e.Data != nil {
		return e.Data.SenderDetails
	}
	return nil
}

func senderName(details map[string]interface{}) string {
	if v, ok := details["sender_account_name"].(string); ok {
		return v
	}
	return ""
}
