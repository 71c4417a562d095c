package payout

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cashon/internal/config"
	apperrors "cashon/internal/errors"
	"cashon/internal/logger"
)

const transferPath = "/bank_transfer"

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 1 << 20

type Client struct {
	baseURL    string
	secretKey  string
	senderName string
	narration  string
	currency   string
	httpClient *http.Client
}

func NewClient(cfg config.PayoutConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "NGN"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:  cfg.SecretKey,
		senderName: cfg.SenderName,
		narration:  cfg.Narration,
		currency:   currency,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	payload, err := json.Marshal(transferPayload{
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		BankCode:      req.BankCode,
		Amount:        json.Number(req.Amount.StringFixed(2)),
		Currency:      c.currency,
		SenderName:    c.senderName,
		Narration:     c.narration,
		Reference:     req.Reference,
	})
	if err != nil {
		return nil, apperrors.ErrProviderDefinite.WithError(fmt.Errorf("failed to marshal transfer: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transferPath, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.ErrProviderDefinite.WithError(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Signature", Sign(payload, c.secretKey))

	log := logger.With("payout")
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error().Err(err).Str("reference", req.Reference).Dur("elapsed", time.Since(start)).Msg("transfer request failed")
		return nil, apperrors.ErrProviderAmbiguous.WithError(fmt.Errorf("failed to send transfer: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.ErrProviderAmbiguous.WithError(fmt.Errorf("failed to read response: %w", err))
	}

	log.Debug().
		Str("reference", req.Reference).
		Int("status_code", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("transfer response received")

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, apperrors.ErrProviderAmbiguous.WithError(fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(body)))
	}

	var decoded providerResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, apperrors.ErrProviderDefinite.WithError(fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(body)))
		}
		return nil, apperrors.ErrProviderAmbiguous.WithError(fmt.Errorf("failed to decode response: %w", err))
	}

	if !decoded.Success || resp.StatusCode >= http.StatusBadRequest {
		msg := decoded.Message
		if msg == "" {
			msg = fmt.Sprintf("provider returned status %d", resp.StatusCode)
		}
		return nil, apperrors.ErrProviderDefinite.WithMessage(msg).WithDetails(decoded.Data)
	}

	return &TransferResult{
		ProviderReference: providerReference(decoded.Data),
		Message:           decoded.Message,
		Data:              decoded.Data,
	}, nil
}

// Sign returns the hex HMAC-SHA512 of body keyed with secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func providerReference(data map[string]interface{}) string {
	for _, key := range []string{"reference", "transaction_reference", "id"} {
		if v, ok := data[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
