package payout

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cashon/internal/config"
	apperrors "cashon/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.PayoutConfig{
		BaseURL:    srv.URL + "/",
		SecretKey:  "sk_test",
		Timeout:    timeout,
		SenderName: "Cashon",
		Narration:  "Sent from Cashon",
		Currency:   "NGN",
	})
}

func transferRequest() TransferRequest {
	return TransferRequest{
		AccountNumber: "0123456789",
		AccountName:   "Ada Obi",
		BankCode:      "058",
		Amount:        decimal.RequireFromString("300"),
		Reference:     "7_abc",
	}
}

func TestTransferSignsRequest(t *testing.T) {
	var gotBody []byte
	var gotHeaders http.Header

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bank_transfer", r.URL.Path)
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"success":true,"message":"queued","data":{"reference":"prov-1"}}`))
	}, time.Second)

	res, err := client.Transfer(context.Background(), transferRequest())
	require.NoError(t, err)
	assert.Equal(t, "prov-1", res.ProviderReference)

	assert.Equal(t, "Bearer sk_test", gotHeaders.Get("Authorization"))
	assert.Equal(t, Sign(gotBody, "sk_test"), gotHeaders.Get("Signature"))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "0123456789", payload["account_number"])
	assert.Equal(t, 300.0, payload["amount"])
	assert.Equal(t, "NGN", payload["currency"])
	assert.Equal(t, "Sent from Cashon", payload["narration"])
	assert.Equal(t, "7_abc", payload["reference"])
}

func TestTransferClassifiesFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "provider declined",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"success":false,"message":"invalid account"}`))
			},
			wantErr: apperrors.ErrProviderDefinite,
		},
		{
			name: "bad request without json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte("bad"))
			},
			wantErr: apperrors.ErrProviderDefinite,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: apperrors.ErrProviderAmbiguous,
		},
		{
			name: "garbled success body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
			wantErr: apperrors.ErrProviderAmbiguous,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(300 * time.Millisecond)
				_, _ = w.Write([]byte(`{"success":true}`))
			},
			wantErr: apperrors.ErrProviderAmbiguous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler, 100*time.Millisecond)
			_, err := client.Transfer(context.Background(), transferRequest())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDeclineCarriesProviderMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"invalid account"}`))
	}, time.Second)

	_, err := client.Transfer(context.Background(), transferRequest())
	de, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "invalid account", de.Message)
}
