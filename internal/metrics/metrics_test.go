package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletCollectorCountsEntries(t *testing.T) {
	c := NewWalletCollector()
	before := testutil.ToFloat64(ledgerEntries.WithLabelValues("credit", "deposit"))

	c.RecordLedgerEntry("credit", "deposit", decimal.RequireFromString("150.25"))
	c.RecordOperationDuration("apply_ledger_entry", 3*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(ledgerEntries.WithLabelValues("credit", "deposit")))
}

func TestRecordWithdrawalOutcome(t *testing.T) {
	before := testutil.ToFloat64(withdrawalOutcomes.WithLabelValues("refunded"))

	RecordWithdrawalOutcome("refunded")

	assert.Equal(t, before+1, testutil.ToFloat64(withdrawalOutcomes.WithLabelValues("refunded")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware("/metrics"))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "cashon_http_requests_total")
}
