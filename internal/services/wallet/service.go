package wallet

import (
	"context"
	"strings"
	"time"

	"cashon/internal/errors"
	"cashon/internal/logger"
	"cashon/internal/models"
	"cashon/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	store   *repositories.Store
	cache   Cache
	config  WalletConfig
	metrics MetricsCollector
}

// NewService creates a new wallet service
func NewService(
	store *repositories.Store,
	cache Cache,
	config WalletConfig,
	metrics MetricsCollector,
) Service {
	if store == nil {
		panic("store is required")
	}
	if cache == nil {
		cache = NoopCache{}
	}
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = models.DefaultCurrency
	}
	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		store:   store,
		cache:   cache,
		config:  config,
		metrics: metrics,
	}
}

func (s *service) ApplyLedgerEntry(ctx context.Context, req LedgerEntryRequest) (*LedgerEntryResult, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(opApplyEntry, time.Since(start)) }()

	var result *LedgerEntryResult
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		res, err := s.ApplyLedgerEntryTx(ctx, tx, req)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		err = classify(err)
		s.metrics.RecordError(opApplyEntry, errorCode(err))
		s.metrics.RecordOperationResult(opApplyEntry, "rejected")
		return nil, err
	}

	s.Committed(ctx, result)
	return result, nil
}

// ApplyLedgerEntryTx applies req using tx. The wallet row stays locked until
// the caller's transaction ends. Nothing is cached or counted until Committed.
func (s *service) ApplyLedgerEntryTx(ctx context.Context, tx *repositories.Store, req LedgerEntryRequest) (*LedgerEntryResult, error) {
	amount, err := req.normalize()
	if err != nil {
		return nil, err
	}

	wallet, err := tx.Wallets.LockByID(ctx, req.WalletID)
	if err != nil {
		return nil, classify(err)
	}

	previous := wallet.Balance
	next := previous.Add(amount)
	if req.Type == models.EntryDebit {
		next = previous.Sub(amount)
		if next.IsNegative() {
			return nil, errors.ErrInsufficientFunds.WithDetails(map[string]interface{}{
				"wallet_id": wallet.ID,
				"balance":   previous.StringFixed(2),
				"requested": amount.StringFixed(2),
			})
		}
	}

	wallet.Balance = next
	wallet.AvailableBalance = next
	if err := tx.Wallets.UpdateBalance(ctx, wallet); err != nil {
		return nil, classify(err)
	}

	entry := &models.WalletTransaction{
		WalletID:        wallet.ID,
		UserID:          wallet.UserID,
		Type:            req.Type,
		Source:          req.Source,
		Amount:          amount,
		PreviousBalance: previous,
		NewBalance:      next,
		Reference:       req.Reference,
		Note:            req.Note,
		Currency:        wallet.Currency,
	}
	if err := tx.Wallets.CreateTransaction(ctx, entry); err != nil {
		return nil, classify(err)
	}

	return &LedgerEntryResult{
		Wallet:          wallet,
		Entry:           entry,
		PreviousBalance: previous,
		NewBalance:      next,
	}, nil
}

// Committed drops cached copies of the touched wallets and records metrics.
// Call it only after the transaction holding the entries has committed.
func (s *service) Committed(ctx context.Context, results ...*LedgerEntryResult) {
	for _, res := range results {
		if res == nil || res.Entry == nil {
			continue
		}
		if err := s.cache.InvalidateWallet(ctx, res.Wallet); err != nil {
			logger.Warn().Err(err).Uint("wallet_id", res.Wallet.ID).Msg("failed to invalidate wallet cache")
		}
		s.metrics.RecordLedgerEntry(string(res.Entry.Type), string(res.Entry.Source), res.Entry.Amount)
		s.metrics.RecordOperationResult(opApplyEntry, "applied")

		logger.Debug().
			Uint("wallet_id", res.Wallet.ID).
			Str("type", string(res.Entry.Type)).
			Str("source", string(res.Entry.Source)).
			Str("reference", res.Entry.Reference).
			Str("amount", res.Entry.Amount.StringFixed(2)).
			Str("new_balance", res.NewBalance.StringFixed(2)).
			Msg("ledger entry applied")
	}
}

func (s *service) CreateWallets(ctx context.Context, userID uint) ([]models.Wallet, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(opCreate, time.Since(start)) }()

	version, verr := s.cache.UserWalletsVersion(ctx, userID)
	wallets := make([]models.Wallet, 0, 2)
	for _, walletType := range []models.WalletType{models.WalletTypeSavings, models.WalletTypePocket} {
		wallet, err := s.store.Wallets.FirstOrCreate(ctx, userID, walletType, s.config.DefaultCurrency)
		if err != nil {
			s.metrics.RecordError(opCreate, errors.ErrStorage.Code)
			return nil, errors.ErrStorage.WithError(err)
		}
		wallets = append(wallets, *wallet)
	}

	if verr == nil {
		s.cacheUserWallets(ctx, userID, wallets, version)
	}
	return wallets, nil
}

// FundWallet credits a user's wallet on behalf of an operator and writes an
// audit row in the same transaction.
func (s *service) FundWallet(ctx context.Context, req FundRequest) (*LedgerEntryResult, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(opFund, time.Since(start)) }()

	if req.AdminID == 0 {
		return nil, errors.ErrValidation.WithMessage("admin id is required")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, errors.ErrValidation.WithMessage("reason is required")
	}
	if req.WalletType == "" {
		req.WalletType = models.WalletTypePocket
	}
	if !req.WalletType.Valid() {
		return nil, errors.ErrValidation.WithMessage("invalid wallet type")
	}

	wallet, err := s.store.Wallets.GetByUserAndType(ctx, req.UserID, req.WalletType)
	if err != nil {
		return nil, classify(err)
	}

	var result *LedgerEntryResult
	err = s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		res, err := s.ApplyLedgerEntryTx(ctx, tx, LedgerEntryRequest{
			WalletID:  wallet.ID,
			Type:      models.EntryCredit,
			Amount:    req.Amount,
			Source:    models.SourceAdminFunding,
			Reference: "admin_fund_" + uuid.NewString(),
			Note:      "Admin funding: " + req.Reason,
		})
		if err != nil {
			return err
		}

		audit := &models.AdminAudit{
			AdminID:    req.AdminID,
			Action:     "wallet.fund",
			EntityType: "wallet",
			EntityID:   wallet.ID,
			Before:     models.NewJSON(map[string]interface{}{"balance": res.PreviousBalance.StringFixed(2)}),
			After: models.NewJSON(map[string]interface{}{
				"balance":   res.NewBalance.StringFixed(2),
				"reference": res.Entry.Reference,
			}),
			Reason: req.Reason,
		}
		if err := tx.Audits.Create(ctx, audit); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		err = classify(err)
		s.metrics.RecordError(opFund, errorCode(err))
		return nil, err
	}

	s.Committed(ctx, result)
	logger.Info().
		Uint("admin_id", req.AdminID).
		Uint("wallet_id", wallet.ID).
		Str("amount", result.Entry.Amount.StringFixed(2)).
		Msg("wallet funded by admin")
	return result, nil
}

func (s *service) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	// Try cache first
	if wallet, err := s.cache.GetWallet(ctx, walletID); err == nil && wallet != nil {
		s.metrics.RecordCacheHit("wallet")
		return wallet, nil
	}
	s.metrics.RecordCacheMiss("wallet")

	// The version must be read before the row, so a commit landing between
	// the two makes the write below a no-op.
	version, verr := s.cache.WalletVersion(ctx, walletID)
	wallet, err := s.store.Wallets.GetByID(ctx, walletID)
	if err != nil {
		err = classify(err)
		s.metrics.RecordError(opGet, errorCode(err))
		return nil, err
	}
	if verr != nil {
		logger.Warn().Err(verr).Uint("wallet_id", walletID).Msg("wallet cache unavailable")
		return wallet, nil
	}

	stored, err := s.cache.CacheWallet(ctx, wallet, version)
	switch {
	case err != nil:
		logger.Warn().Err(err).Uint("wallet_id", walletID).Msg("failed to cache wallet")
	case !stored:
		logger.Debug().Uint("wallet_id", walletID).Msg("wallet changed during read, not cached")
	}
	return wallet, nil
}

func (s *service) GetWalletByType(ctx context.Context, userID uint, walletType models.WalletType) (*models.Wallet, error) {
	wallet, err := s.store.Wallets.GetByUserAndType(ctx, userID, walletType)
	if err != nil {
		return nil, classify(err)
	}
	return wallet, nil
}

func (s *service) ListWallets(ctx context.Context, userID uint) ([]models.Wallet, error) {
	if wallets, err := s.cache.GetUserWallets(ctx, userID); err == nil && len(wallets) > 0 {
		return wallets, nil
	}

	version, verr := s.cache.UserWalletsVersion(ctx, userID)
	wallets, err := s.store.Wallets.ListByUser(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	if len(wallets) > 0 && verr == nil {
		s.cacheUserWallets(ctx, userID, wallets, version)
	}
	return wallets, nil
}

func (s *service) cacheUserWallets(ctx context.Context, userID uint, wallets []models.Wallet, version int64) {
	stored, err := s.cache.CacheUserWallets(ctx, userID, wallets, version)
	switch {
	case err != nil:
		logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to cache user wallets")
	case !stored:
		logger.Debug().Uint("user_id", userID).Msg("wallets changed during read, not cached")
	}
}

// GetBalance always reads the database; cached wallets are for display only.
func (s *service) GetBalance(ctx context.Context, walletID uint) (decimal.Decimal, error) {
	wallet, err := s.store.Wallets.GetByID(ctx, walletID)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return wallet.Balance, nil
}

func (s *service) GetTransactionHistory(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletTransaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	txns, err := s.store.Wallets.GetTransactionHistory(ctx, walletID, limit, offset)
	if err != nil {
		return nil, classify(err)
	}
	return txns, nil
}

// VerifyLedger checks that the stored balance equals credits minus debits
// and that every entry's previous_balance is the new_balance of the entry
// before it, starting from zero. The first break found is reported.
func (s *service) VerifyLedger(ctx context.Context, walletID uint) (*LedgerReport, error) {
	wallet, err := s.store.Wallets.GetByID(ctx, walletID)
	if err != nil {
		return nil, classify(err)
	}
	totals, err := s.store.Wallets.SumEntries(ctx, walletID)
	if err != nil {
		return nil, classify(err)
	}

	report := &LedgerReport{
		WalletID:   walletID,
		Balance:    wallet.Balance,
		LedgerNet:  totals.Net(),
		EntryCount: totals.Count,
	}
	tail, brk, err := s.walkChain(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if brk == nil && !tail.Equal(wallet.Balance) {
		brk = &ChainBreak{Field: "balance", Expected: tail, Actual: wallet.Balance}
	}
	report.Break = brk
	report.ChainIntact = brk == nil
	report.Consistent = report.ChainIntact && report.Balance.Equal(report.LedgerNet)

	if !report.Consistent {
		ev := logger.Error().
			Uint("wallet_id", walletID).
			Str("balance", report.Balance.StringFixed(2)).
			Str("ledger_net", report.LedgerNet.StringFixed(2))
		if brk != nil {
			ev = ev.Uint("entry_id", brk.EntryID).
				Str("field", brk.Field).
				Str("expected", brk.Expected.StringFixed(2)).
				Str("actual", brk.Actual.StringFixed(2))
		}
		ev.Msg("wallet balance does not match ledger")
	}
	return report, nil
}

// walkChain replays the entries in id order. It returns the balance the
// chain ends on, or the first entry that does not follow from its predecessor.
func (s *service) walkChain(ctx context.Context, walletID uint) (decimal.Decimal, *ChainBreak, error) {
	running := decimal.Zero
	var after uint
	for {
		entries, err := s.store.Wallets.ListEntriesAfter(ctx, walletID, after, verifyBatchSize)
		if err != nil {
			return decimal.Zero, nil, classify(err)
		}
		for _, e := range entries {
			if !e.PreviousBalance.Equal(running) {
				return running, &ChainBreak{EntryID: e.ID, Reference: e.Reference, Field: "previous_balance", Expected: running, Actual: e.PreviousBalance}, nil
			}
			next := running.Add(e.Amount)
			if e.Type == models.EntryDebit {
				next = running.Sub(e.Amount)
			}
			if !e.NewBalance.Equal(next) {
				return running, &ChainBreak{EntryID: e.ID, Reference: e.Reference, Field: "new_balance", Expected: next, Actual: e.NewBalance}, nil
			}
			running = next
			after = e.ID
		}
		if len(entries) < verifyBatchSize {
			return running, nil, nil
		}
	}
}

// normalize validates the request and returns the amount rounded to kobo.
func (r LedgerEntryRequest) normalize() (decimal.Decimal, error) {
	if r.WalletID == 0 {
		return decimal.Zero, ErrMissingWallet
	}
	if !r.Type.Valid() {
		return decimal.Zero, errors.ErrInvalidEntryType
	}
	if strings.TrimSpace(r.Reference) == "" {
		return decimal.Zero, ErrMissingReference
	}
	amount := r.Amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, errors.ErrInvalidAmount
	}
	return amount, nil
}
