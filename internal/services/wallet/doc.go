/*
Package wallet owns every change to a wallet balance.

ApplyLedgerEntry is the only way balances move. It locks the wallet row for
the whole read-modify-write, rejects debits that would go below zero, writes
the new balance and appends one immutable WalletTransaction whose
previous/new balance pair chains onto the last entry. The entry reference is
unique, so a replayed operation fails with ErrDuplicateReference instead of
moving money twice.

Callers that must commit other rows atomically with the entry (a deposit row,
a withdrawal status change) use ApplyLedgerEntryTx inside their own
repositories.Store transaction and call Committed once it has committed:

	err := store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
	    if err := tx.Deposits.Create(ctx, deposit); err != nil {
	        return err
	    }
	    res, err = walletSvc.ApplyLedgerEntryTx(ctx, tx, req)
	    return err
	})
	if err == nil {
	    walletSvc.Committed(ctx, res)
	}

Errors:
  - ErrInvalidAmount, ErrInvalidEntryType: rejected input, nothing written
  - ErrWalletNotFound
  - ErrInsufficientFunds: debit below zero, balance unchanged
  - ErrDuplicateReference: reference already in the ledger
  - ErrStorage: transient database failure, safe to retry
*/
package wallet
