// Package ledger reconstructs account balances from transaction histories.
package ledger

import (
	"time"

	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
)

// Effect returns the signed amount a transaction adds to the given account, in
// that account's currency.
//
// As source: income adds the amount, expenses and outgoing transfers subtract it.
// As transfer destination: the target amount is added when present and non-zero,
// otherwise the amount itself (same-currency transfer).
func Effect(accountID string, tx *model.Transaction) float64 {
	if accountID == "" {
		return 0
	}

	var effect float64
	amount := money.Float(tx.Amount)

	if tx.AccountID == accountID {
		switch tx.Type {
		case model.TransactionTypeIncome:
			effect += amount
		case model.TransactionTypeExpense, model.TransactionTypeTransfer:
			effect -= amount
		}
	}

	if tx.TransferToAccountID == accountID && tx.IsTransfer() {
		if target, ok := money.NonZero(tx.TargetAmount); ok {
			effect += target
		} else {
			effect += amount
		}
	}

	return effect
}

// Balance returns the account's initial balance plus the net effect of every
// transaction referencing it. The result does not depend on transaction order.
func Balance(account model.Account, txs []model.Transaction) float64 {
	balance := money.Float(account.InitialBalance)
	for i := range txs {
		balance += Effect(account.ID, &txs[i])
	}
	return balance
}

// BalanceAsOf is Balance restricted to transactions dated on or before day.
func BalanceAsOf(account model.Account, txs []model.Transaction, day time.Time) float64 {
	day = model.Day(day)
	balance := money.Float(account.InitialBalance)
	for i := range txs {
		if model.Day(txs[i].Date).After(day) {
			continue
		}
		balance += Effect(account.ID, &txs[i])
	}
	return balance
}

// GroupByAccount indexes transactions by every account they touch. A transfer
// appears under both its source and destination.
func GroupByAccount(txs []model.Transaction) map[string][]model.Transaction {
	grouped := make(map[string][]model.Transaction)
	for _, tx := range txs {
		if tx.AccountID != "" {
			grouped[tx.AccountID] = append(grouped[tx.AccountID], tx)
		}
		if tx.TransferToAccountID != "" && tx.TransferToAccountID != tx.AccountID {
			grouped[tx.TransferToAccountID] = append(grouped[tx.TransferToAccountID], tx)
		}
	}
	return grouped
}

// Resync returns copies of the accounts with CurrentBalance recomputed.
func Resync(accounts []model.Account, txs []model.Transaction) []model.Account {
	grouped := GroupByAccount(txs)
	out := make([]model.Account, len(accounts))
	for i, acc := range accounts {
		acc.CurrentBalance = money.FromFloat(Balance(acc, grouped[acc.ID]))
		out[i] = acc
	}
	return out
}
