package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types handled by the store.
const (
	TypeDeposit = "deposit"
	TypeExpense = "expense"
)

// Transaction is a ledger entry. Amount is signed: deposits are stored
// positive, expenses negative. RunningBalance is the cumulative balance
// immediately after this transaction in chronological order.
type Transaction struct {
	Seq            int64
	Code           string
	Type           string
	Amount         decimal.Decimal
	CreatedAt      time.Time
	RunningBalance decimal.Decimal
	Imported       bool
}

// TypeDisplay returns the human label for the transaction type.
func (t Transaction) TypeDisplay() string {
	switch t.Type {
	case TypeDeposit:
		return "Deposit"
	case TypeExpense:
		return "Expense"
	default:
		return t.Type
	}
}

// Store is the in-memory ledger. Imported transactions may carry timestamps
// older than existing entries, so every insert recalculates the running
// balances over the full chronological order.
type Store struct {
	mu  sync.RWMutex
	txs []*Transaction
	seq int64
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Add records a transaction, normalizing the amount sign by type, and
// returns the stored entry with its running balance.
func (s *Store) Add(txType string, amount decimal.Decimal, code string, createdAt time.Time, imported bool) Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if txType == TypeExpense && amount.IsPositive() {
		amount = amount.Neg()
	}
	if txType == TypeDeposit && amount.IsNegative() {
		amount = amount.Abs()
	}

	s.seq++
	tx := &Transaction{
		Seq:       s.seq,
		Code:      code,
		Type:      txType,
		Amount:    amount,
		CreatedAt: createdAt,
		Imported:  imported,
	}
	s.txs = append(s.txs, tx)
	s.recalcLocked()
	return *tx
}

// recalcLocked recomputes every running balance in chronological order
// (created_at asc, seq asc).
func (s *Store) recalcLocked() {
	ordered := make([]*Transaction, len(s.txs))
	copy(ordered, s.txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	balance := decimal.Zero
	for _, tx := range ordered {
		balance = balance.Add(tx.Amount)
		tx.RunningBalance = balance
	}
}

// TotalBalance returns the running balance of the newest transaction across
// all types, or zero for an empty ledger.
func (s *Store) TotalBalance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	newest := s.newestLocked()
	if newest == nil {
		return decimal.Zero
	}
	return newest.RunningBalance
}

func (s *Store) newestLocked() *Transaction {
	var newest *Transaction
	for _, tx := range s.txs {
		if newest == nil {
			newest = tx
			continue
		}
		if tx.CreatedAt.After(newest.CreatedAt) ||
			(tx.CreatedAt.Equal(newest.CreatedAt) && tx.Seq > newest.Seq) {
			newest = tx
		}
	}
	return newest
}

// Page returns one page of transactions newest-first, optionally filtered
// by type, plus whether more pages follow. Pages are 1-based; a page past
// the end yields an empty result.
func (s *Store) Page(filterType string, page, size int) ([]Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]*Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if filterType != "" && tx.Type != filterType {
			continue
		}
		filtered = append(filtered, tx)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if !filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		}
		return filtered[i].Seq > filtered[j].Seq
	})

	start := (page - 1) * size
	if page < 1 || start >= len(filtered) {
		return nil, false
	}
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}

	out := make([]Transaction, 0, end-start)
	for _, tx := range filtered[start:end] {
		out = append(out, *tx)
	}
	return out, end < len(filtered)
}

// HasCode reports whether a transaction with the given external code exists.
func (s *Store) HasCode(code string) bool {
	if code == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.txs {
		if tx.Code == code {
			return true
		}
	}
	return false
}

// CountExpensesOn counts expense transactions on the given calendar day, in
// that day's location.
func (s *Store) CountExpensesOn(day time.Time) int {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, tx := range s.txs {
		if tx.Type != TypeExpense {
			continue
		}
		if !tx.CreatedAt.Before(start) && tx.CreatedAt.Before(end) {
			count++
		}
	}
	return count
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}
