// Package session holds per-sender dialogue state for in-progress
// multi-turn flows. State lives in process memory only and is keyed
// strictly by sender identity; starting a new flow overwrites whatever
// session the sender had before.
package session

import (
	"github.com/patrickmn/go-cache"
)

// Action tags the flow a session is currently in.
type Action string

const (
	ActionCreatingDebt          Action = "creating_debt"
	ActionCreatingGoal          Action = "creating_goal"
	ActionAwaitingPaymentMethod Action = "awaiting_payment_method"
	ActionAwaitingCardSelection Action = "awaiting_credit_card_selection"
	ActionAwaitingInstallments  Action = "awaiting_installment_number"
	ActionAwaitingReceiptMethod Action = "awaiting_receipt_method"
	ActionConfirmingBatch       Action = "confirming_transactions"
	ActionAwaitingBatchMethod   Action = "awaiting_batch_payment_method"
	ActionAwaitingPaymentAmount Action = "awaiting_payment_amount"
	ActionConfirmingDelete      Action = "confirming_delete"
	ActionConfirmingDebtUpdate  Action = "confirming_debt_update"
)

// Session is the dialogue state of one sender. Step is a flow-specific
// cursor and Data a flow-specific payload owned by the dialogue controller.
type Session struct {
	Action Action
	Step   int
	Data   any
}

// Store is the session key-value abstraction injected into the dialogue
// controller and router.
type Store interface {
	Get(key string) (*Session, bool)
	Put(key string, s *Session)
	Clear(key string)
}

// memoryStore backs Store with go-cache. Sessions never expire on their
// own; they end only on flow completion, cancellation or selection error.
type memoryStore struct {
	c *cache.Cache
}

// NewStore returns an in-memory session store.
func NewStore() Store {
	return &memoryStore{c: cache.New(cache.NoExpiration, 0)}
}

func (m *memoryStore) Get(key string) (*Session, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok
}

func (m *memoryStore) Put(key string, s *Session) {
	m.c.Set(key, s, cache.NoExpiration)
}

func (m *memoryStore) Clear(key string) {
	m.c.Delete(key)
}
