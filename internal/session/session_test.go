package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()

	_, ok := store.Get("5511999990000")
	assert.False(t, ok)

	store.Put("5511999990000", &Session{Action: ActionCreatingDebt, Step: 2})

	s, ok := store.Get("5511999990000")
	require.True(t, ok)
	assert.Equal(t, ActionCreatingDebt, s.Action)
	assert.Equal(t, 2, s.Step)

	// One session per sender: a new flow overwrites the old one.
	store.Put("5511999990000", &Session{Action: ActionConfirmingDelete})
	s, ok = store.Get("5511999990000")
	require.True(t, ok)
	assert.Equal(t, ActionConfirmingDelete, s.Action)
	assert.Equal(t, 0, s.Step)

	store.Clear("5511999990000")
	_, ok = store.Get("5511999990000")
	assert.False(t, ok)
}

func TestStoreKeysAreIndependent(t *testing.T) {
	store := NewStore()
	store.Put("a", &Session{Action: ActionCreatingGoal})
	store.Put("b", &Session{Action: ActionAwaitingPaymentAmount})

	sa, _ := store.Get("a")
	sb, _ := store.Get("b")
	assert.Equal(t, ActionCreatingGoal, sa.Action)
	assert.Equal(t, ActionAwaitingPaymentAmount, sb.Action)

	store.Clear("a")
	_, ok := store.Get("b")
	assert.True(t, ok)
}
