package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/zsmartex/nftex/types"
)

const (
	alice types.Address = "0:a1"
	bob   types.Address = "0:b0"
)

func TestLedger_Transfer(t *testing.T) {
	l := New()
	require.NoError(t, l.Deposit(alice, decimal.NewFromInt(10)))

	require.NoError(t, l.Transfer(alice, bob, decimal.RequireFromString("2.5"), "bid"))
	require.Equal(t, "7.5", l.Balance(alice).String())
	require.Equal(t, "2.5", l.Balance(bob).String())

	err := l.Transfer(bob, alice, decimal.NewFromInt(3), "refund")
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, "2.5", l.Balance(bob).String())

	require.NoError(t, l.Transfer(bob, alice, decimal.Zero, "noop"))
	require.Len(t, l.Transfers(bob), 1)
}

func TestLedger_Close(t *testing.T) {
	l := New()
	require.NoError(t, l.Deposit(alice, decimal.NewFromInt(4)))

	left, err := l.Close(alice, bob)
	require.NoError(t, err)
	require.Equal(t, "4", left.String())
	require.True(t, l.IsClosed(alice))
	require.True(t, l.Balance(alice).IsZero())

	require.ErrorIs(t, l.Transfer(bob, alice, decimal.NewFromInt(1), "late"), ErrAccountClosed)
	require.ErrorIs(t, l.Deposit(alice, decimal.NewFromInt(1)), ErrAccountClosed)

	_, err = l.Close(alice, bob)
	require.ErrorIs(t, err, ErrAccountClosed)
}

func TestLedger_DepositRejectsNonPositive(t *testing.T) {
	l := New()
	require.ErrorIs(t, l.Deposit(alice, decimal.Zero), ErrInvalidAmount)
}
