// Package ledger keeps native-token balances of every address the engine knows about.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/types"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrAccountClosed     = errors.New("account is closed")
)

type Account struct {
	Address types.Address
	Balance decimal.Decimal
	Closed  bool
}

type Transfer struct {
	ID        uuid.UUID
	From      types.Address
	To        types.Address
	Amount    decimal.Decimal
	Memo      string
	CreatedAt time.Time
}

type Ledger struct {
	mu        sync.Mutex
	accounts  map[types.Address]*Account
	transfers []Transfer
}

func New() *Ledger {
	return &Ledger{
		accounts: make(map[types.Address]*Account),
	}
}

func (l *Ledger) account(address types.Address) *Account {
	account, ok := l.accounts[address]
	if !ok {
		account = &Account{Address: address, Balance: decimal.Zero}
		l.accounts[address] = account
	}

	return account
}

// Deposit credits amount out of thin air. Used to fund wallets.
func (l *Ledger) Deposit(address types.Address, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !amount.IsPositive() {
		return fmt.Errorf("cannot deposit %s to %s: %w", amount, address, ErrInvalidAmount)
	}

	account := l.account(address)
	if account.Closed {
		return fmt.Errorf("cannot deposit to %s: %w", address, ErrAccountClosed)
	}

	account.Balance = account.Balance.Add(amount)
	return nil
}

func (l *Ledger) Balance(address types.Address) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	if account, ok := l.accounts[address]; ok {
		return account.Balance
	}

	return decimal.Zero
}

func (l *Ledger) IsClosed(address types.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[address]
	return ok && account.Closed
}

// Transfer moves amount from one address to another. Zero amounts are a no-op.
func (l *Ledger) Transfer(from, to types.Address, amount decimal.Decimal, memo string) error {
	if amount.IsZero() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.transfer(from, to, amount, memo)
}

func (l *Ledger) transfer(from, to types.Address, amount decimal.Decimal, memo string) error {
	if amount.IsNegative() {
		return fmt.Errorf("cannot transfer %s from %s: %w", amount, from, ErrInvalidAmount)
	}

	source := l.account(from)
	target := l.account(to)

	if target.Closed {
		return fmt.Errorf("cannot transfer to %s: %w", to, ErrAccountClosed)
	}
	if amount.GreaterThan(source.Balance) {
		return fmt.Errorf("cannot transfer %s from %s (balance: %s): %w", amount, from, source.Balance, ErrInsufficientFunds)
	}

	source.Balance = source.Balance.Sub(amount)
	target.Balance = target.Balance.Add(amount)

	l.transfers = append(l.transfers, Transfer{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Amount:    amount,
		Memo:      memo,
		CreatedAt: time.Now(),
	})

	return nil
}

// Close sends the remaining balance of address to beneficiary and refuses any later credit.
func (l *Ledger) Close(address, beneficiary types.Address) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account := l.account(address)
	if account.Closed {
		return decimal.Zero, fmt.Errorf("cannot close %s: %w", address, ErrAccountClosed)
	}

	left := account.Balance
	if left.IsPositive() {
		if err := l.transfer(address, beneficiary, left, "destroy"); err != nil {
			return decimal.Zero, err
		}
	}

	account.Closed = true
	return left, nil
}

// Transfers returns every recorded transfer touching address, oldest first.
func (l *Ledger) Transfers(address types.Address) []Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]Transfer, 0)
	for _, t := range l.transfers {
		if t.From == address || t.To == address {
			result = append(result, t)
		}
	}

	return result
}
