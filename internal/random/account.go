package random

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/b-harvest/node-harness/internal/keys"
)

// Account is a freshly generated, unfunded account.
type Account struct {
	Password       string      `json:"password"`
	SecondPassword string      `json:"secondPassword"`
	Username       string      `json:"username"`
	PublicKey      string      `json:"publicKey"`
	Address        string      `json:"address"`
	Balance        sdkmath.Int `json:"balance"`
}

// TxAccount is an Account extended with the bookkeeping fields transaction
// tests fill in as they go.
type TxAccount struct {
	Account
	SentAmount   string            `json:"sentAmount"`
	PaidFee      string            `json:"paidFee"`
	TotalPaidFee string            `json:"totalPaidFee"`
	Transactions []json.RawMessage `json:"transactions"`
}

// Account returns a random account whose keys are derived from its password.
func (g *Generator) Account(deriver keys.Deriver) (*Account, error) {
	acc := &Account{
		Balance:        sdkmath.ZeroInt(),
		Password:       g.Password(),
		SecondPassword: g.Password(),
		Username:       g.DelegateName(),
	}

	kp, err := deriver.Derive(acc.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account keys: %w", err)
	}
	acc.PublicKey = kp.PublicKeyHex()
	acc.Address = deriver.Address(kp.PublicKey)

	return acc, nil
}

// TxAccount returns a random account with empty transaction bookkeeping.
func (g *Generator) TxAccount(deriver keys.Deriver) (*TxAccount, error) {
	acc, err := g.Account(deriver)
	if err != nil {
		return nil, err
	}
	return &TxAccount{
		Account:      *acc,
		Transactions: []json.RawMessage{},
	}, nil
}
