package harness

import (
	sdkmath "cosmossdk.io/math"

	"github.com/b-harvest/node-harness/internal/fixtures"
	"github.com/b-harvest/node-harness/internal/keys"
	"github.com/b-harvest/node-harness/internal/random"
)

// Fees are the transaction fees of the network, in base units.
type Fees struct {
	VoteFee                       sdkmath.Int `json:"voteFee"`
	TransactionFee                sdkmath.Int `json:"transactionFee"`
	SecondPasswordFee             sdkmath.Int `json:"secondPasswordFee"`
	DelegateRegistrationFee       sdkmath.Int `json:"delegateRegistrationFee"`
	MultisignatureRegistrationFee sdkmath.Int `json:"multisignatureRegistrationFee"`
}

// DefaultFees returns the fee schedule of the test networks.
func DefaultFees() Fees {
	return Fees{
		VoteFee:                       sdkmath.NewInt(1 * random.Normalizer),
		TransactionFee:                sdkmath.NewInt(random.Normalizer / 10),
		SecondPasswordFee:             sdkmath.NewInt(5 * random.Normalizer),
		DelegateRegistrationFee:       sdkmath.NewInt(25 * random.Normalizer),
		MultisignatureRegistrationFee: sdkmath.NewInt(5 * random.Normalizer),
	}
}

// ExpectedFee returns the fee charged for sending amount. The fee is flat.
func (f Fees) ExpectedFee(amount sdkmath.Int) sdkmath.Int {
	return f.TransactionFee
}

// FixtureAccount is an account from the fixture set whose password is its
// passphrase.
type FixtureAccount struct {
	Password  string `json:"password"`
	PublicKey string `json:"publicKey"`
	Address   string `json:"address"`
}

// accountFromPassphrase derives the public key and address of a fixture
// passphrase when the fixture does not carry them.
func accountFromPassphrase(p *fixtures.Passphrase, deriver keys.Deriver) (*FixtureAccount, error) {
	acc := &FixtureAccount{
		Password:  p.Passphrase,
		PublicKey: p.PublicKey,
		Address:   p.Address,
	}
	if acc.PublicKey == "" || acc.Address == "" {
		kp, err := deriver.Derive(p.Passphrase)
		if err != nil {
			return nil, err
		}
		acc.PublicKey = kp.PublicKeyHex()
		acc.Address = deriver.Address(kp.PublicKey)
	}
	return acc, nil
}
