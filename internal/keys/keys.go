// Package keys derives account key pairs and addresses from passphrases.
//
// The private key is the SHA-256 of the UTF-8 passphrase, the public key is
// its compressed secp256k1 point, and the address is the Base58Check encoding
// of RIPEMD-160(publicKey) under the network's address version byte.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // address format is fixed by the network
)

// KeyPair is a derived secp256k1 key pair.
type KeyPair struct {
	PrivateKey []byte
	PublicKey  []byte
}

// PublicKeyHex returns the compressed public key as lowercase hex.
func (k *KeyPair) PublicKeyHex() string {
	return hex.EncodeToString(k.PublicKey)
}

// Deriver derives keys and addresses for one network.
type Deriver interface {
	Derive(passphrase string) (*KeyPair, error)
	Address(publicKey []byte) string
}

// NetworkDeriver is the Deriver for a network address version byte.
type NetworkDeriver struct {
	version byte
}

// NewDeriver creates a Deriver producing addresses with the given version byte.
func NewDeriver(addressVersion byte) *NetworkDeriver {
	return &NetworkDeriver{version: addressVersion}
}

// Derive returns the key pair for a passphrase.
func (d *NetworkDeriver) Derive(passphrase string) (*KeyPair, error) {
	return DeriveKeys(passphrase)
}

// Address returns the address of a compressed public key.
func (d *NetworkDeriver) Address(publicKey []byte) string {
	return Address(publicKey, d.version)
}

// DeriveKeys returns the key pair for a passphrase.
func DeriveKeys(passphrase string) (*KeyPair, error) {
	seed := sha256.Sum256([]byte(passphrase))

	priv, err := crypto.ToECDSA(seed[:])
	if err != nil {
		return nil, fmt.Errorf("failed to derive private key: %w", err)
	}

	return &KeyPair{
		PrivateKey: crypto.FromECDSA(priv),
		PublicKey:  crypto.CompressPubkey(&priv.PublicKey),
	}, nil
}

// Address returns the Base58Check address of a compressed public key.
func Address(publicKey []byte, version byte) string {
	h := ripemd160.New()
	h.Write(publicKey)
	return base58.CheckEncode(h.Sum(nil), version)
}

// AddressFromHex is Address for a hex encoded public key.
func AddressFromHex(publicKeyHex string, version byte) (string, error) {
	pub, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return "", fmt.Errorf("invalid public key hex: %w", err)
	}
	if len(pub) != 33 {
		return "", fmt.Errorf("invalid public key length %d, expected 33", len(pub))
	}
	return Address(pub, version), nil
}

// ValidateAddress reports whether addr is a well-formed address for version.
func ValidateAddress(addr string, version byte) bool {
	payload, v, err := base58.CheckDecode(addr)
	if err != nil {
		return false
	}
	return v == version && len(payload) == ripemd160.Size
}
