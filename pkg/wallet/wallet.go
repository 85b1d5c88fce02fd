// Package wallet turns a BIP39 mnemonic into one key pair and its set of
// Bitcoin address encodings.
package wallet

import (
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

var (
	// ErrNullMnemonic ...
	ErrNullMnemonic = errors.New("mnemonic must not be null")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidSeed is thrown when the seed bytes cannot be turned into a
	// master key. It should not occur for checksum-valid mnemonics.
	ErrInvalidSeed = errors.New("seed bytes are malformed")
)

// Wallet data structure allows to derive the key pair and the address
// encodings of a mnemonic. Derivation is pure and deterministic, the same
// mnemonic always yields the same keys.
type Wallet struct {
	mnemonic  string
	masterKey *hdkeychain.ExtendedKey
	net       *chaincfg.Params
}

// NewWalletFromMnemonicOpts is the struct given to the NewWalletFromMnemonic
// method.
type NewWalletFromMnemonicOpts struct {
	Mnemonic string
}

func (o NewWalletFromMnemonicOpts) validate() error {
	if len(strings.TrimSpace(o.Mnemonic)) <= 0 {
		return ErrNullMnemonic
	}
	if !isMnemonicValid(o.Mnemonic) {
		return ErrInvalidMnemonic
	}
	return nil
}

// NewWalletFromMnemonic generates the seed from the provided mnemonic and
// derives its mainnet master key.
func NewWalletFromMnemonic(opts NewWalletFromMnemonicOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	seed := generateSeedFromMnemonic(opts.Mnemonic)
	masterKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, ErrInvalidSeed
	}

	return &Wallet{
		mnemonic:  opts.Mnemonic,
		masterKey: masterKey,
		net:       &chaincfg.MainNetParams,
	}, nil
}

// Mnemonic is the getter for the wallet mnemonic.
func (w *Wallet) Mnemonic() string {
	return w.mnemonic
}
