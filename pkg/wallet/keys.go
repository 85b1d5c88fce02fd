package wallet

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/txscript"
)

// DefaultDerivationPath is the single path used to derive the wallet key
// pair: m/44'/0'/0'/0/0.
//
// Every address encoding of the set shares this one key pair. Standard HD
// wallets diversify the key per purpose path (BIP49/BIP84), here the three
// encodings are different representations of the same public key.
var DefaultDerivationPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 0,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

// AddressSet holds the three encodings of the wallet public key.
type AddressSet struct {
	// Legacy is the P2PKH base58 address (1...).
	Legacy string
	// Segwit is the wrapped P2SH-P2WPKH base58 address (3...).
	Segwit string
	// NativeSegwit is the P2WPKH bech32 address (bc1...).
	NativeSegwit string
}

// All returns the three addresses in a stable order.
func (a AddressSet) All() []string {
	return []string{a.Legacy, a.Segwit, a.NativeSegwit}
}

// DeriveKeyPair derives the wallet key pair along DefaultDerivationPath.
func (w *Wallet) DeriveKeyPair() (*btcec.PrivateKey, *btcec.PublicKey, error) {
	hdNode := w.masterKey
	var err error
	for _, step := range DefaultDerivationPath {
		hdNode, err = hdNode.Derive(step)
		if err != nil {
			return nil, nil, err
		}
	}

	privateKey, err := hdNode.ECPrivKey()
	if err != nil {
		return nil, nil, err
	}
	return privateKey, privateKey.PubKey(), nil
}

// PrivateKeyHex returns the derived private key as a 32-byte hex string.
func (w *Wallet) PrivateKeyHex() (string, error) {
	privateKey, _, err := w.DeriveKeyPair()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(privateKey.Serialize()), nil
}

// DeriveAddressSet encodes the derived public key as legacy P2PKH, wrapped
// segwit P2SH-P2WPKH and native segwit P2WPKH addresses.
func (w *Wallet) DeriveAddressSet() (AddressSet, error) {
	_, publicKey, err := w.DeriveKeyPair()
	if err != nil {
		return AddressSet{}, err
	}

	pubKeyHash := btcutil.Hash160(publicKey.SerializeCompressed())

	legacy, err := btcutil.NewAddressPubKeyHash(pubKeyHash, w.net)
	if err != nil {
		return AddressSet{}, err
	}

	nativeSegwit, err := btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, w.net)
	if err != nil {
		return AddressSet{}, err
	}

	witnessProgram, err := txscript.PayToAddrScript(nativeSegwit)
	if err != nil {
		return AddressSet{}, err
	}
	segwit, err := btcutil.NewAddressScriptHash(witnessProgram, w.net)
	if err != nil {
		return AddressSet{}, err
	}

	return AddressSet{
		Legacy:       legacy.EncodeAddress(),
		Segwit:       segwit.EncodeAddress(),
		NativeSegwit: nativeSegwit.EncodeAddress(),
	}, nil
}
