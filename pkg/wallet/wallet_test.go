package wallet

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestNewWalletFromMnemonic(t *testing.T) {
	wallet, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: testMnemonic,
	})
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, wallet.Mnemonic())
}

func TestFailingNewWalletFromMnemonic(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		err      error
	}{
		{
			name:     "null mnemonic",
			mnemonic: "",
			err:      ErrNullMnemonic,
		},
		{
			name:     "invalid checksum",
			mnemonic: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon",
			err:      ErrInvalidMnemonic,
		},
		{
			name:     "words outside the wordlist",
			mnemonic: "foo bar baz foo bar baz foo bar baz foo bar baz",
			err:      ErrInvalidMnemonic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
				Mnemonic: tt.mnemonic,
			})
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDeriveAddressSet(t *testing.T) {
	wallet, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: testMnemonic,
	})
	require.NoError(t, err)

	addresses, err := wallet.DeriveAddressSet()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(addresses.Legacy, "1"))
	assert.True(t, strings.HasPrefix(addresses.Segwit, "3"))
	assert.True(t, strings.HasPrefix(addresses.NativeSegwit, "bc1"))

	for _, addr := range addresses.All() {
		decoded, err := btcutil.DecodeAddress(addr, &chaincfg.MainNetParams)
		require.NoError(t, err)
		assert.True(t, decoded.IsForNet(&chaincfg.MainNetParams))
	}
}

func TestDerivationIsDeterministic(t *testing.T) {
	newWallet := func() *Wallet {
		w, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
			Mnemonic: testMnemonic,
		})
		require.NoError(t, err)
		return w
	}

	first, second := newWallet(), newWallet()

	firstAddresses, err := first.DeriveAddressSet()
	require.NoError(t, err)
	secondAddresses, err := second.DeriveAddressSet()
	require.NoError(t, err)
	assert.Equal(t, firstAddresses, secondAddresses)

	firstKey, err := first.PrivateKeyHex()
	require.NoError(t, err)
	secondKey, err := second.PrivateKeyHex()
	require.NoError(t, err)
	assert.Equal(t, firstKey, secondKey)
	assert.Len(t, firstKey, 64)
}

func TestDifferentMnemonicsYieldDifferentKeys(t *testing.T) {
	first, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: testMnemonic,
	})
	require.NoError(t, err)
	second, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: "legal winner thank year wave sausage worth useful legal winner thank yellow",
	})
	require.NoError(t, err)

	firstKey, err := first.PrivateKeyHex()
	require.NoError(t, err)
	secondKey, err := second.PrivateKeyHex()
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, secondKey)
}
