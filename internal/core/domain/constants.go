package domain

const (
	// MnemonicLength is the number of words of the mnemonics handled by the
	// recovery engine.
	MnemonicLength = 12

	// AddressTypeLegacy is the P2PKH encoding (1...).
	AddressTypeLegacy = "legacy"
	// AddressTypeSegwit is the P2SH-P2WPKH encoding (3...).
	AddressTypeSegwit = "segwit"
	// AddressTypeNativeSegwit is the bech32 P2WPKH encoding (bc1...).
	AddressTypeNativeSegwit = "native_segwit"
)

// AddressTypes lists the supported address encodings in a stable order.
var AddressTypes = []string{
	AddressTypeLegacy,
	AddressTypeSegwit,
	AddressTypeNativeSegwit,
}
