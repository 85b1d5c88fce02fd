package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddressSet maps every supported script type to the address encoding of one
// candidate's public key. It always carries exactly 3 entries, all derived
// from the same underlying key pair.
type AddressSet struct {
	Legacy       string
	Segwit       string
	NativeSegwit string
}

// ToMap returns the set keyed by address type.
func (a AddressSet) ToMap() map[string]string {
	return map[string]string{
		AddressTypeLegacy:       a.Legacy,
		AddressTypeSegwit:       a.Segwit,
		AddressTypeNativeSegwit: a.NativeSegwit,
	}
}

// Result is a candidate whose summed balance exceeded the session minimum.
type Result struct {
	SessionID    string
	Mnemonic     string
	PrivateKey   string
	Addresses    AddressSet
	Balances     map[string]decimal.Decimal
	TotalBalance decimal.Decimal
	// FoundAt is the 1-based index of the candidate at which the wallet was
	// found within its session.
	FoundAt   int
	CreatedAt time.Time
}
