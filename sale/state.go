package sale

import (
	"github.com/near/borsh-go"

	"fixedsale.dev/node/runtime"
)

// ListingSize is the exact serialized length of a Listing. The record account
// is allocated to this size and never grows.
const ListingSize = 32 + 32 + 8 + 32 + 32

// Listing is the escrow record for one asset currently on sale. Written once
// at listing time, never mutated, destroyed at purchase time. Field order is
// the wire layout; there is no version field — a schema change means a new
// derivation tag and opcode.
type Listing struct {
	// Seller address.
	Seller runtime.Pubkey
	// Mint of the asset on sale.
	Mint runtime.Pubkey
	// Asking price in lamports.
	Lamports uint64
	// Seller's payment holding account.
	Payment runtime.Pubkey
	// Custodial holding account carrying the one asset unit.
	Item runtime.Pubkey
}

func (l *Listing) Encode() ([]byte, error) {
	out, err := borsh.Serialize(*l)
	if err != nil {
		return nil, salerr(SALE_ERR_ACCOUNT_DATA_INVALID, "listing encode: "+err.Error())
	}
	return out, nil
}

func DecodeListing(b []byte) (*Listing, error) {
	if len(b) != ListingSize {
		return nil, salerr(SALE_ERR_ACCOUNT_DATA_INVALID, "listing record has wrong size")
	}
	var l Listing
	if err := borsh.Deserialize(&l, b); err != nil {
		return nil, salerr(SALE_ERR_ACCOUNT_DATA_INVALID, "listing decode: "+err.Error())
	}
	return &l, nil
}
