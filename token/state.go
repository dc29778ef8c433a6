// Package token is the fungible-asset ledger: mints define an asset, holding
// accounts carry balances, and transfers move them. The sale program depends
// on it only through instructions and these two state layouts.
package token

import (
	"encoding/binary"

	"fixedsale.dev/node/runtime"
)

// ProgramID identifies the token ledger program.
var ProgramID = runtime.MustParsePubkey("5omKSKrjiV17G3TuJpV3wqtiTH6T4ou6wx1B8dFWgN6M")

const (
	// MintSize layout:
	// authority_present u8 | authority 32 | supply u64le | decimals u8 | initialized u8
	MintSize = 1 + 32 + 8 + 1 + 1

	// HoldingSize layout:
	// mint 32 | owner 32 | amount u64le | initialized u8
	HoldingSize = 32 + 32 + 8 + 1
)

// Mint is an asset definition. A non-fungible asset is a mint with supply 1,
// zero decimals, and no remaining authority.
type Mint struct {
	Authority   *runtime.Pubkey
	Supply      uint64
	Decimals    uint8
	Initialized bool
}

func (m *Mint) Encode() []byte {
	out := make([]byte, MintSize)
	if m.Authority != nil {
		out[0] = 1
		copy(out[1:33], m.Authority[:])
	}
	binary.LittleEndian.PutUint64(out[33:41], m.Supply)
	out[41] = m.Decimals
	if m.Initialized {
		out[42] = 1
	}
	return out
}

func DecodeMint(b []byte) (*Mint, error) {
	if len(b) != MintSize {
		return nil, tokerr(TOK_ERR_ACCOUNT_DATA_INVALID, "mint account has wrong size")
	}
	m := &Mint{
		Supply:      binary.LittleEndian.Uint64(b[33:41]),
		Decimals:    b[41],
		Initialized: b[42] == 1,
	}
	switch b[0] {
	case 0:
	case 1:
		var auth runtime.Pubkey
		copy(auth[:], b[1:33])
		m.Authority = &auth
	default:
		return nil, tokerr(TOK_ERR_ACCOUNT_DATA_INVALID, "mint authority tag invalid")
	}
	return m, nil
}

// Holding is one party's balance of one mint.
type Holding struct {
	Mint        runtime.Pubkey
	Owner       runtime.Pubkey
	Amount      uint64
	Initialized bool
}

func (h *Holding) Encode() []byte {
	out := make([]byte, HoldingSize)
	copy(out[0:32], h.Mint[:])
	copy(out[32:64], h.Owner[:])
	binary.LittleEndian.PutUint64(out[64:72], h.Amount)
	if h.Initialized {
		out[72] = 1
	}
	return out
}

func DecodeHolding(b []byte) (*Holding, error) {
	if len(b) != HoldingSize {
		return nil, tokerr(TOK_ERR_ACCOUNT_DATA_INVALID, "holding account has wrong size")
	}
	h := &Holding{
		Amount:      binary.LittleEndian.Uint64(b[64:72]),
		Initialized: b[72] == 1,
	}
	copy(h.Mint[:], b[0:32])
	copy(h.Owner[:], b[32:64])
	return h, nil
}
