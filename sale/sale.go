// Package sale implements the fixed-price escrow program: one non-fungible
// asset, deposited into a program-controlled vault by its seller, swapped
// atomically for the asking price by the first buyer.
//
// The program holds no state of its own between invocations. Every rule is
// re-derived from the accounts supplied with each instruction; the hosting
// runtime guarantees that a failing instruction leaves no trace.
package sale

import "fixedsale.dev/node/runtime"

// ProgramID is the program's fixed, well-known identity. Listing records are
// valid only when owned by it.
var ProgramID = runtime.MustParsePubkey("BMRK2TReyfNK2EcVyQFusMbp3Yg6nQf8jmkUP1v6AQtb")

// Derivation tags. One per derived entity so the listing record and the
// vault's authority can never collide.
var (
	listingSeed = []byte("listing")
	vaultSeed   = []byte("vault")
)

// FindListingAddress derives where the listing record for mint lives. Anyone
// can reproduce it; the program re-derives it on every use.
func FindListingAddress(mint runtime.Pubkey) (runtime.Pubkey, uint8) {
	return findAddress(listingSeed, mint)
}

// FindVaultAddress derives the keyless authority that owns the custodial
// holding account for mint.
func FindVaultAddress(mint runtime.Pubkey) (runtime.Pubkey, uint8) {
	return findAddress(vaultSeed, mint)
}

func findAddress(tag []byte, mint runtime.Pubkey) (runtime.Pubkey, uint8) {
	addr, bump, err := runtime.FindAddress([][]byte{tag, mint[:]}, ProgramID)
	if err != nil {
		// Requires all 256 bump candidates to land on the curve.
		panic(err)
	}
	return addr, bump
}
