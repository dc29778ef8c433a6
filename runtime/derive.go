package runtime

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
)

// deriveDomain separates derived addresses from hashes of anything else.
var deriveDomain = []byte("ProgramDerivedAddress")

// CreateAddress computes the address reachable from seeds under program, and
// fails if the result lands on the Edwards curve (an address someone could
// hold a private key for must never pass as program-derived).
func CreateAddress(seeds [][]byte, program Pubkey) (Pubkey, error) {
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > 32 {
			return Pubkey{}, rterr(RUN_ERR_SEEDS_INVALID, "seed longer than 32 bytes")
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write(deriveDomain)

	var out Pubkey
	copy(out[:], h.Sum(nil))
	if onCurve(out) {
		return Pubkey{}, rterr(RUN_ERR_ADDRESS_ON_CURVE, "derived address is on curve")
	}
	return out, nil
}

// FindAddress searches bump values from 255 downward for the first off-curve
// address. Both sides of the protocol must call this with identical inputs;
// determinism is what replaces signature-based authorization for derived
// accounts.
func FindAddress(seeds [][]byte, program Pubkey) (Pubkey, uint8, error) {
	bumped := make([][]byte, len(seeds)+1)
	copy(bumped, seeds)
	for bump := 255; bump >= 0; bump-- {
		bumped[len(seeds)] = []byte{uint8(bump)}
		addr, err := CreateAddress(bumped, program)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if CodeOf(err) != RUN_ERR_ADDRESS_ON_CURVE {
			return Pubkey{}, 0, err
		}
	}
	return Pubkey{}, 0, rterr(RUN_ERR_SEEDS_INVALID, "no viable bump")
}

func onCurve(p Pubkey) bool {
	_, err := new(edwards25519.Point).SetBytes(p[:])
	return err == nil
}
