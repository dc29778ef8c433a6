package runtime

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// Pubkey is a 32-byte account address. Program-derived addresses share the
// same keyspace but have no corresponding private key.
type Pubkey [32]byte

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func ParsePubkey(s string) (Pubkey, error) {
	var p Pubkey
	raw, err := base58.Decode(s)
	if err != nil {
		return p, fmt.Errorf("pubkey: %w", err)
	}
	if len(raw) != 32 {
		return p, fmt.Errorf("pubkey: want 32 bytes, got %d", len(raw))
	}
	copy(p[:], raw)
	return p, nil
}

// MustParsePubkey is for package-level identity constants.
func MustParsePubkey(s string) Pubkey {
	p, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return p
}

func PubkeyFromPrivate(priv ed25519.PrivateKey) Pubkey {
	var p Pubkey
	copy(p[:], priv.Public().(ed25519.PublicKey))
	return p
}

func NewKeypair() (Pubkey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Pubkey{}, nil, err
	}
	var p Pubkey
	copy(p[:], pub)
	return p, priv, nil
}

// Account is the unit of external state. Data layout is owned by the program
// in Owner; everyone else treats it as opaque bytes.
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      Pubkey
	Executable bool
}

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	return &Account{
		Lamports:   a.Lamports,
		Data:       append([]byte(nil), a.Data...),
		Owner:      a.Owner,
		Executable: a.Executable,
	}
}

// AccountInfo is the view a program gets of one account during execution.
// Mutations go through the shared *Account so that later instructions in the
// same transaction observe them; nothing is committed until the whole
// transaction succeeds.
type AccountInfo struct {
	Key      Pubkey
	Account  *Account
	Signer   bool
	Writable bool
}

func addU64(a, b uint64) (uint64, error) {
	s := a + b
	if s < a {
		return 0, rterr(RUN_ERR_ARITHMETIC_OVERFLOW, "u64 addition overflow")
	}
	return s, nil
}
