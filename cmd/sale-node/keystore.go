package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"fixedsale.dev/node/runtime"
)

// Dev keystore: an ed25519 seed sealed under a passphrase-derived key.
// Operator tooling only; nothing in the ledger depends on this format.

const keystoreVersion = "FPKSv1"

type KeyStoreV1 struct {
	Version   string `json:"version"`
	Pubkey    string `json:"pubkey"` // base58
	KDF       string `json:"kdf"`    // "argon2id"
	SaltHex   string `json:"salt_hex"`
	NonceHex  string `json:"nonce_hex"`
	SealedHex string `json:"sealed_hex"`
}

func sealKey(passphrase string, salt []byte) [32]byte {
	var key [32]byte
	copy(key[:], argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, 32))
	return key
}

func writeKeystore(path, passphrase string) (runtime.Pubkey, error) {
	if passphrase == "" {
		return runtime.Pubkey{}, fmt.Errorf("empty passphrase")
	}
	pub, priv, err := runtime.NewKeypair()
	if err != nil {
		return runtime.Pubkey{}, err
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return runtime.Pubkey{}, err
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return runtime.Pubkey{}, err
	}
	key := sealKey(passphrase, salt)
	sealed := secretbox.Seal(nil, priv.Seed(), &nonce, &key)

	ks := KeyStoreV1{
		Version:   keystoreVersion,
		Pubkey:    pub.String(),
		KDF:       "argon2id",
		SaltHex:   hex.EncodeToString(salt),
		NonceHex:  hex.EncodeToString(nonce[:]),
		SealedHex: hex.EncodeToString(sealed),
	}
	b, err := json.Marshal(ks)
	if err != nil {
		return runtime.Pubkey{}, err
	}
	b = append(b, '\n')
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return runtime.Pubkey{}, err
	}
	return pub, nil
}

func readKeystore(path, passphrase string) (runtime.Pubkey, ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- operator-provided
	if err != nil {
		return runtime.Pubkey{}, nil, err
	}
	var ks KeyStoreV1
	if err := json.Unmarshal(raw, &ks); err != nil {
		return runtime.Pubkey{}, nil, err
	}
	if ks.Version != keystoreVersion {
		return runtime.Pubkey{}, nil, fmt.Errorf("unsupported keystore version: %q", ks.Version)
	}
	if ks.KDF != "argon2id" {
		return runtime.Pubkey{}, nil, fmt.Errorf("unsupported kdf: %q", ks.KDF)
	}

	salt, err := hex.DecodeString(ks.SaltHex)
	if err != nil {
		return runtime.Pubkey{}, nil, fmt.Errorf("salt_hex: %w", err)
	}
	nonceRaw, err := hex.DecodeString(ks.NonceHex)
	if err != nil {
		return runtime.Pubkey{}, nil, fmt.Errorf("nonce_hex: %w", err)
	}
	if len(nonceRaw) != 24 {
		return runtime.Pubkey{}, nil, fmt.Errorf("nonce must be 24 bytes")
	}
	sealed, err := hex.DecodeString(ks.SealedHex)
	if err != nil {
		return runtime.Pubkey{}, nil, fmt.Errorf("sealed_hex: %w", err)
	}

	var nonce [24]byte
	copy(nonce[:], nonceRaw)
	key := sealKey(passphrase, salt)
	seed, ok := secretbox.Open(nil, sealed, &nonce, &key)
	if !ok {
		return runtime.Pubkey{}, nil, fmt.Errorf("keystore open failed: wrong passphrase or corrupt file")
	}
	if len(seed) != ed25519.SeedSize {
		return runtime.Pubkey{}, nil, fmt.Errorf("sealed seed has wrong size")
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := runtime.PubkeyFromPrivate(priv)
	if pub.String() != ks.Pubkey {
		return runtime.Pubkey{}, nil, fmt.Errorf("keystore pubkey mismatch")
	}
	return pub, priv, nil
}
