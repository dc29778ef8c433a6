package token_test

import (
	"crypto/ed25519"
	"testing"

	"fixedsale.dev/node/runtime"
	"fixedsale.dev/node/token"
)

func newLedger(t *testing.T) *runtime.Runtime {
	t.Helper()
	rt := runtime.New()
	rt.Register(token.ProgramID, token.Process)
	return rt
}

func fundedKey(t *testing.T, rt *runtime.Runtime, lamports uint64) (runtime.Pubkey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := runtime.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	rt.SetAccount(pub, &runtime.Account{Lamports: lamports, Owner: runtime.SystemProgramID})
	return pub, priv
}

func freshKey(t *testing.T) (runtime.Pubkey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := runtime.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	return pub, priv
}

func apply(t *testing.T, rt *runtime.Runtime, keys []ed25519.PrivateKey, ixs ...runtime.Instruction) {
	t.Helper()
	tx := runtime.NewTransaction(ixs...)
	tx.Sign(keys...)
	if err := rt.Apply(tx); err != nil {
		t.Fatalf("Apply: %v", err)
	}
}

func applyErr(t *testing.T, rt *runtime.Runtime, keys []ed25519.PrivateKey, ixs ...runtime.Instruction) error {
	t.Helper()
	tx := runtime.NewTransaction(ixs...)
	tx.Sign(keys...)
	return rt.Apply(tx)
}

func holdingState(t *testing.T, rt *runtime.Runtime, key runtime.Pubkey) *token.Holding {
	t.Helper()
	acct, ok := rt.Account(key)
	if !ok {
		t.Fatalf("holding account %s missing", key)
	}
	h, err := token.DecodeHolding(acct.Data)
	if err != nil {
		t.Fatalf("DecodeHolding: %v", err)
	}
	return h
}

func mintState(t *testing.T, rt *runtime.Runtime, key runtime.Pubkey) *token.Mint {
	t.Helper()
	acct, ok := rt.Account(key)
	if !ok {
		t.Fatalf("mint account %s missing", key)
	}
	m, err := token.DecodeMint(acct.Data)
	if err != nil {
		t.Fatalf("DecodeMint: %v", err)
	}
	return m
}

// setupMint creates and initializes a mint with the given authority.
func setupMint(t *testing.T, rt *runtime.Runtime, funder runtime.Pubkey, funderPriv ed25519.PrivateKey, decimals uint8) runtime.Pubkey {
	t.Helper()
	mint, mintPriv := freshKey(t)
	apply(t, rt, []ed25519.PrivateKey{funderPriv, mintPriv},
		runtime.CreateAccount(funder, mint, runtime.MinimumBalance(token.MintSize), token.MintSize, token.ProgramID),
		token.InitializeMint(mint, funder, decimals),
	)
	return mint
}

func setupHolding(t *testing.T, rt *runtime.Runtime, funder runtime.Pubkey, funderPriv ed25519.PrivateKey, mint, owner runtime.Pubkey) runtime.Pubkey {
	t.Helper()
	holding, holdingPriv := freshKey(t)
	apply(t, rt, []ed25519.PrivateKey{funderPriv, holdingPriv},
		runtime.CreateAccount(funder, holding, runtime.MinimumBalance(token.HoldingSize), token.HoldingSize, token.ProgramID),
		token.InitializeAccount(holding, mint, owner),
	)
	return holding
}

func TestMintAndTransfer(t *testing.T) {
	rt := newLedger(t)
	alice, alicePriv := fundedKey(t, rt, 10_000_000)
	bob, _ := fundedKey(t, rt, 10_000_000)

	mint := setupMint(t, rt, alice, alicePriv, 9)
	aliceHolding := setupHolding(t, rt, alice, alicePriv, mint, alice)
	bobHolding := setupHolding(t, rt, alice, alicePriv, mint, bob)

	apply(t, rt, []ed25519.PrivateKey{alicePriv},
		token.MintTo(mint, aliceHolding, alice, 500),
	)
	if m := mintState(t, rt, mint); m.Supply != 500 || m.Decimals != 9 || !m.Initialized {
		t.Fatalf("unexpected mint state: %+v", m)
	}

	apply(t, rt, []ed25519.PrivateKey{alicePriv},
		token.Transfer(aliceHolding, bobHolding, alice, 200),
	)
	if h := holdingState(t, rt, aliceHolding); h.Amount != 300 {
		t.Fatalf("source balance %d, want 300", h.Amount)
	}
	if h := holdingState(t, rt, bobHolding); h.Amount != 200 {
		t.Fatalf("destination balance %d, want 200", h.Amount)
	}
}

func TestTransferInsufficient(t *testing.T) {
	rt := newLedger(t)
	alice, alicePriv := fundedKey(t, rt, 10_000_000)
	bob, _ := fundedKey(t, rt, 10_000_000)

	mint := setupMint(t, rt, alice, alicePriv, 0)
	aliceHolding := setupHolding(t, rt, alice, alicePriv, mint, alice)
	bobHolding := setupHolding(t, rt, alice, alicePriv, mint, bob)

	apply(t, rt, []ed25519.PrivateKey{alicePriv}, token.MintTo(mint, aliceHolding, alice, 10))

	err := applyErr(t, rt, []ed25519.PrivateKey{alicePriv},
		token.Transfer(aliceHolding, bobHolding, alice, 11),
	)
	if runtime.CodeOf(err) != token.TOK_ERR_FUNDS_INSUFFICIENT {
		t.Fatalf("want TOK_ERR_FUNDS_INSUFFICIENT, got %v", err)
	}
	if h := holdingState(t, rt, aliceHolding); h.Amount != 10 {
		t.Fatalf("failed transfer changed source balance: %d", h.Amount)
	}
}

func TestTransferWrongOwner(t *testing.T) {
	rt := newLedger(t)
	alice, alicePriv := fundedKey(t, rt, 10_000_000)
	bob, bobPriv := fundedKey(t, rt, 10_000_000)

	mint := setupMint(t, rt, alice, alicePriv, 0)
	aliceHolding := setupHolding(t, rt, alice, alicePriv, mint, alice)
	bobHolding := setupHolding(t, rt, alice, alicePriv, mint, bob)

	apply(t, rt, []ed25519.PrivateKey{alicePriv}, token.MintTo(mint, aliceHolding, alice, 10))

	// Bob signs, but alice owns the source.
	err := applyErr(t, rt, []ed25519.PrivateKey{bobPriv},
		token.Transfer(aliceHolding, bobHolding, bob, 5),
	)
	if runtime.CodeOf(err) != token.TOK_ERR_AUTHORITY_MISMATCH {
		t.Fatalf("want TOK_ERR_AUTHORITY_MISMATCH, got %v", err)
	}
}

func TestTransferMintMismatch(t *testing.T) {
	rt := newLedger(t)
	alice, alicePriv := fundedKey(t, rt, 10_000_000)

	mintA := setupMint(t, rt, alice, alicePriv, 0)
	mintB := setupMint(t, rt, alice, alicePriv, 0)
	holdA := setupHolding(t, rt, alice, alicePriv, mintA, alice)
	holdB := setupHolding(t, rt, alice, alicePriv, mintB, alice)

	apply(t, rt, []ed25519.PrivateKey{alicePriv}, token.MintTo(mintA, holdA, alice, 3))

	err := applyErr(t, rt, []ed25519.PrivateKey{alicePriv},
		token.Transfer(holdA, holdB, alice, 1),
	)
	if runtime.CodeOf(err) != token.TOK_ERR_MINT_MISMATCH {
		t.Fatalf("want TOK_ERR_MINT_MISMATCH, got %v", err)
	}
}

func TestSetAuthorityRevoke(t *testing.T) {
	rt := newLedger(t)
	alice, alicePriv := fundedKey(t, rt, 10_000_000)

	mint := setupMint(t, rt, alice, alicePriv, 0)
	holding := setupHolding(t, rt, alice, alicePriv, mint, alice)
	apply(t, rt, []ed25519.PrivateKey{alicePriv}, token.MintTo(mint, holding, alice, 1))

	apply(t, rt, []ed25519.PrivateKey{alicePriv}, token.SetAuthority(mint, alice, nil))
	if m := mintState(t, rt, mint); m.Authority != nil {
		t.Fatalf("authority not revoked: %+v", m)
	}

	// Issuance is over for good.
	err := applyErr(t, rt, []ed25519.PrivateKey{alicePriv}, token.MintTo(mint, holding, alice, 1))
	if runtime.CodeOf(err) != token.TOK_ERR_AUTHORITY_ABSENT {
		t.Fatalf("want TOK_ERR_AUTHORITY_ABSENT, got %v", err)
	}
}

func TestInitializeTwice(t *testing.T) {
	rt := newLedger(t)
	alice, alicePriv := fundedKey(t, rt, 10_000_000)

	mint := setupMint(t, rt, alice, alicePriv, 0)
	err := applyErr(t, rt, []ed25519.PrivateKey{alicePriv},
		token.InitializeMint(mint, alice, 0),
	)
	if runtime.CodeOf(err) != token.TOK_ERR_ALREADY_INITIALIZED {
		t.Fatalf("want TOK_ERR_ALREADY_INITIALIZED, got %v", err)
	}
}

func TestRejectForeignOwnedAccounts(t *testing.T) {
	rt := newLedger(t)
	alice, alicePriv := fundedKey(t, rt, 10_000_000)

	mint := setupMint(t, rt, alice, alicePriv, 0)
	holding := setupHolding(t, rt, alice, alicePriv, mint, alice)

	// A system-owned account dressed up as a holding.
	impostor, _ := freshKey(t)
	fake := token.Holding{Mint: mint, Owner: alice, Amount: 1000, Initialized: true}
	rt.SetAccount(impostor, &runtime.Account{
		Lamports: 1,
		Data:     fake.Encode(),
		Owner:    runtime.SystemProgramID,
	})

	err := applyErr(t, rt, []ed25519.PrivateKey{alicePriv},
		token.Transfer(impostor, holding, alice, 1000),
	)
	if runtime.CodeOf(err) != token.TOK_ERR_OWNER_ILLEGAL {
		t.Fatalf("want TOK_ERR_OWNER_ILLEGAL, got %v", err)
	}
}

func TestStateRoundTrip(t *testing.T) {
	auth := runtime.MustParsePubkey("BMRK2TReyfNK2EcVyQFusMbp3Yg6nQf8jmkUP1v6AQtb")

	m := &token.Mint{Authority: &auth, Supply: 42, Decimals: 9, Initialized: true}
	got, err := token.DecodeMint(m.Encode())
	if err != nil {
		t.Fatalf("DecodeMint: %v", err)
	}
	if got.Authority == nil || *got.Authority != auth || got.Supply != 42 || got.Decimals != 9 || !got.Initialized {
		t.Fatalf("mint round trip mismatch: %+v", got)
	}

	revoked := &token.Mint{Supply: 1, Initialized: true}
	got, err = token.DecodeMint(revoked.Encode())
	if err != nil {
		t.Fatalf("DecodeMint: %v", err)
	}
	if got.Authority != nil {
		t.Fatalf("revoked mint decoded with authority")
	}

	h := &token.Holding{Mint: auth, Owner: auth, Amount: 7, Initialized: true}
	gotH, err := token.DecodeHolding(h.Encode())
	if err != nil {
		t.Fatalf("DecodeHolding: %v", err)
	}
	if *gotH != *h {
		t.Fatalf("holding round trip mismatch: %+v", gotH)
	}

	if _, err := token.DecodeMint(make([]byte, 5)); err == nil {
		t.Fatalf("short mint data accepted")
	}
	if _, err := token.DecodeHolding(make([]byte, token.HoldingSize+1)); err == nil {
		t.Fatalf("oversized holding data accepted")
	}
}
