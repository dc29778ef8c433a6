// sale-node is the operator CLI for a local fixed-price sale ledger: it keeps
// accounts in a bbolt database and pushes signed transactions through the
// runtime one at a time.
package main

import (
	"crypto/ed25519"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"fixedsale.dev/node/runtime"
	"fixedsale.dev/node/sale"
	"fixedsale.dev/node/store"
	"fixedsale.dev/node/token"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "keygen":
		err = cmdKeygen(os.Args[2:])
	case "init":
		err = cmdInit(os.Args[2:])
	case "fund":
		err = cmdFund(os.Args[2:])
	case "mint-nft":
		err = cmdMintNFT(os.Args[2:])
	case "mint-pay":
		err = cmdMintPay(os.Args[2:])
	case "issue":
		err = cmdIssue(os.Args[2:])
	case "holding":
		err = cmdHolding(os.Args[2:])
	case "list":
		err = cmdList(os.Args[2:])
	case "buy":
		err = cmdBuy(os.Args[2:])
	case "show":
		err = cmdShow(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "sale-node %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	_, _ = fmt.Fprintln(os.Stderr, `usage: sale-node <command> [flags]

commands:
  keygen    write a passphrase-protected keystore
  init      create a ledger and fund a faucet key
  fund      move lamports between system accounts
  mint-nft  mint a one-of-one asset to the keystore holder
  mint-pay  create a payment mint controlled by the keystore holder
  issue     create a holding account and mint payment units into it
  holding   create an empty holding account
  list      put an asset up for sale at a fixed price
  buy       buy the listed asset
  show      inspect the listing for a mint`)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openLedger loads the persisted accounts into a fresh runtime with the
// protocol's programs registered.
func openLedger(datadir string) (*store.DB, *runtime.Runtime, error) {
	db, err := store.Open(datadir)
	if err != nil {
		return nil, nil, err
	}
	accounts, err := db.LoadAccounts()
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	rt := runtime.New()
	rt.Register(token.ProgramID, token.Process)
	rt.Register(sale.ProgramID, sale.Process)
	for key, acct := range accounts {
		rt.SetAccount(key, acct)
	}
	return db, rt, nil
}

func commit(db *store.DB, rt *runtime.Runtime) error {
	return db.SaveAccounts(rt.Accounts())
}

func applyAndCommit(db *store.DB, rt *runtime.Runtime, tx *runtime.Transaction) error {
	if err := rt.Apply(tx); err != nil {
		return err
	}
	return commit(db, rt)
}

func cmdKeygen(argv []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	out := fs.String("out", "", "output keystore json path")
	passphrase := fs.String("passphrase", "", "sealing passphrase")
	_ = fs.Parse(argv)
	if *out == "" || *passphrase == "" {
		return fmt.Errorf("missing required flags: --out --passphrase")
	}
	pub, err := writeKeystore(*out, *passphrase)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"pubkey": pub.String(), "keystore": *out})
}

func cmdInit(argv []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	datadir := fs.String("datadir", defaultDataDir(), "ledger data directory")
	faucet := fs.String("faucet", "", "faucet pubkey (base58)")
	lamports := fs.Uint64("lamports", 1_000_000_000_000, "faucet starting balance")
	_ = fs.Parse(argv)
	if *faucet == "" {
		return fmt.Errorf("missing required flag: --faucet")
	}
	key, err := runtime.ParsePubkey(*faucet)
	if err != nil {
		return err
	}

	db, rt, err := openLedger(*datadir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// Genesis write: the faucet balance is installed directly, not through a
	// transaction; there is nothing to pay it from yet.
	rt.SetAccount(key, &runtime.Account{Lamports: *lamports, Owner: runtime.SystemProgramID})
	if err := commit(db, rt); err != nil {
		return err
	}
	if err := db.PutMeta("faucet", key[:]); err != nil {
		return err
	}
	return printJSON(map[string]any{"datadir": db.Dir(), "faucet": key.String(), "lamports": *lamports})
}

func cmdFund(argv []string) error {
	fs := flag.NewFlagSet("fund", flag.ExitOnError)
	datadir := fs.String("datadir", defaultDataDir(), "ledger data directory")
	keystore := fs.String("keystore", "", "sender keystore path")
	passphrase := fs.String("passphrase", "", "keystore passphrase")
	to := fs.String("to", "", "recipient pubkey (base58)")
	lamports := fs.Uint64("lamports", 0, "amount to transfer")
	_ = fs.Parse(argv)
	if *keystore == "" || *passphrase == "" || *to == "" || *lamports == 0 {
		return fmt.Errorf("missing required flags: --keystore --passphrase --to --lamports")
	}
	from, priv, err := readKeystore(*keystore, *passphrase)
	if err != nil {
		return err
	}
	dest, err := runtime.ParsePubkey(*to)
	if err != nil {
		return err
	}

	db, rt, err := openLedger(*datadir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	tx := runtime.NewTransaction(runtime.Transfer(from, dest, *lamports))
	tx.Sign(priv)
	if err := applyAndCommit(db, rt, tx); err != nil {
		return err
	}
	return printJSON(map[string]any{"from": from.String(), "to": dest.String(), "lamports": *lamports})
}

// cmdMintNFT creates a fresh mint, a holding account for the keystore holder,
// mints the single unit, and revokes the mint authority — one transaction.
func cmdMintNFT(argv []string) error {
	fs := flag.NewFlagSet("mint-nft", flag.ExitOnError)
	datadir := fs.String("datadir", defaultDataDir(), "ledger data directory")
	keystore := fs.String("keystore", "", "owner keystore path")
	passphrase := fs.String("passphrase", "", "keystore passphrase")
	_ = fs.Parse(argv)
	if *keystore == "" || *passphrase == "" {
		return fmt.Errorf("missing required flags: --keystore --passphrase")
	}
	owner, ownerPriv, err := readKeystore(*keystore, *passphrase)
	if err != nil {
		return err
	}

	mint, mintPriv, err := runtime.NewKeypair()
	if err != nil {
		return err
	}
	holding, holdingPriv, err := runtime.NewKeypair()
	if err != nil {
		return err
	}

	db, rt, err := openLedger(*datadir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	tx := runtime.NewTransaction(
		runtime.CreateAccount(owner, mint, runtime.MinimumBalance(token.MintSize), token.MintSize, token.ProgramID),
		token.InitializeMint(mint, owner, 0),
		runtime.CreateAccount(owner, holding, runtime.MinimumBalance(token.HoldingSize), token.HoldingSize, token.ProgramID),
		token.InitializeAccount(holding, mint, owner),
		token.MintTo(mint, holding, owner, 1),
		token.SetAuthority(mint, owner, nil),
	)
	tx.Sign(ownerPriv, mintPriv, holdingPriv)
	if err := applyAndCommit(db, rt, tx); err != nil {
		return err
	}
	return printJSON(map[string]string{"mint": mint.String(), "holding": holding.String(), "owner": owner.String()})
}

func cmdMintPay(argv []string) error {
	fs := flag.NewFlagSet("mint-pay", flag.ExitOnError)
	datadir := fs.String("datadir", defaultDataDir(), "ledger data directory")
	keystore := fs.String("keystore", "", "authority keystore path")
	passphrase := fs.String("passphrase", "", "keystore passphrase")
	decimals := fs.Uint("decimals", 9, "fractional precision of the payment asset")
	_ = fs.Parse(argv)
	if *keystore == "" || *passphrase == "" {
		return fmt.Errorf("missing required flags: --keystore --passphrase")
	}
	if *decimals > 255 {
		return fmt.Errorf("decimals out of range")
	}
	authority, authorityPriv, err := readKeystore(*keystore, *passphrase)
	if err != nil {
		return err
	}
	mint, mintPriv, err := runtime.NewKeypair()
	if err != nil {
		return err
	}

	db, rt, err := openLedger(*datadir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	tx := runtime.NewTransaction(
		runtime.CreateAccount(authority, mint, runtime.MinimumBalance(token.MintSize), token.MintSize, token.ProgramID),
		token.InitializeMint(mint, authority, uint8(*decimals)),
	)
	tx.Sign(authorityPriv, mintPriv)
	if err := applyAndCommit(db, rt, tx); err != nil {
		return err
	}
	return printJSON(map[string]string{"mint": mint.String(), "authority": authority.String()})
}

func newHolding(db *store.DB, rt *runtime.Runtime, funder runtime.Pubkey, funderPriv ed25519.PrivateKey, mint, owner runtime.Pubkey) (runtime.Pubkey, error) {
	holding, holdingPriv, err := runtime.NewKeypair()
	if err != nil {
		return runtime.Pubkey{}, err
	}
	tx := runtime.NewTransaction(
		runtime.CreateAccount(funder, holding, runtime.MinimumBalance(token.HoldingSize), token.HoldingSize, token.ProgramID),
		token.InitializeAccount(holding, mint, owner),
	)
	tx.Sign(funderPriv, holdingPriv)
	if err := applyAndCommit(db, rt, tx); err != nil {
		return runtime.Pubkey{}, err
	}
	return holding, nil
}

func cmdHolding(argv []string) error {
	fs := flag.NewFlagSet("holding", flag.ExitOnError)
	datadir := fs.String("datadir", defaultDataDir(), "ledger data directory")
	keystore := fs.String("keystore", "", "funder keystore path")
	passphrase := fs.String("passphrase", "", "keystore passphrase")
	mintFlag := fs.String("mint", "", "mint pubkey (base58)")
	ownerFlag := fs.String("owner", "", "holding owner pubkey (base58), defaults to the keystore holder")
	_ = fs.Parse(argv)
	if *keystore == "" || *passphrase == "" || *mintFlag == "" {
		return fmt.Errorf("missing required flags: --keystore --passphrase --mint")
	}
	funder, funderPriv, err := readKeystore(*keystore, *passphrase)
	if err != nil {
		return err
	}
	mint, err := runtime.ParsePubkey(*mintFlag)
	if err != nil {
		return err
	}
	owner := funder
	if *ownerFlag != "" {
		owner, err = runtime.ParsePubkey(*ownerFlag)
		if err != nil {
			return err
		}
	}

	db, rt, err := openLedger(*datadir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	holding, err := newHolding(db, rt, funder, funderPriv, mint, owner)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"holding": holding.String(), "mint": mint.String(), "owner": owner.String()})
}

func cmdIssue(argv []string) error {
	fs := flag.NewFlagSet("issue", flag.ExitOnError)
	datadir := fs.String("datadir", defaultDataDir(), "ledger data directory")
	keystore := fs.String("keystore", "", "mint authority keystore path")
	passphrase := fs.String("passphrase", "", "keystore passphrase")
	mintFlag := fs.String("mint", "", "payment mint pubkey (base58)")
	ownerFlag := fs.String("owner", "", "recipient owner pubkey (base58)")
	amount := fs.Uint64("amount", 0, "units to mint")
	_ = fs.Parse(argv)
	if *keystore == "" || *passphrase == "" || *mintFlag == "" || *ownerFlag == "" || *amount == 0 {
		return fmt.Errorf("missing required flags: --keystore --passphrase --mint --owner --amount")
	}
	authority, authorityPriv, err := readKeystore(*keystore, *passphrase)
	if err != nil {
		return err
	}
	mint, err := runtime.ParsePubkey(*mintFlag)
	if err != nil {
		return err
	}
	owner, err := runtime.ParsePubkey(*ownerFlag)
	if err != nil {
		return err
	}

	db, rt, err := openLedger(*datadir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	holding, err := newHolding(db, rt, authority, authorityPriv, mint, owner)
	if err != nil {
		return err
	}
	tx := runtime.NewTransaction(token.MintTo(mint, holding, authority, *amount))
	tx.Sign(authorityPriv)
	if err := applyAndCommit(db, rt, tx); err != nil {
		return err
	}
	return printJSON(map[string]any{"holding": holding.String(), "owner": owner.String(), "amount": *amount})
}

// cmdList deposits the asset into the custodial vault and publishes the
// listing in a single transaction: create the vault holding owned by the
// derived authority, move the unit in, then the List instruction.
func cmdList(argv []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	datadir := fs.String("datadir", defaultDataDir(), "ledger data directory")
	keystore := fs.String("keystore", "", "seller keystore path")
	passphrase := fs.String("passphrase", "", "keystore passphrase")
	mintFlag := fs.String("mint", "", "asset mint pubkey (base58)")
	itemFlag := fs.String("item", "", "seller holding carrying the asset (base58)")
	paymentFlag := fs.String("payment", "", "seller payment holding (base58)")
	price := fs.Uint64("price", 0, "asking price in lamports")
	_ = fs.Parse(argv)
	if *keystore == "" || *passphrase == "" || *mintFlag == "" || *itemFlag == "" || *paymentFlag == "" || *price == 0 {
		return fmt.Errorf("missing required flags: --keystore --passphrase --mint --item --payment --price")
	}
	seller, sellerPriv, err := readKeystore(*keystore, *passphrase)
	if err != nil {
		return err
	}
	mint, err := runtime.ParsePubkey(*mintFlag)
	if err != nil {
		return err
	}
	item, err := runtime.ParsePubkey(*itemFlag)
	if err != nil {
		return err
	}
	payment, err := runtime.ParsePubkey(*paymentFlag)
	if err != nil {
		return err
	}

	vaultHolding, vaultHoldingPriv, err := runtime.NewKeypair()
	if err != nil {
		return err
	}
	vaultAddr, _ := sale.FindVaultAddress(mint)
	listingAddr, _ := sale.FindListingAddress(mint)

	db, rt, err := openLedger(*datadir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	tx := runtime.NewTransaction(
		runtime.CreateAccount(seller, vaultHolding, runtime.MinimumBalance(token.HoldingSize), token.HoldingSize, token.ProgramID),
		token.InitializeAccount(vaultHolding, mint, vaultAddr),
		token.Transfer(item, vaultHolding, seller, 1),
		sale.List(seller, vaultHolding, mint, payment, *price),
	)
	tx.Sign(sellerPriv, vaultHoldingPriv)
	if err := applyAndCommit(db, rt, tx); err != nil {
		return err
	}
	return printJSON(map[string]any{
		"listing": listingAddr.String(),
		"vault":   vaultHolding.String(),
		"mint":    mint.String(),
		"price":   *price,
	})
}

func cmdBuy(argv []string) error {
	fs := flag.NewFlagSet("buy", flag.ExitOnError)
	datadir := fs.String("datadir", defaultDataDir(), "ledger data directory")
	keystore := fs.String("keystore", "", "buyer keystore path")
	passphrase := fs.String("passphrase", "", "keystore passphrase")
	mintFlag := fs.String("mint", "", "asset mint pubkey (base58)")
	itemFlag := fs.String("item", "", "buyer holding to receive the asset (base58)")
	paymentFlag := fs.String("payment", "", "buyer payment holding (base58)")
	_ = fs.Parse(argv)
	if *keystore == "" || *passphrase == "" || *mintFlag == "" || *itemFlag == "" || *paymentFlag == "" {
		return fmt.Errorf("missing required flags: --keystore --passphrase --mint --item --payment")
	}
	buyer, buyerPriv, err := readKeystore(*keystore, *passphrase)
	if err != nil {
		return err
	}
	mint, err := runtime.ParsePubkey(*mintFlag)
	if err != nil {
		return err
	}
	item, err := runtime.ParsePubkey(*itemFlag)
	if err != nil {
		return err
	}
	payment, err := runtime.ParsePubkey(*paymentFlag)
	if err != nil {
		return err
	}

	db, rt, err := openLedger(*datadir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	listingAddr, _ := sale.FindListingAddress(mint)
	vaultAddr, _ := sale.FindVaultAddress(mint)
	acct, ok := rt.Account(listingAddr)
	if !ok {
		return fmt.Errorf("no listing for mint %s", mint)
	}
	record, err := sale.DecodeListing(acct.Data)
	if err != nil {
		return err
	}

	tx := runtime.NewTransaction(sale.Purchase(
		buyer, payment, item, record.Item, record.Payment, listingAddr, vaultAddr,
	))
	tx.Sign(buyerPriv)
	if err := applyAndCommit(db, rt, tx); err != nil {
		return err
	}
	return printJSON(map[string]any{
		"mint":  mint.String(),
		"buyer": buyer.String(),
		"paid":  record.Lamports,
	})
}

func cmdShow(argv []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	datadir := fs.String("datadir", defaultDataDir(), "ledger data directory")
	mintFlag := fs.String("mint", "", "asset mint pubkey (base58)")
	_ = fs.Parse(argv)
	if *mintFlag == "" {
		return fmt.Errorf("missing required flag: --mint")
	}
	mint, err := runtime.ParsePubkey(*mintFlag)
	if err != nil {
		return err
	}

	db, rt, err := openLedger(*datadir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	listingAddr, _ := sale.FindListingAddress(mint)
	acct, ok := rt.Account(listingAddr)
	if !ok {
		return printJSON(map[string]any{"mint": mint.String(), "listed": false})
	}
	record, err := sale.DecodeListing(acct.Data)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"mint":    mint.String(),
		"listed":  true,
		"listing": listingAddr.String(),
		"seller":  record.Seller.String(),
		"price":   record.Lamports,
		"payment": record.Payment.String(),
		"item":    record.Item.String(),
	})
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sale-node"
	}
	return home + "/.sale-node"
}
