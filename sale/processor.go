package sale

import (
	"fixedsale.dev/node/runtime"
	"fixedsale.dev/node/token"
)

// Process is the program entrypoint.
func Process(host runtime.Host, program runtime.Pubkey, accounts []*runtime.AccountInfo, data []byte) error {
	op, args, err := Unpack(data)
	if err != nil {
		return err
	}
	switch op {
	case OpList:
		return sell(host, program, accounts, args)
	case OpPurchase:
		return buy(host, accounts, program)
	}
	return salerr(SALE_ERR_INSTRUCTION_INVALID, "unknown opcode")
}

// sell validates the world state and creates the listing record. It does not
// move the asset: the seller must have transferred it to the custodial
// holding account already, under their own authority, and sell only verifies
// that before recording the sale.
//
// Account order: seller (signer), custodial holding, mint, listing record
// address, seller payment account, system allocator.
func sell(host runtime.Host, program runtime.Pubkey, accounts []*runtime.AccountInfo, args Args) error {
	if len(accounts) < 6 {
		return salerr(SALE_ERR_ACCOUNT_MISSING, "sell expects 6 accounts")
	}
	seller := accounts[0]
	vaultHolding := accounts[1]
	mint := accounts[2]
	listing := accounts[3]
	sellerPayment := accounts[4]

	if args.Lamports == nil || args.ListingBump == nil {
		return salerr(SALE_ERR_INSTRUCTION_INVALID, "sell requires lamports and listing bump")
	}

	for _, info := range []*runtime.AccountInfo{mint, vaultHolding, sellerPayment} {
		if err := checkLedgerAccount(info); err != nil {
			return err
		}
	}

	mintState, err := token.DecodeMint(mint.Account.Data)
	if err != nil {
		return salerr(SALE_ERR_ACCOUNT_DATA_INVALID, "mint account undecodable")
	}
	if err := validateNonFungible(mintState); err != nil {
		return err
	}

	holding, err := token.DecodeHolding(vaultHolding.Account.Data)
	if err != nil {
		return salerr(SALE_ERR_ACCOUNT_DATA_INVALID, "custodial holding account undecodable")
	}
	if err := validateCustody(mint.Key, holding); err != nil {
		return err
	}

	payment, err := token.DecodeHolding(sellerPayment.Account.Data)
	if err != nil {
		return salerr(SALE_ERR_ACCOUNT_DATA_INVALID, "payment account undecodable")
	}
	if err := validatePaymentDest(payment); err != nil {
		return err
	}

	record := Listing{
		Seller:   seller.Key,
		Mint:     mint.Key,
		Lamports: *args.Lamports,
		Payment:  sellerPayment.Key,
		Item:     vaultHolding.Key,
	}
	encoded, err := record.Encode()
	if err != nil {
		return err
	}

	// Allocate the record at the derived address, funded by the seller with
	// the storage-exempt minimum, owned by this program. The address has no
	// private key; the seed group plus bump stands in for its signature. If
	// the asset is already listed the address is in use and this fails.
	rent := host.MinimumBalance(len(encoded))
	err = host.InvokeSigned(
		runtime.CreateAccount(seller.Key, listing.Key, rent, uint32(len(encoded)), program),
		[][]byte{listingSeed, mint.Key[:], {*args.ListingBump}},
	)
	if err != nil {
		return err
	}

	copy(listing.Account.Data, encoded)
	return nil
}

// buy performs the swap. Order matters: payment first under the buyer's own
// signature, then the asset release under the vault's seed authority, then
// record destruction. The runtime commits all of it or none of it.
//
// Account order: buyer (signer), buyer payment account, buyer asset account,
// custodial holding, seller payment account, listing record, token ledger
// program, vault authority.
func buy(host runtime.Host, accounts []*runtime.AccountInfo, program runtime.Pubkey) error {
	if len(accounts) < 8 {
		return salerr(SALE_ERR_ACCOUNT_MISSING, "buy expects 8 accounts")
	}
	buyer := accounts[0]
	buyerPayment := accounts[1]
	buyerItem := accounts[2]
	listing := accounts[5]

	if err := validateRecordOwner(program, listing); err != nil {
		return err
	}
	record, err := DecodeListing(listing.Account.Data)
	if err != nil {
		return err
	}

	// Price moves buyer -> seller, authorized by the buyer's signature. An
	// insufficient balance aborts everything here.
	err = host.Invoke(token.Transfer(buyerPayment.Key, record.Payment, buyer.Key, record.Lamports))
	if err != nil {
		return err
	}

	// The one place this program exercises its custodial authority: the
	// asset leaves the vault under seed authorization, not a signature.
	vaultAddr, bump := FindVaultAddress(record.Mint)
	err = host.InvokeSigned(
		token.Transfer(record.Item, buyerItem.Key, vaultAddr, 1),
		[][]byte{vaultSeed, record.Mint[:], {bump}},
	)
	if err != nil {
		return err
	}

	// Destroy the record: storage deposit to the buyer, data zeroed. The
	// runtime reclaims the emptied account when the transaction commits.
	total, err := addU64(buyer.Account.Lamports, listing.Account.Lamports)
	if err != nil {
		return err
	}
	buyer.Account.Lamports = total
	listing.Account.Lamports = 0
	for i := range listing.Account.Data {
		listing.Account.Data[i] = 0
	}
	return nil
}
