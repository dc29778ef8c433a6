package sale

import (
	"fixedsale.dev/node/runtime"
	"fixedsale.dev/node/token"
)

// Stateless predicates over freshly decoded external state. Each returns a
// specific failure kind; none caches anything between calls.

// validateNonFungible accepts only a finished one-of-one asset: supply
// exactly 1, no fractional units, and no authority left that could ever mint
// another.
func validateNonFungible(m *token.Mint) error {
	if m.Authority != nil || m.Supply != 1 || !m.Initialized || m.Decimals != 0 {
		return salerr(SALE_ERR_ACCOUNT_DATA_INVALID, "mint is not a qualifying non-fungible asset")
	}
	return nil
}

// validateCustody proves the asset already sits in escrow: the presented
// holding account is owned by the derived vault authority for this mint and
// carries exactly the one unit.
func validateCustody(mint runtime.Pubkey, h *token.Holding) error {
	vaultAddr, _ := FindVaultAddress(mint)
	if h.Owner != vaultAddr || h.Amount != 1 || h.Mint != mint || !h.Initialized {
		return salerr(SALE_ERR_ACCOUNT_DATA_INVALID, "asset is not in the custodial holding account")
	}
	return nil
}

// validatePaymentDest requires only initialization: any holder may receive
// payment.
func validatePaymentDest(h *token.Holding) error {
	if !h.Initialized {
		return salerr(SALE_ERR_ACCOUNT_UNINITIALIZED, "payment destination not initialized")
	}
	return nil
}

// validateRecordOwner rejects fabricated or foreign-owned listing records
// before a single byte of their contents is trusted.
func validateRecordOwner(program runtime.Pubkey, info *runtime.AccountInfo) error {
	if info.Account.Owner != program {
		return salerr(SALE_ERR_OWNER_ILLEGAL, "listing record not owned by this program")
	}
	return nil
}

// checkLedgerAccount requires that the token ledger owns the account, i.e.
// its data really is mint/holding state and not an imitation.
func checkLedgerAccount(info *runtime.AccountInfo) error {
	if info.Account.Owner != token.ProgramID {
		return salerr(SALE_ERR_PROGRAM_MISMATCH, "account not owned by the token ledger")
	}
	return nil
}
