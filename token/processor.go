package token

import (
	"encoding/binary"

	"fixedsale.dev/node/runtime"
)

// Process is the token program entrypoint. Every rule is re-checked from the
// supplied accounts on every call; nothing is remembered between calls.
func Process(_ runtime.Host, program runtime.Pubkey, accounts []*runtime.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return tokerr(TOK_ERR_INSTRUCTION_INVALID, "empty instruction data")
	}
	switch data[0] {
	case opInitializeMint:
		return initializeMint(program, accounts, data[1:])
	case opInitializeAccount:
		return initializeAccount(program, accounts)
	case opMintTo:
		return mintTo(program, accounts, data[1:])
	case opSetAuthority:
		return setAuthority(program, accounts, data[1:])
	case opTransfer:
		return transfer(program, accounts, data[1:])
	}
	return tokerr(TOK_ERR_INSTRUCTION_INVALID, "unknown token opcode")
}

func ownedMint(program runtime.Pubkey, info *runtime.AccountInfo) (*Mint, error) {
	if info.Account.Owner != program {
		return nil, tokerr(TOK_ERR_OWNER_ILLEGAL, "mint account not owned by token program")
	}
	return DecodeMint(info.Account.Data)
}

func ownedHolding(program runtime.Pubkey, info *runtime.AccountInfo) (*Holding, error) {
	if info.Account.Owner != program {
		return nil, tokerr(TOK_ERR_OWNER_ILLEGAL, "holding account not owned by token program")
	}
	return DecodeHolding(info.Account.Data)
}

func initializeMint(program runtime.Pubkey, accounts []*runtime.AccountInfo, args []byte) error {
	if len(accounts) < 1 {
		return tokerr(TOK_ERR_INSTRUCTION_INVALID, "initialize_mint needs the mint account")
	}
	if len(args) != 1+32 {
		return tokerr(TOK_ERR_INSTRUCTION_INVALID, "initialize_mint args malformed")
	}
	mint, err := ownedMint(program, accounts[0])
	if err != nil {
		return err
	}
	if mint.Initialized {
		return tokerr(TOK_ERR_ALREADY_INITIALIZED, "mint already initialized")
	}
	var auth runtime.Pubkey
	copy(auth[:], args[1:33])
	fresh := &Mint{
		Authority:   &auth,
		Decimals:    args[0],
		Initialized: true,
	}
	copy(accounts[0].Account.Data, fresh.Encode())
	return nil
}

func initializeAccount(program runtime.Pubkey, accounts []*runtime.AccountInfo) error {
	if len(accounts) < 3 {
		return tokerr(TOK_ERR_INSTRUCTION_INVALID, "initialize_account needs account, mint, owner")
	}
	holding, err := ownedHolding(program, accounts[0])
	if err != nil {
		return err
	}
	if holding.Initialized {
		return tokerr(TOK_ERR_ALREADY_INITIALIZED, "holding already initialized")
	}
	mint, err := ownedMint(program, accounts[1])
	if err != nil {
		return err
	}
	if !mint.Initialized {
		return tokerr(TOK_ERR_ACCOUNT_UNINITIALIZED, "mint not initialized")
	}
	fresh := &Holding{
		Mint:        accounts[1].Key,
		Owner:       accounts[2].Key,
		Initialized: true,
	}
	copy(accounts[0].Account.Data, fresh.Encode())
	return nil
}

func mintTo(program runtime.Pubkey, accounts []*runtime.AccountInfo, args []byte) error {
	if len(accounts) < 3 {
		return tokerr(TOK_ERR_INSTRUCTION_INVALID, "mint_to needs mint, dest, authority")
	}
	if len(args) != 8 {
		return tokerr(TOK_ERR_INSTRUCTION_INVALID, "mint_to args malformed")
	}
	amount := binary.LittleEndian.Uint64(args)

	mint, err := ownedMint(program, accounts[0])
	if err != nil {
		return err
	}
	if !mint.Initialized {
		return tokerr(TOK_ERR_ACCOUNT_UNINITIALIZED, "mint not initialized")
	}
	if mint.Authority == nil {
		return tokerr(TOK_ERR_AUTHORITY_ABSENT, "mint authority revoked")
	}
	if *mint.Authority != accounts[2].Key || !accounts[2].Signer {
		return tokerr(TOK_ERR_AUTHORITY_MISMATCH, "mint_to authority invalid")
	}
	dest, err := ownedHolding(program, accounts[1])
	if err != nil {
		return err
	}
	if !dest.Initialized {
		return tokerr(TOK_ERR_ACCOUNT_UNINITIALIZED, "destination not initialized")
	}
	if dest.Mint != accounts[0].Key {
		return tokerr(TOK_ERR_MINT_MISMATCH, "destination bound to another mint")
	}

	supply := mint.Supply + amount
	if supply < mint.Supply {
		return tokerr(TOK_ERR_ARITHMETIC_OVERFLOW, "supply overflow")
	}
	balance := dest.Amount + amount
	if balance < dest.Amount {
		return tokerr(TOK_ERR_ARITHMETIC_OVERFLOW, "balance overflow")
	}
	mint.Supply = supply
	dest.Amount = balance
	copy(accounts[0].Account.Data, mint.Encode())
	copy(accounts[1].Account.Data, dest.Encode())
	return nil
}

func setAuthority(program runtime.Pubkey, accounts []*runtime.AccountInfo, args []byte) error {
	if len(accounts) < 2 {
		return tokerr(TOK_ERR_INSTRUCTION_INVALID, "set_authority needs mint and current authority")
	}
	mint, err := ownedMint(program, accounts[0])
	if err != nil {
		return err
	}
	if !mint.Initialized {
		return tokerr(TOK_ERR_ACCOUNT_UNINITIALIZED, "mint not initialized")
	}
	if mint.Authority == nil {
		return tokerr(TOK_ERR_AUTHORITY_ABSENT, "mint authority revoked")
	}
	if *mint.Authority != accounts[1].Key || !accounts[1].Signer {
		return tokerr(TOK_ERR_AUTHORITY_MISMATCH, "set_authority signer invalid")
	}
	switch {
	case len(args) == 1 && args[0] == 0:
		mint.Authority = nil
	case len(args) == 1+32 && args[0] == 1:
		var auth runtime.Pubkey
		copy(auth[:], args[1:33])
		mint.Authority = &auth
	default:
		return tokerr(TOK_ERR_INSTRUCTION_INVALID, "set_authority args malformed")
	}
	copy(accounts[0].Account.Data, mint.Encode())
	return nil
}

func transfer(program runtime.Pubkey, accounts []*runtime.AccountInfo, args []byte) error {
	if len(accounts) < 3 {
		return tokerr(TOK_ERR_INSTRUCTION_INVALID, "transfer needs source, dest, owner")
	}
	if len(args) != 8 {
		return tokerr(TOK_ERR_INSTRUCTION_INVALID, "transfer args malformed")
	}
	amount := binary.LittleEndian.Uint64(args)

	source, err := ownedHolding(program, accounts[0])
	if err != nil {
		return err
	}
	dest, err := ownedHolding(program, accounts[1])
	if err != nil {
		return err
	}
	if !source.Initialized || !dest.Initialized {
		return tokerr(TOK_ERR_ACCOUNT_UNINITIALIZED, "transfer endpoint not initialized")
	}
	if source.Mint != dest.Mint {
		return tokerr(TOK_ERR_MINT_MISMATCH, "transfer endpoints bound to different mints")
	}
	if source.Owner != accounts[2].Key || !accounts[2].Signer {
		return tokerr(TOK_ERR_AUTHORITY_MISMATCH, "transfer not authorized by source owner")
	}
	if source.Amount < amount {
		return tokerr(TOK_ERR_FUNDS_INSUFFICIENT, "source balance below transfer amount")
	}
	balance := dest.Amount + amount
	if balance < dest.Amount {
		return tokerr(TOK_ERR_ARITHMETIC_OVERFLOW, "destination balance overflow")
	}
	source.Amount -= amount
	dest.Amount = balance
	copy(accounts[0].Account.Data, source.Encode())
	copy(accounts[1].Account.Data, dest.Encode())
	return nil
}
