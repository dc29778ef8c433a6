package runtime

// SystemProgramID is the allocator: the only program that may turn an unused
// address into a funded, owned, sized account.
var SystemProgramID = MustParsePubkey("Cfj3VEMErkCdXQeFBZPusStFpct2fCjoRHFvAj3z2YdT")

const (
	sysOpCreateAccount = 0
	sysOpTransfer      = 1
)

// CreateAccount builds the allocator instruction. The new account must sign:
// either with a real key, or through seed authorization when the address is
// program-derived.
func CreateAccount(funder, newAccount Pubkey, lamports uint64, space uint32, owner Pubkey) Instruction {
	data := []byte{sysOpCreateAccount}
	data = appendU64le(data, lamports)
	data = appendU32le(data, space)
	data = append(data, owner[:]...)
	return Instruction{
		Program: SystemProgramID,
		Accounts: []AccountMeta{
			Meta(funder, true, true),
			Meta(newAccount, true, true),
		},
		Data: data,
	}
}

// Transfer moves lamports between system-owned accounts, authorized by the
// source key.
func Transfer(from, to Pubkey, lamports uint64) Instruction {
	data := appendU64le([]byte{sysOpTransfer}, lamports)
	return Instruction{
		Program: SystemProgramID,
		Accounts: []AccountMeta{
			Meta(from, true, true),
			Meta(to, false, true),
		},
		Data: data,
	}
}

func processSystem(_ Host, _ Pubkey, accounts []*AccountInfo, data []byte) error {
	c := newCursor(data)
	op, err := c.readU8()
	if err != nil {
		return err
	}
	switch op {
	case sysOpCreateAccount:
		return systemCreateAccount(c, accounts)
	case sysOpTransfer:
		return systemTransfer(c, accounts)
	}
	return rterr(RUN_ERR_MESSAGE_PARSE, "unknown system opcode")
}

func systemTransfer(c *cursor, accounts []*AccountInfo) error {
	if len(accounts) < 2 {
		return rterr(RUN_ERR_ACCOUNT_MISSING, "transfer needs source and destination")
	}
	lamports, err := c.readU64LE()
	if err != nil {
		return err
	}
	from := accounts[0]
	to := accounts[1]
	if from.Account.Lamports < lamports {
		return rterr(RUN_ERR_FUNDS_INSUFFICIENT, "source balance below transfer amount")
	}
	balance, err := addU64(to.Account.Lamports, lamports)
	if err != nil {
		return err
	}
	from.Account.Lamports -= lamports
	to.Account.Lamports = balance
	return nil
}

func systemCreateAccount(c *cursor, accounts []*AccountInfo) error {
	if len(accounts) < 2 {
		return rterr(RUN_ERR_ACCOUNT_MISSING, "create_account needs funder and new account")
	}
	lamports, err := c.readU64LE()
	if err != nil {
		return err
	}
	space, err := c.readU32LE()
	if err != nil {
		return err
	}
	owner, err := c.readPubkey()
	if err != nil {
		return err
	}

	funder := accounts[0]
	fresh := accounts[1]

	// An address is reusable only while it is completely untouched. A second
	// allocation at the same address fails here, deterministically.
	if fresh.Account.Lamports != 0 || len(fresh.Account.Data) != 0 || fresh.Account.Owner != SystemProgramID {
		return rterr(RUN_ERR_ADDRESS_IN_USE, "account already in use: "+fresh.Key.String())
	}
	if funder.Account.Lamports < lamports {
		return rterr(RUN_ERR_FUNDS_INSUFFICIENT, "funder balance below requested lamports")
	}

	funder.Account.Lamports -= lamports
	fresh.Account.Lamports = lamports
	fresh.Account.Data = make([]byte, space)
	fresh.Account.Owner = owner
	return nil
}
