package token

import (
	"encoding/binary"

	"fixedsale.dev/node/runtime"
)

const (
	opInitializeMint    = 0
	opInitializeAccount = 1
	opMintTo            = 2
	opSetAuthority      = 3
	opTransfer          = 4
)

func appendU64le(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// InitializeMint turns a freshly allocated, token-owned account into a mint.
func InitializeMint(mint, authority runtime.Pubkey, decimals uint8) runtime.Instruction {
	data := []byte{opInitializeMint, decimals}
	data = append(data, authority[:]...)
	return runtime.Instruction{
		Program: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Meta(mint, false, true),
		},
		Data: data,
	}
}

// InitializeAccount binds a freshly allocated, token-owned account to a mint
// and an owner. The owner does not sign; anyone may create a holding account
// for anyone.
func InitializeAccount(account, mint, owner runtime.Pubkey) runtime.Instruction {
	return runtime.Instruction{
		Program: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Meta(account, false, true),
			runtime.Meta(mint, false, false),
			runtime.Meta(owner, false, false),
		},
		Data: []byte{opInitializeAccount},
	}
}

func MintTo(mint, dest, authority runtime.Pubkey, amount uint64) runtime.Instruction {
	data := appendU64le([]byte{opMintTo}, amount)
	return runtime.Instruction{
		Program: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Meta(mint, false, true),
			runtime.Meta(dest, false, true),
			runtime.Meta(authority, true, false),
		},
		Data: data,
	}
}

// SetAuthority replaces the mint authority. newAuthority nil revokes it for
// good; a mint without authority can never issue again.
func SetAuthority(mint, current runtime.Pubkey, newAuthority *runtime.Pubkey) runtime.Instruction {
	data := []byte{opSetAuthority}
	if newAuthority != nil {
		data = append(data, 1)
		data = append(data, newAuthority[:]...)
	} else {
		data = append(data, 0)
	}
	return runtime.Instruction{
		Program: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Meta(mint, false, true),
			runtime.Meta(current, true, false),
		},
		Data: data,
	}
}

// Transfer moves amount between two holdings of the same mint, authorized by
// the source owner. The owner signs with a key, or — for program-derived
// owners — through seed authorization.
func Transfer(source, dest, owner runtime.Pubkey, amount uint64) runtime.Instruction {
	data := appendU64le([]byte{opTransfer}, amount)
	return runtime.Instruction{
		Program: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Meta(source, false, true),
			runtime.Meta(dest, false, true),
			runtime.Meta(owner, true, false),
		},
		Data: data,
	}
}
