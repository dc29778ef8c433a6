package sale

import (
	"github.com/near/borsh-go"

	"fixedsale.dev/node/runtime"
	"fixedsale.dev/node/token"
)

const (
	// OpList publishes one asset at a fixed price.
	OpList uint8 = 0
	// OpPurchase atomically swaps the asset for the asking price.
	OpPurchase uint8 = 1
)

// Args carries the per-opcode arguments. Fields are optional on the wire;
// List requires both, Purchase carries neither.
type Args struct {
	Lamports    *uint64
	ListingBump *uint8
}

type payload struct {
	Instruction uint8
	Args        Args
}

// Unpack decodes an instruction payload. Anything that does not decode, or
// decodes to an opcode outside the protocol, is rejected before any account
// is looked at. The payload must be consumed exactly; the encoding is
// canonical, so a length comparison against the re-encoding catches trailing
// bytes.
func Unpack(data []byte) (uint8, Args, error) {
	var p payload
	if err := borsh.Deserialize(&p, data); err != nil {
		return 0, Args{}, salerr(SALE_ERR_INSTRUCTION_INVALID, "payload decode: "+err.Error())
	}
	if p.Instruction != OpList && p.Instruction != OpPurchase {
		return 0, Args{}, salerr(SALE_ERR_INSTRUCTION_INVALID, "unknown opcode")
	}
	if len(data) != len(pack(p.Instruction, p.Args)) {
		return 0, Args{}, salerr(SALE_ERR_INSTRUCTION_INVALID, "trailing bytes after payload")
	}
	return p.Instruction, p.Args, nil
}

func pack(op uint8, args Args) []byte {
	out, err := borsh.Serialize(payload{Instruction: op, Args: args})
	if err != nil {
		// payload contains nothing borsh cannot encode
		panic(err)
	}
	return out
}

// List builds the listing instruction. The asset must already sit in the
// custodial holding account owned by the derived vault authority; List only
// verifies that and creates the record.
func List(seller, vaultHolding, mint, sellerPayment runtime.Pubkey, lamports uint64) runtime.Instruction {
	listingAddr, bump := FindListingAddress(mint)
	return runtime.Instruction{
		Program: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Meta(seller, true, false),
			runtime.Meta(vaultHolding, false, false),
			runtime.Meta(mint, false, false),
			runtime.Meta(listingAddr, false, true),
			runtime.Meta(sellerPayment, false, false),
			runtime.Meta(runtime.SystemProgramID, false, false),
		},
		Data: pack(OpList, Args{Lamports: &lamports, ListingBump: &bump}),
	}
}

// Purchase builds the buy instruction for the listing at mint's derived
// record address.
func Purchase(buyer, buyerPayment, buyerItem, vaultHolding, sellerPayment, listing, vaultAuthority runtime.Pubkey) runtime.Instruction {
	return runtime.Instruction{
		Program: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Meta(buyer, true, true),
			runtime.Meta(buyerPayment, false, true),
			runtime.Meta(buyerItem, false, true),
			runtime.Meta(vaultHolding, false, true),
			runtime.Meta(sellerPayment, false, true),
			runtime.Meta(listing, false, true),
			runtime.Meta(token.ProgramID, false, false),
			runtime.Meta(vaultAuthority, false, false),
		},
		Data: pack(OpPurchase, Args{}),
	}
}
