package token

import "fixedsale.dev/node/runtime"

const (
	TOK_ERR_INSTRUCTION_INVALID   runtime.ErrorCode = "TOK_ERR_INSTRUCTION_INVALID"
	TOK_ERR_ACCOUNT_DATA_INVALID  runtime.ErrorCode = "TOK_ERR_ACCOUNT_DATA_INVALID"
	TOK_ERR_ACCOUNT_UNINITIALIZED runtime.ErrorCode = "TOK_ERR_ACCOUNT_UNINITIALIZED"
	TOK_ERR_ALREADY_INITIALIZED   runtime.ErrorCode = "TOK_ERR_ALREADY_INITIALIZED"
	TOK_ERR_OWNER_ILLEGAL         runtime.ErrorCode = "TOK_ERR_OWNER_ILLEGAL"
	TOK_ERR_AUTHORITY_MISMATCH    runtime.ErrorCode = "TOK_ERR_AUTHORITY_MISMATCH"
	TOK_ERR_AUTHORITY_ABSENT      runtime.ErrorCode = "TOK_ERR_AUTHORITY_ABSENT"
	TOK_ERR_MINT_MISMATCH         runtime.ErrorCode = "TOK_ERR_MINT_MISMATCH"
	TOK_ERR_FUNDS_INSUFFICIENT    runtime.ErrorCode = "TOK_ERR_FUNDS_INSUFFICIENT"
	TOK_ERR_ARITHMETIC_OVERFLOW   runtime.ErrorCode = "TOK_ERR_ARITHMETIC_OVERFLOW"
)

func tokerr(code runtime.ErrorCode, msg string) error {
	return runtime.NewError(code, msg)
}
