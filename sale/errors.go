package sale

import "fixedsale.dev/node/runtime"

const (
	SALE_ERR_INSTRUCTION_INVALID   runtime.ErrorCode = "SALE_ERR_INSTRUCTION_INVALID"
	SALE_ERR_ACCOUNT_MISSING       runtime.ErrorCode = "SALE_ERR_ACCOUNT_MISSING"
	SALE_ERR_PROGRAM_MISMATCH      runtime.ErrorCode = "SALE_ERR_PROGRAM_MISMATCH"
	SALE_ERR_ACCOUNT_DATA_INVALID  runtime.ErrorCode = "SALE_ERR_ACCOUNT_DATA_INVALID"
	SALE_ERR_ACCOUNT_UNINITIALIZED runtime.ErrorCode = "SALE_ERR_ACCOUNT_UNINITIALIZED"
	SALE_ERR_OWNER_ILLEGAL         runtime.ErrorCode = "SALE_ERR_OWNER_ILLEGAL"
	SALE_ERR_ARITHMETIC_OVERFLOW   runtime.ErrorCode = "SALE_ERR_ARITHMETIC_OVERFLOW"
)

func salerr(code runtime.ErrorCode, msg string) error {
	return runtime.NewError(code, msg)
}

func addU64(a, b uint64) (uint64, error) {
	s := a + b
	if s < a {
		return 0, salerr(SALE_ERR_ARITHMETIC_OVERFLOW, "u64 addition overflow")
	}
	return s, nil
}
