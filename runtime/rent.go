package runtime

// Constant-rate storage pricing. An account funded with MinimumBalance for
// its size is exempt from reclamation; the deposit comes back to whoever
// receives the account's lamports when it is destroyed.
const (
	rentPerByte = 128
	rentBase    = 1024
)

func MinimumBalance(size int) uint64 {
	if size < 0 {
		return rentBase
	}
	return rentBase + rentPerByte*uint64(size)
}
