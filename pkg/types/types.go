package types

const (
	DEFAULT_EVENT = "cpu/mem-loads/pp"

	// Addresses with the top bit set belong to the kernel half of the address space.
	KERNEL_ADDR_MIN uint64 = 1 << 63

	MODE_DOMINANT = "dominant"
	MODE_WINDOW   = "window"

	STRATEGY_MIN    = "min"
	STRATEGY_MAX    = "max"
	STRATEGY_AROUND = "around"
	STRATEGY_BEST   = "best"

	POLICY_OBSERVED = "observed"
	POLICY_FULL     = "full"

	FORMAT_PNG = "png"
	FORMAT_CSV = "csv"
)

// Sample is one accepted memory access. Time is relative to the first
// accepted sample of the trace.
type Sample struct {
	Time  float64
	Event string
	Addr  uint64
}
