//go:build !scale_nochain

package scale

// ChainedErrors reports whether decode failures carry their positional path.
// Build with -tags scale_nochain to return bare sentinels instead.
const ChainedErrors = true
