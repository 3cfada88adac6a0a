//go:build scale_nochain

package scale

const ChainedErrors = false
