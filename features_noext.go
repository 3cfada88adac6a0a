//go:build !scale_ext

package scale

const ExtendedTypes = false
