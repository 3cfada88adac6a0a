//go:build scale_ext

package scale

// ExtendedTypes enables maps, floats and platform-sized integers in the
// reflection codec. Do not enable it where peers must agree on the exact
// set of encodable types.
const ExtendedTypes = true
