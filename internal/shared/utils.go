// Package shared provides sentinel errors and the secure memory-wiping
// helper used by the crypto, auth and engine layers.
package shared

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used to remove passcodes and key material from memory after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
