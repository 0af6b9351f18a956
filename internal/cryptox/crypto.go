// Package cryptox implements the crypto primitives behind field-level
// encryption: PBKDF2 key derivation from a user passcode, random salt and
// data-key generation, and AES-256-CBC encryption of string payloads packed
// into a self-describing envelope.
//
// The envelope format is the durable on-disk contract:
//
//	<hex-encoded IV>:<base64-encoded ciphertext>
//
// Exactly one ':' separator; the IV is 16 bytes (32 hex characters). The
// separator cannot appear inside the hex alphabet, so splitting is
// unambiguous.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"

	"github.com/dmitrijs2005/rememberme/internal/shared"
)

const (
	// SaltLength is the salt size in bytes (128 bits), one per passcode setup.
	SaltLength = 16
	// KeyLength is the symmetric key size in bytes (AES-256).
	KeyLength = 32
	// IVLength is the CBC initialization vector size in bytes.
	IVLength = aes.BlockSize
	// Iterations is the PBKDF2 iteration count. Expensive enough to resist
	// offline brute force while staying well under a second on commodity
	// hardware.
	Iterations = 100000

	envelopeSep = ":"
)

// DeriveKey stretches a low-entropy passcode into a 256-bit key using
// PBKDF2-SHA256 with the fixed iteration count. Deterministic: the same
// password and salt always produce the same key.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, Iterations, KeyLength, sha256.New)
}

// HashPassword derives a verification-only hex digest of the passcode.
// It is never used as an encryption key; it only gates access to the
// stored data key.
func HashPassword(password, salt []byte) string {
	return hex.EncodeToString(DeriveKey(password, salt))
}

// GenerateSalt returns a fresh random 128-bit salt.
func GenerateSalt() ([]byte, error) {
	return generateRandBytes(SaltLength)
}

// GenerateSecureKey returns a fresh random 256-bit data-encryption key,
// independent of any password. Keeping the data key decoupled from the
// passcode allows passcode changes without re-encrypting stored data.
func GenerateSecureKey() ([]byte, error) {
	return generateRandBytes(KeyLength)
}

func generateRandBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("rand read: %w", err)
	}
	return b, nil
}

// Encrypt encrypts plaintext with AES-256-CBC/PKCS7 under the given key and
// returns the IV:ciphertext envelope. A fresh random IV is generated per
// call, so two encryptions of the same plaintext produce different envelopes.
func Encrypt(plaintext string, key []byte) (string, error) {
	if len(key) != KeyLength {
		return "", fmt.Errorf("%w: expected %d-byte key, got %d", shared.ErrEncryptionKeyMissing, KeyLength, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}

	iv, err := generateRandBytes(IVLength)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + envelopeSep + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt unpacks the IV:ciphertext envelope and decrypts it under the
// given key.
//
// It fails with shared.ErrMalformedEnvelope when the envelope does not split
// into exactly two well-formed parts, and with shared.ErrDecryptionFailed
// when padding validation fails (wrong key or corrupted data). It never
// silently returns garbage.
func Decrypt(envelope string, key []byte) (string, error) {
	if len(key) != KeyLength {
		return "", fmt.Errorf("%w: expected %d-byte key, got %d", shared.ErrEncryptionKeyMissing, KeyLength, len(key))
	}

	parts := strings.Split(envelope, envelopeSep)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: expected exactly one %q separator", shared.ErrMalformedEnvelope, envelopeSep)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != IVLength {
		return "", fmt.Errorf("%w: bad IV", shared.ErrMalformedEnvelope)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", shared.ErrMalformedEnvelope)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not block-aligned", shared.ErrMalformedEnvelope)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return "", err
	}

	// CBC has no authentication tag; a wrong key occasionally survives the
	// padding check, so reject output that is not valid UTF-8 as well.
	if !utf8.Valid(plaintext) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", shared.ErrDecryptionFailed)
	}

	return string(plaintext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: bad padded length", shared.ErrDecryptionFailed)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: bad padding byte", shared.ErrDecryptionFailed)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: inconsistent padding", shared.ErrDecryptionFailed)
		}
	}
	return data[:len(data)-n], nil
}
