// Package envelope seals short text values with a passphrase-derived key.
//
// The key is SHA-256(passphrase || KeyContext): deterministic, never stored,
// the same passphrase always yields the same key. Each Encrypt draws a fresh
// 96-bit nonce and runs AES-256-GCM. The envelope is
//
//	base64(nonce[12] || ciphertext || tag[16])
//
// so even an empty plaintext produces 28 decoded bytes. Decrypt fails closed:
// a bad tag, a wrong key or non-UTF-8 plaintext returns an error and no data.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/roach88/sidecar/internal/apperr"
)

// KeyContext is mixed into every key derivation.
// Changing it invalidates every envelope written under the old value.
const KeyContext = "sidecar-encryption-salt-v1"

const (
	// KeySize is the derived key length in bytes (AES-256).
	KeySize = 32

	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12

	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

// encoding rejects non-zero trailing bits, so every bit of the text form is
// covered by the authentication tag. It still skips \r and \n, so Decrypt
// rejects those before decoding.
var encoding = base64.StdEncoding.Strict()

// Key is a derived AES-256 key.
type Key [KeySize]byte

// DeriveKey computes the key for passphrase.
func DeriveKey(passphrase string) Key {
	h := sha256.New()
	h.Write([]byte(passphrase))
	h.Write([]byte(KeyContext))

	var key Key
	copy(key[:], h.Sum(nil))
	return key
}

// Encrypt seals plaintext under key and returns the base64 envelope.
// plaintext must be valid UTF-8, since Decrypt refuses anything else.
func Encrypt(key Key, plaintext string) (string, error) {
	return encryptWithReader(key, plaintext, rand.Reader)
}

func encryptWithReader(key Key, plaintext string, random io.Reader) (string, error) {
	if !utf8.ValidString(plaintext) {
		return "", apperr.New(apperr.CodeEncryption, "plaintext is not valid UTF-8")
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := io.ReadFull(random, nonce); err != nil {
		return "", apperr.Newf(apperr.CodeEncryption, "generate nonce: %v", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return encoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope produced by Encrypt.
func Decrypt(key Key, envelope string) (string, error) {
	if strings.ContainsAny(envelope, "\r\n") {
		return "", apperr.New(apperr.CodeEncryption, "Invalid ciphertext: line breaks are not allowed")
	}

	combined, err := encoding.DecodeString(envelope)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeEncryption, err)
	}

	if len(combined) < NonceSize {
		return "", apperr.New(apperr.CodeEncryption, "Invalid ciphertext")
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce, ciphertext := combined[:NonceSize], combined[NonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeEncryption, err)
	}

	if !utf8.Valid(plaintext) {
		return "", apperr.New(apperr.CodeEncryption, "decrypted data is not valid UTF-8")
	}
	return string(plaintext), nil
}

func newGCM(key Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeEncryption, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeEncryption, err)
	}
	return gcm, nil
}
