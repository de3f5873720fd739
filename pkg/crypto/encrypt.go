// Package crypto seals document model exports with a password so they
// can be moved off-machine without exposing the archive contents.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	// magic identifies a sealed unspool export.
	magic = "USPL"

	formatVersion = 1

	// Argon2id parameters (OWASP recommended)
	argonTime    = 3
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 4
	keyLen       = 32 // AES-256

	saltSize  = 32
	nonceSize = 12 // GCM standard

	// magic(4) + version(4) + salt(32) + nonce(12)
	headerSize = 4 + 4 + saltSize + nonceSize
)

var (
	ErrNotSealed       = errors.New("not a sealed unspool export")
	ErrVersionMismatch = errors.New("unsupported seal format version")
	ErrOpenFailed      = errors.New("open failed: wrong password or corrupted data")
)

// deriveKey stretches a password into an AES-256 key with Argon2id.
func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLen)
}

// Seal encrypts plaintext under password with AES-256-GCM. The result
// carries everything Open needs: magic, format version, salt, nonce.
func Seal(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, headerSize+len(ciphertext))
	copy(out[0:4], magic)
	binary.LittleEndian.PutUint32(out[4:8], formatVersion)
	copy(out[8:8+saltSize], salt)
	copy(out[8+saltSize:headerSize], nonce)
	copy(out[headerSize:], ciphertext)
	return out, nil
}

// Open decrypts data produced by Seal.
func Open(data []byte, password string) ([]byte, error) {
	if len(data) < headerSize || string(data[0:4]) != magic {
		return nil, ErrNotSealed
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != formatVersion {
		return nil, ErrVersionMismatch
	}

	salt := data[8 : 8+saltSize]
	nonce := data[8+saltSize : headerSize]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, data[headerSize:], nil)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}

// SealFile encrypts srcPath and writes the sealed bytes to dstPath.
func SealFile(srcPath, dstPath, password string) error {
	plaintext, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	sealed, err := Seal(plaintext, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dstPath, sealed, 0600); err != nil {
		return fmt.Errorf("write destination: %w", err)
	}
	return nil
}

// OpenFile decrypts a sealed file and returns its contents.
func OpenFile(path, password string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Open(data, password)
}

// IsSealed reports whether data begins with the sealed-export magic.
func IsSealed(data []byte) bool {
	return len(data) >= 4 && string(data[0:4]) == magic
}
