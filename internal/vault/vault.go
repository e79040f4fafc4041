// Package vault protects the user's model API key at rest with a
// password-derived symmetric key.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// ErrDecryption covers both a wrong password and a tampered or
// corrupted blob. The two causes are deliberately indistinguishable.
var ErrDecryption = errors.New("decryption failed")

const (
	saltSize = 16
	ivSize   = 12
	keySize  = 32 // AES-256

	// MinIterations is the PBKDF2 floor. The password is the only
	// secret protecting the key, so derivation must stay slow.
	MinIterations = 100_000
)

// Blob is the encrypted credential as persisted, all fields base64.
type Blob struct {
	Ciphertext string `json:"ciphertext"`
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
}

// Vault derives keys and encrypts/decrypts credential blobs. It holds
// no mutable state; every call is independent.
type Vault struct {
	iterations int
}

func New(iterations int) *Vault {
	if iterations < MinIterations {
		iterations = MinIterations
	}
	return &Vault{iterations: iterations}
}

func (v *Vault) deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, v.iterations, keySize, sha256.New)
}

// Encrypt seals plaintext under a key derived from password. Salt and
// IV are freshly random per call and never reused.
func (v *Vault) Encrypt(plaintext, password string) (Blob, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return Blob{}, fmt.Errorf("generate salt: %w", err)
	}
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return Blob{}, fmt.Errorf("generate iv: %w", err)
	}

	gcm, err := newGCM(v.deriveKey(password, salt))
	if err != nil {
		return Blob{}, err
	}

	ct := gcm.Seal(nil, iv, []byte(plaintext), nil)
	return Blob{
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		IV:         base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// Decrypt opens a blob with the key derived from password. Any failure
// surfaces as ErrDecryption without further detail.
func (v *Vault) Decrypt(blob Blob, password string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(blob.Ciphertext)
	if err != nil {
		return "", ErrDecryption
	}
	salt, err := base64.StdEncoding.DecodeString(blob.Salt)
	if err != nil || len(salt) != saltSize {
		return "", ErrDecryption
	}
	iv, err := base64.StdEncoding.DecodeString(blob.IV)
	if err != nil || len(iv) != ivSize {
		return "", ErrDecryption
	}

	gcm, err := newGCM(v.deriveKey(password, salt))
	if err != nil {
		return "", ErrDecryption
	}
	pt, err := gcm.Open(nil, iv, ct, nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(pt), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return gcm, nil
}
