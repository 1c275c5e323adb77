package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLength  = 32 // AES-256
	saltLength = 16
	ivLength   = 12 // GCM standard nonce size
	iterations = 100_000
)

// ErrDecryptFailed is returned when a ciphertext fails authentication, which
// covers both corruption and a wrong key.
var ErrDecryptFailed = errors.New("decrypt failed")

// Envelope carries one encrypted payload with the parameters needed to
// decrypt it independently of any other record.
type Envelope struct {
	Salt       []byte
	IV         []byte
	Ciphertext []byte
}

// EncryptionService derives a symmetric key from a password hash and performs
// authenticated encryption of opaque byte payloads.
type EncryptionService struct{}

func NewEncryptionService() *EncryptionService {
	return &EncryptionService{}
}

// Encrypt seals the plaintext under a key derived from the password hash and
// a fresh per-record salt, with a fresh IV per write.
func (s *EncryptionService) Encrypt(plaintext []byte, passwordHash string) (Envelope, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return Envelope{}, fmt.Errorf("generate salt: %w", err)
	}
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return Envelope{}, fmt.Errorf("generate iv: %w", err)
	}

	gcm, err := s.aead(passwordHash, salt)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		Salt:       salt,
		IV:         iv,
		Ciphertext: gcm.Seal(nil, iv, plaintext, nil),
	}, nil
}

// Decrypt opens an envelope. Authentication failure and malformed envelopes
// both surface as ErrDecryptFailed.
func (s *EncryptionService) Decrypt(env Envelope, passwordHash string) ([]byte, error) {
	if len(env.Salt) != saltLength || len(env.IV) != ivLength {
		return nil, ErrDecryptFailed
	}

	gcm, err := s.aead(passwordHash, env.Salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, env.IV, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

func (s *EncryptionService) aead(passwordHash string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passwordHash), salt, iterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}
