package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptionService_RoundTrip(t *testing.T) {
	svc := NewEncryptionService()
	hash := NewPasswordService().HashPassword("secret123")

	env, err := svc.Encrypt([]byte(`{"rules":[]}`), hash)
	assert.NoError(t, err)
	assert.Len(t, env.Salt, saltLength)
	assert.Len(t, env.IV, ivLength)
	assert.NotEqual(t, []byte(`{"rules":[]}`), env.Ciphertext)

	plaintext, err := svc.Decrypt(env, hash)
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"rules":[]}`), plaintext)
}

func TestEncryptionService_WrongKeyFails(t *testing.T) {
	svc := NewEncryptionService()
	passwords := NewPasswordService()

	env, err := svc.Encrypt([]byte("payload"), passwords.HashPassword("secret123"))
	assert.NoError(t, err)

	_, err = svc.Decrypt(env, passwords.HashPassword("other456"))
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestEncryptionService_TamperedCiphertextFails(t *testing.T) {
	svc := NewEncryptionService()
	hash := NewPasswordService().HashPassword("secret123")

	env, err := svc.Encrypt([]byte("payload"), hash)
	assert.NoError(t, err)

	env.Ciphertext[0] ^= 0xff
	_, err = svc.Decrypt(env, hash)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestEncryptionService_FreshSaltAndIVPerWrite(t *testing.T) {
	svc := NewEncryptionService()
	hash := NewPasswordService().HashPassword("secret123")

	a, err := svc.Encrypt([]byte("payload"), hash)
	assert.NoError(t, err)
	b, err := svc.Encrypt([]byte("payload"), hash)
	assert.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.IV, b.IV)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestEncryptionService_MalformedEnvelope(t *testing.T) {
	svc := NewEncryptionService()
	hash := NewPasswordService().HashPassword("secret123")

	_, err := svc.Decrypt(Envelope{Salt: []byte("short"), IV: []byte("short")}, hash)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}
