// Package webpush implements the receiving side of Web Push message
// encryption (RFC 8291, aes128gcm content coding from RFC 8188).
package webpush

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const authSecretLen = 16

var encoding = base64.RawURLEncoding

var (
	ErrInvalidKey    = errors.New("webpush: invalid key")
	ErrInvalidHeader = errors.New("webpush: invalid aes128gcm header")
	ErrDecrypt       = errors.New("webpush: decryption failed")
)

// Keys hold the user agent's subscription secrets
type Keys struct {
	PrivateKey *ecdh.PrivateKey
	Auth       []byte
}

// GenerateKeys creates a fresh P-256 key pair and authentication secret
func GenerateKeys() (*Keys, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate p256 key: %w", err)
	}
	auth := make([]byte, authSecretLen)
	if _, err := rand.Read(auth); err != nil {
		return nil, fmt.Errorf("generate auth secret: %w", err)
	}
	return &Keys{PrivateKey: priv, Auth: auth}, nil
}

// ParseKeys restores keys from their base64url forms
func ParseKeys(privateKey, auth string) (*Keys, error) {
	raw, err := decode(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", ErrInvalidKey, err)
	}
	priv, err := ecdh.P256().NewPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", ErrInvalidKey, err)
	}
	secret, err := decode(auth)
	if err != nil || len(secret) != authSecretLen {
		return nil, fmt.Errorf("%w: auth secret", ErrInvalidKey)
	}
	return &Keys{PrivateKey: priv, Auth: secret}, nil
}

// P256dh returns the uncompressed public key, base64url encoded
func (k *Keys) P256dh() string {
	return encoding.EncodeToString(k.PrivateKey.PublicKey().Bytes())
}

// AuthSecret returns the authentication secret, base64url encoded
func (k *Keys) AuthSecret() string {
	return encoding.EncodeToString(k.Auth)
}

// PrivateKeyString returns the private scalar, base64url encoded
func (k *Keys) PrivateKeyString() string {
	return encoding.EncodeToString(k.PrivateKey.Bytes())
}

// decode accepts both padded and unpadded base64url, as push services differ.
func decode(s string) ([]byte, error) {
	if b, err := encoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}
