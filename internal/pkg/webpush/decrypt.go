package webpush

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	saltLen   = 16
	headerLen = saltLen + 4 + 1
	tagSize   = 16
	nonceSize = 12
	keySize   = 16
	ikmSize   = 32
	DefaultRS = 4096
	padLast   = 0x02
	padRecord = 0x01
)

var (
	infoWebPush = []byte("WebPush: info\x00")
	infoCEK     = []byte("Content-Encoding: aes128gcm\x00")
	infoNonce   = []byte("Content-Encoding: nonce\x00")
)

// Decrypt opens an aes128gcm push message addressed to keys
func Decrypt(keys *Keys, body []byte) ([]byte, error) {
	if len(body) < headerLen {
		return nil, ErrInvalidHeader
	}
	salt := body[:saltLen]
	rs := int(binary.BigEndian.Uint32(body[saltLen : saltLen+4]))
	idLen := int(body[saltLen+4])
	if rs < tagSize+2 || len(body) < headerLen+idLen {
		return nil, ErrInvalidHeader
	}
	keyID := body[headerLen : headerLen+idLen]
	ciphertext := body[headerLen+idLen:]
	if len(ciphertext) == 0 {
		return nil, ErrDecrypt
	}

	senderPub, err := ecdh.P256().NewPublicKey(keyID)
	if err != nil {
		return nil, fmt.Errorf("%w: sender key: %v", ErrInvalidHeader, err)
	}

	gcm, nonce, err := deriveCipher(keys.PrivateKey, keys.PrivateKey.PublicKey(), senderPub, keys.Auth, salt, true)
	if err != nil {
		return nil, err
	}

	var out []byte
	for seq := uint64(0); len(ciphertext) > 0; seq++ {
		n := min(rs, len(ciphertext))
		record := ciphertext[:n]
		ciphertext = ciphertext[n:]

		plain, err := gcm.Open(nil, recordNonce(nonce, seq), record, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d", ErrDecrypt, seq)
		}
		data, err := unpad(plain, len(ciphertext) == 0)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

// Encrypt seals plaintext for the subscription identified by p256dh and auth,
// as an application server would. It writes a single record.
func Encrypt(p256dh, auth string, plaintext []byte) ([]byte, error) {
	rawPub, err := decode(p256dh)
	if err != nil {
		return nil, fmt.Errorf("%w: p256dh: %v", ErrInvalidKey, err)
	}
	uaPub, err := ecdh.P256().NewPublicKey(rawPub)
	if err != nil {
		return nil, fmt.Errorf("%w: p256dh: %v", ErrInvalidKey, err)
	}
	secret, err := decode(auth)
	if err != nil {
		return nil, fmt.Errorf("%w: auth: %v", ErrInvalidKey, err)
	}

	senderPriv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	gcm, nonce, err := deriveCipher(senderPriv, uaPub, senderPriv.PublicKey(), secret, salt, false)
	if err != nil {
		return nil, err
	}

	record := append(append([]byte{}, plaintext...), padLast)
	rs := max(DefaultRS, len(record)+tagSize+1)

	keyID := senderPriv.PublicKey().Bytes()
	header := make([]byte, headerLen, headerLen+len(keyID))
	copy(header, salt)
	binary.BigEndian.PutUint32(header[saltLen:], uint32(rs))
	header[saltLen+4] = byte(len(keyID))
	header = append(header, keyID...)

	return gcm.Seal(header, recordNonce(nonce, 0), record, nil), nil
}

// deriveCipher runs the RFC 8291 key schedule. uaPub and asPub are the user
// agent and application server public keys; priv is whichever side is local.
func deriveCipher(priv *ecdh.PrivateKey, uaPub, asPub *ecdh.PublicKey, auth, salt []byte, receiving bool) (cipher.AEAD, []byte, error) {
	peer := asPub
	if !receiving {
		peer = uaPub
	}
	shared, err := priv.ECDH(peer)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: ecdh: %v", ErrDecrypt, err)
	}

	keyInfo := make([]byte, 0, len(infoWebPush)+130)
	keyInfo = append(keyInfo, infoWebPush...)
	keyInfo = append(keyInfo, uaPub.Bytes()...)
	keyInfo = append(keyInfo, asPub.Bytes()...)

	ikm, err := expand(hkdf.Extract(sha256.New, shared, auth), keyInfo, ikmSize)
	if err != nil {
		return nil, nil, err
	}
	prk := hkdf.Extract(sha256.New, ikm, salt)
	cek, err := expand(prk, infoCEK, keySize)
	if err != nil {
		return nil, nil, err
	}
	nonce, err := expand(prk, infoNonce, nonceSize)
	if err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}
	return gcm, nonce, nil
}

func expand(prk, info []byte, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, info), out); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}

// recordNonce XORs the record sequence number into the low bytes of the base nonce.
func recordNonce(base []byte, seq uint64) []byte {
	n := make([]byte, len(base))
	copy(n, base)
	for i := 0; i < 8; i++ {
		n[len(n)-1-i] ^= byte(seq >> (8 * i))
	}
	return n
}

func unpad(plain []byte, last bool) ([]byte, error) {
	i := len(plain) - 1
	for i >= 0 && plain[i] == 0 {
		i--
	}
	if i < 0 {
		return nil, fmt.Errorf("%w: missing padding delimiter", ErrDecrypt)
	}
	want := byte(padRecord)
	if last {
		want = padLast
	}
	if plain[i] != want {
		return nil, fmt.Errorf("%w: unexpected padding delimiter", ErrDecrypt)
	}
	return plain[:i], nil
}
