package extract

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DecryptedPayload is the plaintext document recovered from the cipher-text.
type DecryptedPayload struct {
	Sources []PayloadSource
	Tracks  []PayloadTrack
}

// PayloadSource is one upstream source entry.
type PayloadSource struct {
	File  string `json:"file"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// PayloadTrack is one upstream track entry. Upstream names the location
// either "file" or "url".
type PayloadTrack struct {
	URL     string `json:"url"`
	File    string `json:"file"`
	Kind    string `json:"kind"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

// Location returns the track URL whichever key upstream used.
func (t PayloadTrack) Location() string {
	if t.URL != "" {
		return t.URL
	}
	return t.File
}

// Decrypt concatenates every cipher-text element, base64-decodes the result
// once and decrypts it as one AES-CBC stream. Decrypting elements one by
// one is wrong: only the final block carries PKCS#7 padding.
func Decrypt(cipherArray []string, km *KeyMaterial) (*DecryptedPayload, error) {
	joined := strings.Join(cipherArray, "")
	encoded := strings.TrimRight(strings.Join(strings.Fields(joined), ""), "=")
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &DecryptionError{Reason: "invalid base64", Err: err}
	}

	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return nil, &DecryptionError{Reason: fmt.Sprintf("cipher-text length %d is not a positive multiple of %d", len(raw), aes.BlockSize)}
	}

	block, err := aes.NewCipher(km.Key)
	if err != nil {
		return nil, &DecryptionError{Reason: "creating cipher", Err: err}
	}
	if len(km.IV) != block.BlockSize() {
		return nil, &DecryptionError{Reason: fmt.Sprintf("iv length %d", len(km.IV))}
	}

	plaintext := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, km.IV).CryptBlocks(plaintext, raw)

	plaintext, err = pkcs7Unpad(plaintext)
	if err != nil {
		return nil, &DecryptionError{Reason: "invalid padding", Err: err}
	}
	if !utf8.Valid(plaintext) {
		return nil, &DecryptionError{Reason: "plaintext is not valid UTF-8"}
	}

	return parsePayload(plaintext)
}

// parsePayload requires both "sources" and "tracks" to be present as arrays.
func parsePayload(plaintext []byte) (*DecryptedPayload, error) {
	var doc struct {
		Sources *[]PayloadSource `json:"sources"`
		Tracks  *[]PayloadTrack  `json:"tracks"`
	}
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, &MalformedJSONError{Err: err}
	}
	if doc.Sources == nil {
		return nil, &MalformedJSONError{Err: errors.New(`missing "sources" array`)}
	}
	if doc.Tracks == nil {
		return nil, &MalformedJSONError{Err: errors.New(`missing "tracks" array`)}
	}

	return &DecryptedPayload{Sources: *doc.Sources, Tracks: *doc.Tracks}, nil
}

// pkcs7Unpad validates every padding byte before stripping.
func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("data is empty")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding length %d", n)
	}
	if !bytes.Equal(data[len(data)-n:], bytes.Repeat([]byte{byte(n)}, n)) {
		return nil, errors.New("inconsistent padding bytes")
	}
	return data[:len(data)-n], nil
}
