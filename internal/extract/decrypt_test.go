package extract

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

const (
	testKey = "0123456789abcdef"
	testIV  = "fedcba9876543210"
)

const testPlaintext = `{"sources":[{"file":"https://cdn.example/video/index.m3u8","label":"auto","type":"hls"},{"file":"https://cdn.example/video/720.mp4","label":"720p","type":"mp4"},{"file":"https://cdn.example/video/360.mp4","label":"360p","type":"mp4"}],"tracks":[{"file":"https://cdn.example/subs/en.vtt","label":"English","kind":"captions","default":true},{"file":"https://cdn.example/thumbs.vtt","kind":"thumbnails"}]}`

// encrypt is the inverse of Decrypt, minus base64 splitting.
func encrypt(t *testing.T, plaintext []byte, key, iv string) string {
	t.Helper()
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		t.Fatal(err)
	}
	n := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append(append([]byte{}, plaintext...), bytes.Repeat([]byte{byte(n)}, n)...)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, []byte(iv)).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out)
}

// encryptRaw encrypts block-aligned data without adding padding.
func encryptRaw(t *testing.T, data []byte, key, iv string) string {
	t.Helper()
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		t.Fatal(err)
	}
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, []byte(iv)).CryptBlocks(out, data)
	return base64.StdEncoding.EncodeToString(out)
}

// split cuts s into n pieces at offsets that ignore base64 quantum boundaries.
func split(s string, n int) []string {
	var parts []string
	size := len(s)/n + 1
	for len(s) > 0 {
		if size > len(s) {
			size = len(s)
		}
		parts = append(parts, s[:size])
		s = s[size:]
	}
	return parts
}

func testKeyMaterial() *KeyMaterial {
	return &KeyMaterial{Key: []byte(testKey), IV: []byte(testIV)}
}

func TestDecryptRoundTrip(t *testing.T) {
	ct := encrypt(t, []byte(testPlaintext), testKey, testIV)

	got, err := Decrypt([]string{ct}, testKeyMaterial())
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}

	var want struct {
		Sources []PayloadSource `json:"sources"`
		Tracks  []PayloadTrack  `json:"tracks"`
	}
	if err := json.Unmarshal([]byte(testPlaintext), &want); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Sources, want.Sources) {
		t.Errorf("sources = %+v, want %+v", got.Sources, want.Sources)
	}
	if !reflect.DeepEqual(got.Tracks, want.Tracks) {
		t.Errorf("tracks = %+v, want %+v", got.Tracks, want.Tracks)
	}
}

func TestDecryptConcatenatesChunks(t *testing.T) {
	ct := encrypt(t, []byte(testPlaintext), testKey, testIV)
	chunks := split(ct, 3)
	if len(chunks) != 3 {
		t.Fatalf("split produced %d chunks", len(chunks))
	}

	got, err := Decrypt(chunks, testKeyMaterial())
	if err != nil {
		t.Fatalf("Decrypt() of chunked cipher-text error: %v", err)
	}
	if len(got.Sources) != 3 {
		t.Fatalf("got %d sources, want 3", len(got.Sources))
	}
}

func TestDecryptPreservesOrder(t *testing.T) {
	ct := encrypt(t, []byte(testPlaintext), testKey, testIV)

	got, err := Decrypt([]string{ct}, testKeyMaterial())
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}

	labels := []string{"auto", "720p", "360p"}
	for i, s := range got.Sources {
		if s.Label != labels[i] {
			t.Errorf("source[%d].Label = %q, want %q", i, s.Label, labels[i])
		}
	}
}

func TestDecryptUnpaddedBase64(t *testing.T) {
	ct := base64.RawStdEncoding.EncodeToString(mustDecode(t, encrypt(t, []byte(testPlaintext), testKey, testIV)))

	if _, err := Decrypt([]string{ct}, testKeyMaterial()); err != nil {
		t.Fatalf("Decrypt() of unpadded base64 error: %v", err)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	ct := encrypt(t, []byte(testPlaintext), testKey, testIV)
	km := &KeyMaterial{Key: []byte("0123456789abcdeX"), IV: []byte(testIV)}

	_, err := Decrypt([]string{ct}, km)
	var decErr *DecryptionError
	if !errors.As(err, &decErr) {
		t.Fatalf("Decrypt() with wrong key error = %v (%T), want *DecryptionError", err, err)
	}
}

// A wrong IV only garbles the first block, so padding still checks out; the
// damage must surface as an error rather than a silently wrong document.
func TestDecryptWrongIV(t *testing.T) {
	ct := encrypt(t, []byte(testPlaintext), testKey, testIV)
	km := &KeyMaterial{Key: []byte(testKey), IV: []byte("XXXXXXXXXXXXXXXX")}

	_, err := Decrypt([]string{ct}, km)
	var decErr *DecryptionError
	var jsonErr *MalformedJSONError
	if !errors.As(err, &decErr) && !errors.As(err, &jsonErr) {
		t.Fatalf("Decrypt() with wrong iv error = %v (%T), want a decryption or payload error", err, err)
	}
}

func TestDecryptErrors(t *testing.T) {
	tests := []struct {
		name        string
		cipherArray func(t *testing.T) []string
		wantDecrypt bool
		wantJSON    bool
	}{
		{
			name:        "invalid base64",
			cipherArray: func(t *testing.T) []string { return []string{"!!not base64!!"} },
			wantDecrypt: true,
		},
		{
			name:        "empty array",
			cipherArray: func(t *testing.T) []string { return nil },
			wantDecrypt: true,
		},
		{
			name: "not block aligned",
			cipherArray: func(t *testing.T) []string {
				return []string{base64.StdEncoding.EncodeToString([]byte("seventeen bytes!!"))}
			},
			wantDecrypt: true,
		},
		{
			name: "zero padding byte",
			cipherArray: func(t *testing.T) []string {
				return []string{encryptRaw(t, make([]byte, 32), testKey, testIV)}
			},
			wantDecrypt: true,
		},
		{
			name: "inconsistent padding",
			cipherArray: func(t *testing.T) []string {
				data := append(bytes.Repeat([]byte("a"), 13), 0x01, 0x02, 0x03)
				return []string{encryptRaw(t, data, testKey, testIV)}
			},
			wantDecrypt: true,
		},
		{
			name: "invalid utf-8",
			cipherArray: func(t *testing.T) []string {
				return []string{encrypt(t, []byte{0xff, 0xfe, 0xfd}, testKey, testIV)}
			},
			wantDecrypt: true,
		},
		{
			name: "not json",
			cipherArray: func(t *testing.T) []string {
				return []string{encrypt(t, []byte("hello world"), testKey, testIV)}
			},
			wantJSON: true,
		},
		{
			name: "missing tracks",
			cipherArray: func(t *testing.T) []string {
				return []string{encrypt(t, []byte(`{"sources":[]}`), testKey, testIV)}
			},
			wantJSON: true,
		},
		{
			name: "null sources",
			cipherArray: func(t *testing.T) []string {
				return []string{encrypt(t, []byte(`{"sources":null,"tracks":[]}`), testKey, testIV)}
			},
			wantJSON: true,
		},
		{
			name: "sources is an object",
			cipherArray: func(t *testing.T) []string {
				return []string{encrypt(t, []byte(`{"sources":{"file":"x"},"tracks":[]}`), testKey, testIV)}
			},
			wantJSON: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.cipherArray(t), testKeyMaterial())
			if err == nil {
				t.Fatal("Decrypt() should fail")
			}

			var decErr *DecryptionError
			var jsonErr *MalformedJSONError
			if tt.wantDecrypt && !errors.As(err, &decErr) {
				t.Errorf("error = %v (%T), want *DecryptionError", err, err)
			}
			if tt.wantJSON && !errors.As(err, &jsonErr) {
				t.Errorf("error = %v (%T), want *MalformedJSONError", err, err)
			}
		})
	}
}

func TestDecryptEmptyLists(t *testing.T) {
	ct := encrypt(t, []byte(`{"sources":[],"tracks":[]}`), testKey, testIV)

	got, err := Decrypt([]string{ct}, testKeyMaterial())
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if len(got.Sources) != 0 || len(got.Tracks) != 0 {
		t.Errorf("got %d sources and %d tracks, want none", len(got.Sources), len(got.Tracks))
	}
}

func TestPKCS7Unpad(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    []byte
		wantErr bool
	}{
		{"one byte", []byte("abc\x01"), []byte("abc"), false},
		{"full block", bytes.Repeat([]byte{16}, 16), []byte{}, false},
		{"three bytes", []byte("abcd\x03\x03\x03"), []byte("abcd"), false},
		{"empty", nil, nil, true},
		{"zero", []byte("abc\x00"), nil, true},
		{"too large", []byte("abc\x11"), nil, true},
		{"longer than data", []byte{0x05, 0x05}, nil, true},
		{"inconsistent", []byte("ab\x01\x02"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pkcs7Unpad(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("pkcs7Unpad() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(got, tt.want) {
				t.Errorf("pkcs7Unpad() = %q, want %q", got, tt.want)
			}
		})
	}
}

func mustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
