package extract

import "crypto/aes"

// KeyMaterial is the AES key and CBC initialization vector.
type KeyMaterial struct {
	Key []byte
	IV  []byte
}

// Derive reinterprets fragmentA as the raw key and fragmentB as the raw IV.
// There is no hashing or stretching.
func Derive(fragmentA, fragmentB string) (*KeyMaterial, error) {
	key := []byte(fragmentA)
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, &InvalidKeyLengthError{Part: "key", Got: len(key)}
	}

	iv := []byte(fragmentB)
	if len(iv) != aes.BlockSize {
		return nil, &InvalidKeyLengthError{Part: "iv", Got: len(iv)}
	}

	return &KeyMaterial{Key: key, IV: iv}, nil
}
