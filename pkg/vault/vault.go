// Package vault implements the password-encrypted archive payload:
// PBKDF2 key derivation and a cycled-key XOR stream cipher over a
// canonical CBOR encoding of the entries.
//
// This is a confidentiality-only construction with no authentication
// tag. A wrong password almost always yields bytes that fail to
// decode, but detection is probabilistic, not guaranteed.
package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/pbkdf2"

	"github.com/arthur-debert/seda/pkg/archive"
	"github.com/arthur-debert/seda/pkg/errors"
)

const (
	// SaltSize is the length of the random salt prepended to the
	// ciphertext. A fresh salt is drawn for every encode.
	SaltSize = 16

	// Iterations is the fixed PBKDF2 iteration count. Changing it
	// breaks decoding of existing archives.
	Iterations = 100000

	keySize = 32
)

// messageKey is the reserved key carrying the archive message inside
// the encrypted entry mapping. Collector paths are cleaned relative
// paths, which can never contain "//".
const messageKey = "seda://message"

// encMode uses CBOR Core Deterministic Encoding: the same logical
// payload always produces identical bytes on every encode.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("vault: CBOR encoder initialization failed: " + err.Error())
	}
}

type sealedEntry struct {
	Kind string `cbor:"kind"`
	Data []byte `cbor:"data"`
}

// DeriveKey derives the symmetric key from a password and salt using
// PBKDF2-SHA256 with the fixed iteration count.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, keySize, sha256.New)
}

// Seal serializes the entries plus the optional message into CBOR,
// encrypts the result under a key derived from a fresh salt, and
// returns base64(salt || ciphertext).
func Seal(entries []archive.Entry, message, password string) (string, error) {
	payload := make(map[string]sealedEntry, len(entries)+1)
	for _, entry := range entries {
		if entry.Path == messageKey {
			return "", errors.Newf(errors.ErrInternal, "entry path collides with reserved key %s", messageKey)
		}
		payload[entry.Path] = sealedEntry{Kind: entry.Kind.String(), Data: entry.Data}
	}
	if message != "" {
		payload[messageKey] = sealedEntry{Kind: "message", Data: []byte(message)}
	}

	plain, err := encMode.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to serialize vault payload")
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to draw vault salt")
	}

	ciphertext := xorKeystream(plain, DeriveKey(password, salt))
	return base64.StdEncoding.EncodeToString(append(salt, ciphertext...)), nil
}

// Open reverses Seal. Any failure after decryption (base64 damage,
// CBOR that does not parse, unknown kinds) is reported as a
// VAULT_DECODE error; a partial or garbled payload is never returned.
func Open(blob, password string) ([]archive.Entry, string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.ErrVaultDecode, "vault blob is not valid base64")
	}
	if len(raw) < SaltSize {
		return nil, "", errors.New(errors.ErrVaultDecode, "vault blob is too short")
	}

	salt, ciphertext := raw[:SaltSize], raw[SaltSize:]
	plain := xorKeystream(ciphertext, DeriveKey(password, salt))

	var payload map[string]sealedEntry
	if err := cbor.Unmarshal(plain, &payload); err != nil {
		return nil, "", errors.Wrap(err, errors.ErrVaultDecode, "wrong password or corrupt archive")
	}

	var message string
	var entries []archive.Entry
	for path, sealed := range payload {
		if path == messageKey {
			message = string(sealed.Data)
			continue
		}
		kind, ok := archive.ParseKind(sealed.Kind)
		if !ok {
			return nil, "", errors.Newf(errors.ErrVaultDecode, "wrong password or corrupt archive")
		}
		entries = append(entries, archive.Entry{Path: path, Kind: kind, Data: sealed.Data})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	return entries, message, nil
}

// xorKeystream combines data with a keystream formed by cycling the
// key bytes. The operation is its own inverse.
func xorKeystream(data, key []byte) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}
