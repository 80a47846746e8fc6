package combine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/estuary/flow-sub005/internal/doc"
)

// Domain prefix for content-addressed register keys.
// Version suffix enables future algorithm migration.
const registerDomain = "flow/register/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Key is the ordered set of JSON pointers identifying a register.
type Key []doc.Pointer

// ParseKey parses raw JSON pointers into a composite key.
// At least one pointer is required, and each must be empty (the document
// root) or begin with '/'.
func ParseKey(ptrs []string) (Key, error) {
	if len(ptrs) == 0 {
		return nil, fmt.Errorf("composite key requires at least one pointer")
	}
	key := make(Key, 0, len(ptrs))
	for _, raw := range ptrs {
		if raw != "" && !strings.HasPrefix(raw, "/") {
			return nil, fmt.Errorf("invalid key pointer %q: must be empty or begin with '/'", raw)
		}
		key = append(key, doc.ParsePointer(raw))
	}
	return key, nil
}

// Extract returns the document's key values in pointer order.
// Missing locations extract as null.
func (k Key) Extract(d doc.Node) doc.Array {
	values := make(doc.Array, 0, len(k))
	for _, ptr := range k {
		v, ok := ptr.Query(d)
		if !ok {
			v = doc.Null{}
		}
		values = append(values, v)
	}
	return values
}

// Fingerprint returns the content-addressed register ID for extracted key
// values, along with their canonical JSON encoding.
func Fingerprint(values doc.Array) (hash string, keyJSON []byte, err error) {
	keyJSON, err = doc.MarshalCanonical(values)
	if err != nil {
		return "", nil, fmt.Errorf("fingerprint key: %w", err)
	}
	return hashWithDomain(registerDomain, keyJSON), keyJSON, nil
}
