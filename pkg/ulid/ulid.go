// Package ulid genera identificadores ULID (ordenables por tiempo, 26 caracteres Crockford base32).
package ulid

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New devuelve un ULID nuevo. Dentro del mismo milisegundo los valores son estrictamente crecientes.
func New() string {
	return NewAt(time.Now())
}

// NewAt devuelve un ULID con el timestamp indicado.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Valid informa si s es un ULID bien formado.
func Valid(s string) bool {
	if len(s) != ulid.EncodedSize {
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(s))
	return err == nil
}
