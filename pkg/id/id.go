// Package id generates the identifiers assigned on the client: correlation
// ids of entities awaiting creation and ids of perspective columns.
package id

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mutex   sync.Mutex
	entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// New returns an identifier ordered after every identifier generated before
// it by this process.
func New() string {
	return NewFromTime(time.Now())
}

func NewFromTime(t time.Time) string {
	mutex.Lock()
	defer mutex.Unlock()

	value, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		// the monotonic entropy of this millisecond is exhausted
		return ulid.Make().String()
	}
	return value.String()
}

// IsGenerated reports whether s has the form of an identifier returned by New.
func IsGenerated(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// Time returns when a generated identifier was created.
func Time(s string) (time.Time, error) {
	value, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(value.Time()), nil
}
