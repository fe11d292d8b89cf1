package pipeline

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/oklog/ulid"
)

var (
	ulidMu      sync.Mutex
	ulidEntropy io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// generateULID returns a lexically sortable job id, monotonic within a millisecond.
func generateULID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()
	return ulid.MustNew(ulid.Now(), ulidEntropy).String()
}
