package store

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const gameIDPrefix = "g_"

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

// NewID returns a ULID; ids made by one process sort in creation order.
func NewID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// NewGameID returns a lowercase, prefixed ULID for a live game.
func NewGameID() string {
	return gameIDPrefix + strings.ToLower(NewID())
}

// GameIDTime extracts the creation time embedded in a game id.
func GameIDTime(id string) (time.Time, bool) {
	raw, ok := strings.CutPrefix(id, gameIDPrefix)
	if !ok {
		return time.Time{}, false
	}
	u, err := ulid.ParseStrict(strings.ToUpper(raw))
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(u.Time()), true
}
