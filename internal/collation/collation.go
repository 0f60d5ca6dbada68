// Package collation turns normalized names into sequences of hashed,
// locale-aware token keys and compares those sequences.
package collation

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Key is the hashed collation key of a single token. Two tokens have the
// same Key when they are the same word modulo case, accents and width.
type Key uint64

// Collator produces token keys for one locale. It is safe for concurrent use.
type Collator struct {
	mu  sync.Mutex
	c   *collate.Collator
	buf collate.Buffer
}

// New returns a Collator for the given locale that ignores case, diacritics
// and character width.
func New(tag language.Tag) *Collator {
	return &Collator{c: collate.New(tag, collate.Loose)}
}

var (
	defaultOnce     sync.Once
	defaultCollator *Collator
)

// Default returns the shared root-locale Collator.
func Default() *Collator {
	defaultOnce.Do(func() {
		defaultCollator = New(language.Und)
	})
	return defaultCollator
}

// Key returns the key of a single token.
func (c *Collator) Key(token string) Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyLocked(token)
}

func (c *Collator) keyLocked(token string) Key {
	k := c.c.KeyFromString(&c.buf, token)
	sum := xxhash.Sum64(k)
	c.buf.Reset()
	return Key(sum)
}

// Keys splits name on whitespace and returns the key of each token.
// The name is expected to be normalized already.
func (c *Collator) Keys(name string) []Key {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return nil
	}
	keys := make([]Key, len(tokens))

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, tok := range tokens {
		keys[i] = c.keyLocked(tok)
	}
	return keys
}
