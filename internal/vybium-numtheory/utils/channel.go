package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/sha3"
)

// Channel is a deterministic random source built on a hash chain.
//
// Seed material is absorbed with Send; Read squeezes the chain, emitting the
// current state and rehashing it whenever the emitted bytes run out. Two
// channels fed the same data yield the same byte stream.
//
// Consecutive reads are recorded as a single transcript entry, so the
// transcript grows with the number of sends only.
type Channel struct {
	mu         sync.Mutex
	state      []byte
	pending    []byte
	transcript []string
	squeezed   int
	hashFunc   string
}

// NewChannel creates a new channel using "sha3" (default) or "sha256"
func NewChannel(hashFunc string) *Channel {
	if hashFunc == "" {
		hashFunc = "sha3"
	}
	return &Channel{
		state:      []byte{0},
		transcript: make([]string, 0, 16),
		hashFunc:   hashFunc,
	}
}

// NewSeededChannel creates a channel that has already absorbed seed
func NewSeededChannel(hashFunc string, seed []byte) *Channel {
	c := NewChannel(hashFunc)
	c.Send(seed)
	return c
}

// Send absorbs data into the channel state. Unread output is discarded.
func (c *Channel) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.flushReads()
	c.transcript = append(c.transcript, fmt.Sprintf("send:%s", hex.EncodeToString(data)))
	c.state = c.hash(append(append([]byte(nil), c.state...), data...))
	c.pending = nil
}

// Read fills p with bytes squeezed from the channel. It never fails.
func (c *Channel) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for n := 0; n < len(p); {
		if len(c.pending) == 0 {
			c.state = c.hash(c.state)
			c.pending = append([]byte(nil), c.state...)
		}
		k := copy(p[n:], c.pending)
		c.pending = c.pending[k:]
		n += k
	}
	c.squeezed += len(p)
	return len(p), nil
}

// flushReads closes the running read entry. The caller holds mu.
func (c *Channel) flushReads() {
	if c.squeezed > 0 {
		c.transcript = append(c.transcript, fmt.Sprintf("read:%d", c.squeezed))
		c.squeezed = 0
	}
}

// State returns the current channel state
func (c *Channel) State() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.state...)
}

// Transcript returns the operations applied to the channel
func (c *Channel) Transcript() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]string(nil), c.transcript...)
	if c.squeezed > 0 {
		out = append(out, fmt.Sprintf("read:%d", c.squeezed))
	}
	return out
}

// hash computes the hash of the input using the configured hash function
func (c *Channel) hash(data []byte) []byte {
	switch c.hashFunc {
	case "sha256":
		h := sha256.Sum256(data)
		return h[:]
	default:
		h := sha3.Sum256(data)
		return h[:]
	}
}

// String returns a string representation of the channel transcript
func (c *Channel) String() string {
	return strings.Join(c.Transcript(), " ")
}
