// Package spoof generates random client addresses for the X-Forwarded-For
// request header.
package spoof

import (
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand/v2"
	"net/netip"
)

// HeaderName is the request header carrying the spoofed address.
const HeaderName = "X-Forwarded-For"

// Generator yields uniformly distributed IPv4 addresses in
// [0.0.0.1, 255.255.255.255]. It is not safe for concurrent use.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator drawing from src.
func New(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// NewRandom returns a Generator seeded from the operating system's entropy
// source, so every run produces a different address sequence.
func NewRandom() *Generator {
	var seed [32]byte
	_, _ = crand.Read(seed[:]) // never fails since Go 1.24
	return New(rand.NewChaCha8(seed))
}

// Uint32 returns a value in [1, 0xFFFFFFFF].
func (g *Generator) Uint32() uint32 {
	return 1 + g.rnd.Uint32N(math.MaxUint32)
}

// Next returns the next random address.
func (g *Generator) Next() netip.Addr {
	return AddrFrom(g.Uint32())
}

// AddrFrom converts v to an IPv4 address, most significant byte first.
func AddrFrom(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}
