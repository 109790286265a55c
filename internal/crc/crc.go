package crc

import (
	"encoding/binary"
	"hash/crc32"
	"math"
)

// CRC32 is a running IEEE CRC-32 accumulator.
// It is fed field by field to build a structural hash of a model
// object, the resulting value is used for change detection and as a
// memoization key.
type CRC32 uint32

// Seed is the accumulator start value
const Seed CRC32 = 0xFFFFFFFF

func New() CRC32 {
	return Seed
}

// Single feeds one byte
func (c *CRC32) Single(b byte) {
	*c = CRC32(crc32.Update(uint32(*c), crc32.IEEETable, []byte{b}))
}

// Block feeds a byte slice
func (c *CRC32) Block(data []byte) {
	*c = CRC32(crc32.Update(uint32(*c), crc32.IEEETable, data))
}

func (c *CRC32) Bool(v bool) {
	if v {
		c.Single(1)
	} else {
		c.Single(0)
	}
}

func (c *CRC32) Uint8(v uint8) {
	c.Single(v)
}

func (c *CRC32) Uint16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	c.Block(buf[:])
}

func (c *CRC32) Uint32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	c.Block(buf[:])
}

func (c *CRC32) Uint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	c.Block(buf[:])
}

func (c *CRC32) Float64(v float64) {
	c.Uint64(math.Float64bits(v))
}

// String feeds the length then the bytes, so that
// ("ab","c") and ("a","bc") do not collide
func (c *CRC32) String(s string) {
	c.Uint32(uint32(len(s)))
	c.Block([]byte(s))
}

// Value returns the accumulated checksum
func (c CRC32) Value() uint32 {
	return uint32(c)
}
