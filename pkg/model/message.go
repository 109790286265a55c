package model

import "github.com/samsamfire/gosysdef/internal/crc"

type TxMethod uint8

const (
	TxMethodCyclic TxMethod = iota
	TxMethodOnChange
	TxMethodOnEvent
	TxMethodCanOpenPdoSync
	TxMethodCanOpenPdoEvent
)

var txMethodMap = map[TxMethod]string{
	TxMethodCyclic:          "CYCLIC",
	TxMethodOnChange:        "ON CHANGE",
	TxMethodOnEvent:         "ON EVENT",
	TxMethodCanOpenPdoSync:  "PDO SYNC",
	TxMethodCanOpenPdoEvent: "PDO EVENT",
}

func (m TxMethod) String() string {
	s, ok := txMethodMap[m]
	if !ok {
		return "UNKNOWN"
	}
	return s
}

type ByteOrder uint8

const (
	ByteOrderIntel    ByteOrder = 0
	ByteOrderMotorola ByteOrder = 1
)

const (
	MaxStdId uint32 = 0x7FF
	MaxExtId uint32 = 0x1FFFFFFF
)

// Signal describes the position of a value inside a message.
// All other properties are found in the backing COM list element.
type Signal struct {
	ElementIndex uint32
	StartBit     uint16
	BitLength    uint16
	ByteOrder    ByteOrder
}

func (s *Signal) CalcHash(c *crc.CRC32) {
	c.Uint32(s.ElementIndex)
	c.Uint16(s.StartBit)
	c.Uint16(s.BitLength)
	c.Uint8(uint8(s.ByteOrder))
}

// Bits returns the absolute bit positions covered by the signal.
// Intel signals grow upward from the start bit, Motorola signals
// grow from the start bit (msb) down through the byte then into the next byte.
func (s *Signal) Bits() []uint16 {
	bits := make([]uint16, 0, s.BitLength)
	if s.ByteOrder == ByteOrderIntel {
		for i := uint16(0); i < s.BitLength; i++ {
			bits = append(bits, s.StartBit+i)
		}
		return bits
	}
	pos := int(s.StartBit)
	for i := uint16(0); i < s.BitLength; i++ {
		bits = append(bits, uint16(pos))
		if pos%8 == 0 {
			pos += 15
		} else {
			pos--
		}
	}
	return bits
}

type Message struct {
	Name       string
	Comment    string
	CanId      uint32
	IsExtended bool
	Dlc        uint8
	TxMethod   TxMethod
	// CycleTimeMs is only meaningful for cyclic or PDO event (event timer) messages
	CycleTimeMs uint32
	Signals     []Signal
}

func (m *Message) CalcHash(c *crc.CRC32) {
	c.String(m.Name)
	c.String(m.Comment)
	c.Uint32(m.CanId)
	c.Bool(m.IsExtended)
	c.Uint8(m.Dlc)
	c.Uint8(uint8(m.TxMethod))
	c.Uint32(m.CycleTimeMs)
	c.Uint32(uint32(len(m.Signals)))
	for i := range m.Signals {
		m.Signals[i].CalcHash(c)
	}
}

// MessageUniqueId is the on wire identity of a message
type MessageUniqueId struct {
	CanId      uint32
	IsExtended bool
}

func (m *Message) UniqueId() MessageUniqueId {
	return MessageUniqueId{CanId: m.CanId, IsExtended: m.IsExtended}
}

// MessageId locates a message inside the system definition
type MessageId struct {
	NodeIndex      uint32
	ProtocolType   ProtocolType
	InterfaceIndex uint32
	DataPoolIndex  uint32
	IsTx           bool
	MessageIndex   uint32
}
