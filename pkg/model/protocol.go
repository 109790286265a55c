package model

import "github.com/samsamfire/gosysdef/internal/crc"

type ProtocolType uint8

const (
	ProtocolL2 ProtocolType = iota
	ProtocolECeS
	ProtocolECoS
	ProtocolCanOpen
)

var protocolTypeMap = map[ProtocolType]string{
	ProtocolL2:      "OSI Layer 2",
	ProtocolECeS:    "ECeS",
	ProtocolECoS:    "ECoS",
	ProtocolCanOpen: "CANopen",
}

func (t ProtocolType) String() string {
	s, ok := protocolTypeMap[t]
	if !ok {
		return "UNKNOWN"
	}
	return s
}

// MessageContainer holds the messages of one protocol on one CAN interface
type MessageContainer struct {
	IsUsedByInterface bool
	TxMessages        []Message
	RxMessages        []Message
}

// Messages returns tx or rx messages
func (mc *MessageContainer) Messages(isTx bool) []Message {
	if isTx {
		return mc.TxMessages
	}
	return mc.RxMessages
}

// Message returns a pointer to message or nil if out of range
func (mc *MessageContainer) Message(isTx bool, index uint32) *Message {
	messages := mc.Messages(isTx)
	if int(index) >= len(messages) {
		return nil
	}
	return &messages[index]
}

func (mc *MessageContainer) CalcHash(c *crc.CRC32) {
	c.Bool(mc.IsUsedByInterface)
	c.Uint32(uint32(len(mc.TxMessages)))
	for i := range mc.TxMessages {
		mc.TxMessages[i].CalcHash(c)
	}
	c.Uint32(uint32(len(mc.RxMessages)))
	for i := range mc.RxMessages {
		mc.RxMessages[i].CalcHash(c)
	}
}

// CanProtocol binds a COM data pool to a protocol type.
// ComMessages has one container per CAN interface index of the node.
type CanProtocol struct {
	Type          ProtocolType
	DataPoolIndex uint32
	ComMessages   []MessageContainer
}

func (p *CanProtocol) CalcHash(c *crc.CRC32) {
	c.Uint8(uint8(p.Type))
	c.Uint32(p.DataPoolIndex)
	c.Uint32(uint32(len(p.ComMessages)))
	for i := range p.ComMessages {
		p.ComMessages[i].CalcHash(c)
	}
}
