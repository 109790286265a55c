package sysdef

import (
	"math"

	"github.com/samsamfire/gosysdef/pkg/model"
)

// locatedMessage is a message resolved from a [model.MessageId]
type locatedMessage struct {
	message *model.Message
	list    *model.List
}

// element returns the element backing the signal or nil
func (l locatedMessage) element(signal *model.Signal) *model.Element {
	if l.list == nil || int(signal.ElementIndex) >= len(l.list.Elements) {
		return nil
	}
	return &l.list.Elements[signal.ElementIndex]
}

// protocolOf returns the protocol of node matching type and data pool
func protocolOf(node *model.Node, protocolType model.ProtocolType, dataPoolIndex uint32) *model.CanProtocol {
	for i := range node.CanProtocols {
		protocol := &node.CanProtocols[i]
		if protocol.Type == protocolType && protocol.DataPoolIndex == dataPoolIndex {
			return protocol
		}
	}
	return nil
}

func (sd *SystemDefinition) locateMessage(id model.MessageId) (locatedMessage, error) {
	if err := sd.checkNodeIndex(id.NodeIndex); err != nil {
		return locatedMessage{}, err
	}
	node := &sd.Nodes[id.NodeIndex]
	protocol := protocolOf(node, id.ProtocolType, id.DataPoolIndex)
	if protocol == nil || int(id.InterfaceIndex) >= len(protocol.ComMessages) {
		return locatedMessage{}, ErrRange
	}
	message := protocol.ComMessages[id.InterfaceIndex].Message(id.IsTx, id.MessageIndex)
	if message == nil {
		return locatedMessage{}, ErrRange
	}
	located := locatedMessage{message: message}
	if dataPool := node.ComDataPool(protocol); dataPool != nil {
		located.list = dataPool.ComList(id.InterfaceIndex, id.IsTx)
	}
	return located, nil
}

// visitBusMessages calls visit for every message of every protocol used
// on the CAN interfaces connected to busIndex
func (sd *SystemDefinition) visitBusMessages(busIndex uint32, visit func(id model.MessageId, message *model.Message)) {
	for _, conn := range sd.GetNodeAndComDpIndexesOfBus(busIndex) {
		protocol := &sd.Nodes[conn.NodeIndex].CanProtocols[conn.ProtocolIndex]
		container := &protocol.ComMessages[conn.CanInterfaceIndex]
		for _, isTx := range []bool{true, false} {
			messages := container.Messages(isTx)
			for i := range messages {
				visit(conn.messageId(protocol.Type, isTx, uint32(i)), &messages[i])
			}
		}
	}
}

// isSameLogicalMessage returns true if candidate is another node's copy of
// the skipped message, i.e. the sender and receiver descriptions of one
// wire message, or two receivers of it.
func (sd *SystemDefinition) isSameLogicalMessage(skip *model.MessageId, candidate model.MessageId) bool {
	if skip == nil || skip.NodeIndex == candidate.NodeIndex {
		return false
	}
	if skip.IsTx && candidate.IsTx {
		return false
	}
	isMatch, err := sd.CheckMessageMatch(*skip, candidate, true)
	return err == nil && isMatch
}

// CheckMessageIdBus returns false if a message on the bus other than skip
// uses the same CAN id and id type
func (sd *SystemDefinition) CheckMessageIdBus(busIndex uint32, uniqueId model.MessageUniqueId, skip *model.MessageId) (bool, error) {
	if err := sd.checkBusIndex(busIndex); err != nil {
		return false, err
	}
	valid := true
	sd.visitBusMessages(busIndex, func(id model.MessageId, message *model.Message) {
		if !valid || (skip != nil && id == *skip) {
			return
		}
		if message.UniqueId() == uniqueId && !sd.isSameLogicalMessage(skip, id) {
			valid = false
		}
	})
	return valid, nil
}

// CheckMessageNameBus returns false if a message on the bus other than skip
// uses the same name
func (sd *SystemDefinition) CheckMessageNameBus(busIndex uint32, name string, skip *model.MessageId) (bool, error) {
	if err := sd.checkBusIndex(busIndex); err != nil {
		return false, err
	}
	valid := true
	sd.visitBusMessages(busIndex, func(id model.MessageId, message *model.Message) {
		if !valid || (skip != nil && id == *skip) {
			return
		}
		if message.Name == name && !sd.isSameLogicalMessage(skip, id) {
			valid = false
		}
	})
	return valid, nil
}

// CheckMessageMatch returns true if both messages describe the same wire
// message: properties, layout and signal definitions.
// If ignoreDirection is false, two tx messages are reported as a match
// without comparing them and messages of opposite directions never match.
func (sd *SystemDefinition) CheckMessageMatch(id1 model.MessageId, id2 model.MessageId, ignoreDirection bool) (bool, error) {
	first, err := sd.locateMessage(id1)
	if err != nil {
		return false, err
	}
	second, err := sd.locateMessage(id2)
	if err != nil {
		return false, err
	}
	// A message always matches itself, even while incomplete
	if id1 == id2 {
		return true, nil
	}
	if !ignoreDirection {
		if id1.IsTx && id2.IsTx {
			return true, nil
		}
		if id1.IsTx != id2.IsTx {
			return false, nil
		}
	}
	return messagesMatch(first, second), nil
}

func messagesMatch(first locatedMessage, second locatedMessage) bool {
	m1, m2 := first.message, second.message
	if m1.Name != m2.Name ||
		m1.Comment != m2.Comment ||
		m1.CanId != m2.CanId ||
		m1.IsExtended != m2.IsExtended ||
		m1.Dlc != m2.Dlc ||
		m1.TxMethod != m2.TxMethod {
		return false
	}
	if m1.TxMethod == model.TxMethodCyclic && m1.CycleTimeMs != m2.CycleTimeMs {
		return false
	}
	if len(m1.Signals) != len(m2.Signals) {
		return false
	}
	for i := range m1.Signals {
		s1, s2 := &m1.Signals[i], &m2.Signals[i]
		if s1.BitLength != s2.BitLength || s1.ByteOrder != s2.ByteOrder || s1.StartBit != s2.StartBit {
			return false
		}
		e1, e2 := first.element(s1), second.element(s2)
		if e1 == nil || e2 == nil {
			if e1 != e2 {
				return false
			}
			continue
		}
		if e1.Name != e2.Name ||
			e1.Comment != e2.Comment ||
			e1.Type != e2.Type ||
			!floatsEqual(e1.Min, e2.Min) ||
			!floatsEqual(e1.Max, e2.Max) ||
			!floatsEqual(e1.Factor, e2.Factor) ||
			!floatsEqual(e1.Offset, e2.Offset) ||
			!floatsEqual(e1.InitValue, e2.InitValue) ||
			e1.Unit != e2.Unit {
			return false
		}
	}
	return true
}

// floatsEqual compares bit patterns so that NaN equals NaN
func floatsEqual(a float64, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}
