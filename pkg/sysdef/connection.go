package sysdef

import (
	"fmt"

	"github.com/samsamfire/gosysdef/pkg/model"
)

// BusConnection is a node interface connected to a bus
type BusConnection struct {
	NodeIndex uint32
	// InterfaceIndex is the index in the node com interfaces
	InterfaceIndex uint32
}

// ComDataPoolConnection is a COM data pool used on a bus through one
// protocol and one CAN interface of a node
type ComDataPoolConnection struct {
	NodeIndex      uint32
	InterfaceIndex uint32
	// CanInterfaceIndex indexes the protocol message containers
	CanInterfaceIndex uint32
	ProtocolIndex     uint32
	DataPoolIndex     uint32
}

func (c ComDataPoolConnection) messageId(protocolType model.ProtocolType, isTx bool, messageIndex uint32) model.MessageId {
	return model.MessageId{
		NodeIndex:      c.NodeIndex,
		ProtocolType:   protocolType,
		InterfaceIndex: c.CanInterfaceIndex,
		DataPoolIndex:  c.DataPoolIndex,
		IsTx:           isTx,
		MessageIndex:   messageIndex,
	}
}

// scanBus calls visit for every node interface connected to busIndex
func (sd *SystemDefinition) scanBus(busIndex uint32, visit func(nodeIndex uint32, comIndex uint32)) {
	for nodeIndex := range sd.Nodes {
		node := &sd.Nodes[nodeIndex]
		for comIndex := range node.ComInterfaces {
			if node.ComInterfaces[comIndex].IsConnectedTo(busIndex) {
				visit(uint32(nodeIndex), uint32(comIndex))
			}
		}
	}
}

// GetNodeIndexesOfBus returns all node interfaces connected to busIndex
func (sd *SystemDefinition) GetNodeIndexesOfBus(busIndex uint32) []BusConnection {
	connections := make([]BusConnection, 0)
	sd.scanBus(busIndex, func(nodeIndex uint32, comIndex uint32) {
		connections = append(connections, BusConnection{NodeIndex: nodeIndex, InterfaceIndex: comIndex})
	})
	return connections
}

// GetNodeAndComDpIndexesOfBus returns one entry per protocol used
// on a CAN interface connected to busIndex
func (sd *SystemDefinition) GetNodeAndComDpIndexesOfBus(busIndex uint32) []ComDataPoolConnection {
	return sd.comDataPoolsOfBus(busIndex, nil)
}

// GetNodeAndComDpIndexesOfBusByProtocol is the same as
// [SystemDefinition.GetNodeAndComDpIndexesOfBus] restricted to one protocol type
func (sd *SystemDefinition) GetNodeAndComDpIndexesOfBusByProtocol(busIndex uint32, protocolType model.ProtocolType) []ComDataPoolConnection {
	return sd.comDataPoolsOfBus(busIndex, &protocolType)
}

func (sd *SystemDefinition) comDataPoolsOfBus(busIndex uint32, protocolType *model.ProtocolType) []ComDataPoolConnection {
	connections := make([]ComDataPoolConnection, 0)
	sd.scanBus(busIndex, func(nodeIndex uint32, comIndex uint32) {
		node := &sd.Nodes[nodeIndex]
		canIndex := node.CanInterfaceIndex(int(comIndex))
		if canIndex < 0 {
			return
		}
		for protocolIndex := range node.CanProtocols {
			protocol := &node.CanProtocols[protocolIndex]
			if protocolType != nil && protocol.Type != *protocolType {
				continue
			}
			if canIndex >= len(protocol.ComMessages) || !protocol.ComMessages[canIndex].IsUsedByInterface {
				continue
			}
			connections = append(connections, ComDataPoolConnection{
				NodeIndex:         nodeIndex,
				InterfaceIndex:    comIndex,
				CanInterfaceIndex: uint32(canIndex),
				ProtocolIndex:     uint32(protocolIndex),
				DataPoolIndex:     protocol.DataPoolIndex,
			})
		}
	})
	return connections
}

// AddConnection connects the interface of node matching the bus type and
// interfaceNumber to the bus. The interface gets the lowest node id free on the bus.
func (sd *SystemDefinition) AddConnection(nodeIndex uint32, busIndex uint32, interfaceNumber uint8) error {
	if err := sd.checkNodeIndex(nodeIndex); err != nil {
		return err
	}
	if err := sd.checkBusIndex(busIndex); err != nil {
		return err
	}
	node := &sd.Nodes[nodeIndex]
	bus := &sd.Buses[busIndex]
	ci, comIndex := node.ComInterface(bus.Type, interfaceNumber)
	if ci == nil {
		return fmt.Errorf("%w : node %v has no %v interface %v", ErrRange, node.Name, bus.Type, interfaceNumber)
	}
	nodeId, err := sd.nextFreeNodeId(busIndex, nodeIndex, uint32(comIndex))
	if err != nil {
		return err
	}
	ci.Connect(busIndex, nodeId)
	sd.cache.clear()
	sd.logger.Debugf("[SYSDEF] connected %v %v to %v with node id %v", node.Name, ci.Name(), bus.Name, nodeId)
	return nil
}

// RemoveConnection disconnects the interface at comIndex of node
func (sd *SystemDefinition) RemoveConnection(nodeIndex uint32, comIndex uint32) error {
	ci, err := sd.comInterface(nodeIndex, comIndex)
	if err != nil {
		return err
	}
	ci.Disconnect()
	sd.cache.clear()
	return nil
}

// GetNextFreeNodeIdOnBus returns the lowest node id unused on busIndex
func (sd *SystemDefinition) GetNextFreeNodeIdOnBus(busIndex uint32) (uint8, error) {
	if err := sd.checkBusIndex(busIndex); err != nil {
		return 0, err
	}
	return sd.nextFreeNodeId(busIndex, uint32(len(sd.Nodes)), 0)
}

func (sd *SystemDefinition) nextFreeNodeId(busIndex uint32, skipNode uint32, skipCom uint32) (uint8, error) {
	used := map[uint8]bool{}
	sd.scanBus(busIndex, func(nodeIndex uint32, comIndex uint32) {
		if nodeIndex == skipNode && comIndex == skipCom {
			return
		}
		used[sd.Nodes[nodeIndex].ComInterfaces[comIndex].NodeId] = true
	})
	for nodeId := uint8(0); nodeId <= MaxNodeId; nodeId++ {
		if !used[nodeId] {
			return nodeId, nil
		}
	}
	return 0, ErrNoFreeNodeId
}

// CheckInterfaceIsAvailable returns false if another interface connected
// to the same bus as the given interface already uses nodeId
func (sd *SystemDefinition) CheckInterfaceIsAvailable(nodeIndex uint32, comIndex uint32, nodeId uint8) (bool, error) {
	ci, err := sd.comInterface(nodeIndex, comIndex)
	if err != nil {
		return false, err
	}
	if !ci.IsConnected {
		return true, nil
	}
	available := true
	sd.scanBus(ci.BusIndex, func(otherNode uint32, otherCom uint32) {
		if otherNode == nodeIndex && otherCom == comIndex {
			return
		}
		if sd.Nodes[otherNode].ComInterfaces[otherCom].NodeId == nodeId {
			available = false
		}
	})
	return available, nil
}

// CheckIpAddressIsValid returns false if another Ethernet interface
// connected to the same bus as the given interface already uses ip
func (sd *SystemDefinition) CheckIpAddressIsValid(nodeIndex uint32, comIndex uint32, ip [4]byte) (bool, error) {
	ci, err := sd.comInterface(nodeIndex, comIndex)
	if err != nil {
		return false, err
	}
	if !ci.IsConnected || ci.Type != model.BusTypeEthernet {
		return true, nil
	}
	valid := true
	sd.scanBus(ci.BusIndex, func(otherNode uint32, otherCom uint32) {
		if otherNode == nodeIndex && otherCom == comIndex {
			return
		}
		other := &sd.Nodes[otherNode].ComInterfaces[otherCom]
		if other.Type == model.BusTypeEthernet && other.Ip == ip {
			valid = false
		}
	})
	return valid, nil
}
