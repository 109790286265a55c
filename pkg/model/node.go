package model

import (
	"sort"

	"github.com/samsamfire/gosysdef/internal/crc"
)

// Node is one ECU of the system definition
type Node struct {
	Name       string
	Comment    string
	DeviceType string
	// SubDeviceName is set for squad members and used as name suffix
	SubDeviceName   string
	ComInterfaces   []ComInterface
	DataPools       []DataPool
	CanProtocols    []CanProtocol
	CanOpenManagers map[uint8]CanOpenManager
	Applications    []Application
	Halc            HalcConfig
}

// ComInterface returns the interface matching type and number or nil
func (n *Node) ComInterface(busType BusType, interfaceNumber uint8) (*ComInterface, int) {
	for i := range n.ComInterfaces {
		ci := &n.ComInterfaces[i]
		if ci.Type == busType && ci.InterfaceNumber == interfaceNumber {
			return ci, i
		}
	}
	return nil, -1
}

// CanInterfaceIndex returns the index of the CAN interface, among CAN
// interfaces only, for the given com interface index.
// This is the index used for protocol message containers.
func (n *Node) CanInterfaceIndex(comIndex int) int {
	if comIndex < 0 || comIndex >= len(n.ComInterfaces) || n.ComInterfaces[comIndex].Type != BusTypeCan {
		return -1
	}
	canIndex := 0
	for i := 0; i < comIndex; i++ {
		if n.ComInterfaces[i].Type == BusTypeCan {
			canIndex++
		}
	}
	return canIndex
}

// CanComInterface returns the com interface of the n-th CAN interface
func (n *Node) CanComInterface(canIndex uint32) *ComInterface {
	current := uint32(0)
	for i := range n.ComInterfaces {
		if n.ComInterfaces[i].Type != BusTypeCan {
			continue
		}
		if current == canIndex {
			return &n.ComInterfaces[i]
		}
		current++
	}
	return nil
}

// ProtocolsOfDataPool returns the protocols bound to dataPoolIndex
func (n *Node) ProtocolsOfDataPool(dataPoolIndex uint32) []*CanProtocol {
	protocols := make([]*CanProtocol, 0)
	for i := range n.CanProtocols {
		if n.CanProtocols[i].DataPoolIndex == dataPoolIndex {
			protocols = append(protocols, &n.CanProtocols[i])
		}
	}
	return protocols
}

// ProtocolOfDataPool returns first protocol bound to dataPoolIndex or nil
func (n *Node) ProtocolOfDataPool(dataPoolIndex uint32) *CanProtocol {
	protocols := n.ProtocolsOfDataPool(dataPoolIndex)
	if len(protocols) == 0 {
		return nil
	}
	return protocols[0]
}

// ComDataPool returns the data pool of protocol if it is a COM data pool
func (n *Node) ComDataPool(protocol *CanProtocol) *DataPool {
	if protocol == nil || int(protocol.DataPoolIndex) >= len(n.DataPools) {
		return nil
	}
	dp := &n.DataPools[protocol.DataPoolIndex]
	if dp.Type != DataPoolCom {
		return nil
	}
	return dp
}

// SortedManagerInterfaces returns the interface numbers with a manager
func (n *Node) SortedManagerInterfaces() []uint8 {
	numbers := make([]uint8, 0, len(n.CanOpenManagers))
	for number := range n.CanOpenManagers {
		numbers = append(numbers, number)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

func (n *Node) CalcHash(c *crc.CRC32) {
	c.String(n.Name)
	c.String(n.Comment)
	c.String(n.DeviceType)
	c.String(n.SubDeviceName)
	c.Uint32(uint32(len(n.ComInterfaces)))
	for i := range n.ComInterfaces {
		n.ComInterfaces[i].CalcHash(c)
	}
	c.Uint32(uint32(len(n.DataPools)))
	for i := range n.DataPools {
		n.DataPools[i].CalcHash(c)
	}
	c.Uint32(uint32(len(n.CanProtocols)))
	for i := range n.CanProtocols {
		n.CanProtocols[i].CalcHash(c)
	}
	for _, number := range n.SortedManagerInterfaces() {
		manager := n.CanOpenManagers[number]
		c.Uint8(number)
		manager.CalcHash(c)
	}
	c.Uint32(uint32(len(n.Applications)))
	for i := range n.Applications {
		n.Applications[i].CalcHash(c)
	}
	n.Halc.CalcHash(c)
}
