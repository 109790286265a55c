package model

import (
	"fmt"

	"github.com/samsamfire/gosysdef/internal/crc"
)

// ComInterface is a communication interface owned by a node
type ComInterface struct {
	Type            BusType
	InterfaceNumber uint8
	IsConnected     bool
	// BusIndex is only meaningful when IsConnected is set
	BusIndex         uint32
	NodeId           uint8
	Ip               [4]byte
	IsRoutingEnabled bool
}

// Connect records a connection to the bus at busIndex
func (ci *ComInterface) Connect(busIndex uint32, nodeId uint8) {
	ci.IsConnected = true
	ci.BusIndex = busIndex
	ci.NodeId = nodeId
}

// Disconnect clears the connection, node id and ip are kept
func (ci *ComInterface) Disconnect() {
	ci.IsConnected = false
	ci.BusIndex = 0
}

// IsConnectedTo returns true if interface is connected to busIndex
func (ci *ComInterface) IsConnectedTo(busIndex uint32) bool {
	return ci.IsConnected && ci.BusIndex == busIndex
}

// Name returns the usual display name e.g. CAN1, ETH2
func (ci *ComInterface) Name() string {
	if ci.Type == BusTypeEthernet {
		return fmt.Sprintf("ETH%d", ci.InterfaceNumber+1)
	}
	return fmt.Sprintf("CAN%d", ci.InterfaceNumber+1)
}

func (ci *ComInterface) CalcHash(c *crc.CRC32) {
	c.Uint8(uint8(ci.Type))
	c.Uint8(ci.InterfaceNumber)
	c.Bool(ci.IsConnected)
	c.Uint32(ci.BusIndex)
	c.Uint8(ci.NodeId)
	c.Block(ci.Ip[:])
	c.Bool(ci.IsRoutingEnabled)
}
