package model

import (
	"sort"

	"github.com/samsamfire/gosysdef/internal/crc"
)

// CanOpenDeviceId references a managed device by node index and
// the CAN interface number of that node
type CanOpenDeviceId struct {
	NodeIndex       uint32
	InterfaceNumber uint8
}

type CanOpenDevice struct {
	NodeId                  uint8
	UseHeartbeatProducer    bool
	HeartbeatProducerTimeMs uint16
	UseHeartbeatConsumer    bool
	HeartbeatConsumerTimeMs uint16
}

// CanOpenManager describes a node acting as CANopen manager on one
// of its CAN interfaces
type CanOpenManager struct {
	Active                  bool
	NodeId                  uint8
	UseHeartbeatProducer    bool
	HeartbeatProducerTimeMs uint16
	ProduceSync             bool
	SyncCycleTimeUs         uint32
	Devices                 map[CanOpenDeviceId]CanOpenDevice
}

// SortedDeviceIds returns device ids ordered by node index then interface
func (m *CanOpenManager) SortedDeviceIds() []CanOpenDeviceId {
	ids := make([]CanOpenDeviceId, 0, len(m.Devices))
	for id := range m.Devices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].NodeIndex != ids[j].NodeIndex {
			return ids[i].NodeIndex < ids[j].NodeIndex
		}
		return ids[i].InterfaceNumber < ids[j].InterfaceNumber
	})
	return ids
}

func (m *CanOpenManager) CalcHash(c *crc.CRC32) {
	c.Bool(m.Active)
	c.Uint8(m.NodeId)
	c.Bool(m.UseHeartbeatProducer)
	c.Uint16(m.HeartbeatProducerTimeMs)
	c.Bool(m.ProduceSync)
	c.Uint32(m.SyncCycleTimeUs)
	// Map iteration order is random
	for _, id := range m.SortedDeviceIds() {
		device := m.Devices[id]
		c.Uint32(id.NodeIndex)
		c.Uint8(id.InterfaceNumber)
		c.Uint8(device.NodeId)
		c.Bool(device.UseHeartbeatProducer)
		c.Uint16(device.HeartbeatProducerTimeMs)
		c.Bool(device.UseHeartbeatConsumer)
		c.Uint16(device.HeartbeatConsumerTimeMs)
	}
}
