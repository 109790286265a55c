package sysdef

import "github.com/samsamfire/gosysdef/pkg/model"

const (
	canOpenMinNodeId uint8 = 1
	canOpenMaxNodeId uint8 = 127
)

// GetCanOpenManagerOfBus returns the active CANopen manager connected
// to busIndex and the interface it is connected through.
// A nil manager is returned if there is none.
func (sd *SystemDefinition) GetCanOpenManagerOfBus(busIndex uint32) (*model.CanOpenManager, BusConnection, error) {
	if err := sd.checkBusIndex(busIndex); err != nil {
		return nil, BusConnection{}, err
	}
	for _, conn := range sd.GetNodeIndexesOfBus(busIndex) {
		node := &sd.Nodes[conn.NodeIndex]
		ci := &node.ComInterfaces[conn.InterfaceIndex]
		if ci.Type != model.BusTypeCan {
			continue
		}
		manager, ok := node.CanOpenManagers[ci.InterfaceNumber]
		if ok && manager.Active {
			return &manager, conn, nil
		}
	}
	return nil, BusConnection{}, nil
}

func canOpenNodeIdValid(nodeId uint8) bool {
	return nodeId >= canOpenMinNodeId && nodeId <= canOpenMaxNodeId
}

// checkCanOpenManagers checks every active manager of node. Node ids of the
// manager and its devices must be valid and unique per interface.
// Heartbeat producers need a non zero time and a consumer must wait longer
// than the matching producer.
func checkCanOpenManagers(node *model.Node) (nodeIdInvalid bool, heartbeatInvalid bool) {
	for _, interfaceNumber := range node.SortedManagerInterfaces() {
		manager := node.CanOpenManagers[interfaceNumber]
		if !manager.Active {
			continue
		}
		used := map[uint8]bool{manager.NodeId: true}
		if !canOpenNodeIdValid(manager.NodeId) {
			nodeIdInvalid = true
		}
		if manager.UseHeartbeatProducer && manager.HeartbeatProducerTimeMs == 0 {
			heartbeatInvalid = true
		}
		for _, id := range manager.SortedDeviceIds() {
			device := manager.Devices[id]
			if !canOpenNodeIdValid(device.NodeId) || used[device.NodeId] {
				nodeIdInvalid = true
			}
			used[device.NodeId] = true
			if device.UseHeartbeatProducer && device.HeartbeatProducerTimeMs == 0 {
				heartbeatInvalid = true
			}
			if device.UseHeartbeatConsumer && device.UseHeartbeatProducer &&
				device.HeartbeatConsumerTimeMs <= device.HeartbeatProducerTimeMs {
				heartbeatInvalid = true
			}
		}
	}
	return nodeIdInvalid, heartbeatInvalid
}
