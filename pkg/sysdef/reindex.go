package sysdef

import (
	"sort"

	"github.com/samsamfire/gosysdef/pkg/model"
)

// remapFunc gives the new value of an index after a structural change,
// keep is false when the referenced entity does not exist anymore
type remapFunc func(old uint32) (newIndex uint32, keep bool)

func insertRemap(at uint32) remapFunc {
	return func(old uint32) (uint32, bool) {
		if old >= at {
			return old + 1, true
		}
		return old, true
	}
}

func deleteRemap(at uint32) remapFunc {
	return func(old uint32) (uint32, bool) {
		switch {
		case old == at:
			return old, false
		case old > at:
			return old - 1, true
		default:
			return old, true
		}
	}
}

// reindexBusRefs updates every interface connection after the bus list changed.
// Connections to removed buses are cleared.
func (sd *SystemDefinition) reindexBusRefs(remap remapFunc) {
	for nodeIndex := range sd.Nodes {
		node := &sd.Nodes[nodeIndex]
		for comIndex := range node.ComInterfaces {
			ci := &node.ComInterfaces[comIndex]
			if !ci.IsConnected {
				continue
			}
			newIndex, keep := remap(ci.BusIndex)
			if !keep {
				sd.logger.Debugf("[SYSDEF] disconnecting %v %v", node.Name, ci.Name())
				ci.Disconnect()
				continue
			}
			ci.BusIndex = newIndex
		}
	}
}

// reindexNodeRefs updates squad members and CANopen managed devices
// after the node list changed. Empty squads are removed.
func (sd *SystemDefinition) reindexNodeRefs(remap remapFunc) {
	squads := sd.Squads[:0]
	for _, squad := range sd.Squads {
		members := squad.SubNodeIndexes[:0]
		for _, index := range squad.SubNodeIndexes {
			if newIndex, keep := remap(index); keep {
				members = append(members, newIndex)
			}
		}
		squad.SubNodeIndexes = members
		if len(members) > 0 {
			squads = append(squads, squad)
		}
	}
	sd.Squads = squads

	for nodeIndex := range sd.Nodes {
		node := &sd.Nodes[nodeIndex]
		for number, manager := range node.CanOpenManagers {
			if len(manager.Devices) == 0 {
				continue
			}
			devices := make(map[model.CanOpenDeviceId]model.CanOpenDevice, len(manager.Devices))
			for id, device := range manager.Devices {
				newIndex, keep := remap(id.NodeIndex)
				if !keep {
					continue
				}
				id.NodeIndex = newIndex
				devices[id] = device
			}
			manager.Devices = devices
			node.CanOpenManagers[number] = manager
		}
	}
}

// reindexDataPoolRefs updates protocol data pool indexes of one node
// after its data pool list changed. Protocols of removed data pools are removed.
func (sd *SystemDefinition) reindexDataPoolRefs(nodeIndex uint32, remap remapFunc) {
	node := &sd.Nodes[nodeIndex]
	protocols := node.CanProtocols[:0]
	for _, protocol := range node.CanProtocols {
		newIndex, keep := remap(protocol.DataPoolIndex)
		if !keep {
			continue
		}
		protocol.DataPoolIndex = newIndex
		protocols = append(protocols, protocol)
	}
	node.CanProtocols = protocols
}

func sortDescending(indexes []uint32) []uint32 {
	sorted := append([]uint32(nil), indexes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
	return sorted
}
