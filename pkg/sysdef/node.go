package sysdef

import (
	"fmt"

	"github.com/samsamfire/gosysdef/pkg/comm"
	"github.com/samsamfire/gosysdef/pkg/devices"
	"github.com/samsamfire/gosysdef/pkg/model"
)

// resolveDevice returns the definition of node, unknown devices are a
// configuration error as the node could not be built correctly
func (sd *SystemDefinition) resolveDevice(node *model.Node) (*devices.SubDevice, error) {
	if sd.devices == nil {
		return nil, fmt.Errorf("%w : no device registry", ErrConfig)
	}
	sub, err := sd.devices.SubDevice(node.DeviceType, node.SubDeviceName)
	if err != nil {
		sd.logger.Errorf("[SYSDEF] cannot add node %v : %v", node.Name, err)
		return nil, fmt.Errorf("%w : %w", ErrConfig, err)
	}
	return sub, nil
}

// prepareNode creates the interfaces of the device definition if the node
// has none and makes sure every protocol has one container per CAN interface
func prepareNode(node *model.Node, sub *devices.SubDevice) {
	if len(node.ComInterfaces) == 0 {
		for i := uint8(0); i < sub.CanInterfaces; i++ {
			node.ComInterfaces = append(node.ComInterfaces, model.ComInterface{Type: model.BusTypeCan, InterfaceNumber: i})
		}
		for i := uint8(0); i < sub.EthernetInterfaces; i++ {
			node.ComInterfaces = append(node.ComInterfaces, model.ComInterface{Type: model.BusTypeEthernet, InterfaceNumber: i})
		}
	}
	canCount := 0
	for i := range node.ComInterfaces {
		if node.ComInterfaces[i].Type == model.BusTypeCan {
			canCount++
		}
	}
	for i := range node.CanProtocols {
		protocol := &node.CanProtocols[i]
		for len(protocol.ComMessages) < canCount {
			protocol.ComMessages = append(protocol.ComMessages, model.MessageContainer{})
		}
	}
}

// AddNode appends a node and returns its index.
// The device type of the node must be known to the device registry.
func (sd *SystemDefinition) AddNode(node model.Node) (uint32, error) {
	sub, err := sd.resolveDevice(&node)
	if err != nil {
		return 0, err
	}
	prepareNode(&node, sub)
	sd.Nodes = append(sd.Nodes, node)
	sd.logger.Debugf("[SYSDEF] added node %v (%v)", node.Name, node.DeviceType)
	return uint32(len(sd.Nodes) - 1), nil
}

// AddNodeSquad appends the sub nodes of one multi device unit.
// Nodes are named after baseName and their sub device name.
// Returns the index of the new squad.
func (sd *SystemDefinition) AddNodeSquad(nodes []model.Node, baseName string) (uint32, error) {
	if len(nodes) < 2 {
		return 0, fmt.Errorf("%w : a squad needs at least 2 nodes, got %v", ErrConfig, len(nodes))
	}
	// Resolve everything first, nothing is added on error
	subs := make([]*devices.SubDevice, len(nodes))
	for i := range nodes {
		if nodes[i].SubDeviceName == "" {
			return 0, fmt.Errorf("%w : squad member %v has no sub device name", ErrConfig, i)
		}
		sub, err := sd.resolveDevice(&nodes[i])
		if err != nil {
			return 0, err
		}
		subs[i] = sub
	}
	squad := model.NodeSquad{BaseName: baseName, SubNodeIndexes: make([]uint32, 0, len(nodes))}
	for i := range nodes {
		node := nodes[i]
		node.Name = model.MemberName(baseName, node.SubDeviceName)
		prepareNode(&node, subs[i])
		sd.Nodes = append(sd.Nodes, node)
		squad.SubNodeIndexes = append(squad.SubNodeIndexes, uint32(len(sd.Nodes)-1))
	}
	sd.Squads = append(sd.Squads, squad)
	sd.logger.Debugf("[SYSDEF] added squad %v with %v nodes", baseName, len(nodes))
	return uint32(len(sd.Squads) - 1), nil
}

// squadOfNode returns the index of the squad containing nodeIndex or -1
func (sd *SystemDefinition) squadOfNode(nodeIndex uint32) int {
	for i := range sd.Squads {
		if sd.Squads[i].Contains(nodeIndex) >= 0 {
			return i
		}
	}
	return -1
}

// DeleteNode removes a node. Deleting a squad member removes the
// whole squad and all of its nodes.
func (sd *SystemDefinition) DeleteNode(nodeIndex uint32) error {
	if err := sd.checkNodeIndex(nodeIndex); err != nil {
		return err
	}
	toDelete := []uint32{nodeIndex}
	squadIndex := sd.squadOfNode(nodeIndex)
	if squadIndex >= 0 {
		squad := &sd.Squads[squadIndex]
		if len(squad.SubNodeIndexes) == 0 {
			return fmt.Errorf("%w : squad %v has no members", ErrConfig, squad.BaseName)
		}
		for _, member := range squad.SubNodeIndexes {
			if err := sd.checkNodeIndex(member); err != nil {
				return fmt.Errorf("%w : squad %v references node %v", ErrConfig, squad.BaseName, member)
			}
		}
		toDelete = squad.SubNodeIndexes
		sd.logger.Debugf("[SYSDEF] deleting squad %v", squad.BaseName)
		sd.Squads = append(sd.Squads[:squadIndex], sd.Squads[squadIndex+1:]...)
	}
	// Highest first so that pending indexes stay valid
	for _, index := range sortDescending(toDelete) {
		sd.logger.Debugf("[SYSDEF] deleting node %v at %v", sd.Nodes[index].Name, index)
		sd.Nodes = append(sd.Nodes[:index], sd.Nodes[index+1:]...)
		sd.reindexNodeRefs(deleteRemap(index))
	}
	sd.cache.clear()
	return nil
}

// SetNodeName renames a node. For squad members the base name of the
// squad is changed and all members are renamed.
func (sd *SystemDefinition) SetNodeName(nodeIndex uint32, name string) error {
	if err := sd.checkNodeIndex(nodeIndex); err != nil {
		return err
	}
	squadIndex := sd.squadOfNode(nodeIndex)
	if squadIndex < 0 {
		sd.Nodes[nodeIndex].Name = name
		return nil
	}
	squad := &sd.Squads[squadIndex]
	for _, member := range squad.SubNodeIndexes {
		if err := sd.checkNodeIndex(member); err != nil {
			return fmt.Errorf("%w : squad %v references node %v", ErrConfig, squad.BaseName, member)
		}
	}
	squad.BaseName = name
	for _, member := range squad.SubNodeIndexes {
		node := &sd.Nodes[member]
		node.Name = model.MemberName(name, node.SubDeviceName)
	}
	return nil
}

// baseName returns the name used for name checks, the squad base name
// for squad members or the node name
func (sd *SystemDefinition) baseName(nodeIndex uint32) string {
	if squadIndex := sd.squadOfNode(nodeIndex); squadIndex >= 0 {
		return sd.Squads[squadIndex].BaseName
	}
	return sd.Nodes[nodeIndex].Name
}

func (sd *SystemDefinition) checkNodeNameConflict(nodeIndex uint32) bool {
	name := sd.baseName(nodeIndex)
	squadIndex := sd.squadOfNode(nodeIndex)
	for i := range sd.Nodes {
		if uint32(i) == nodeIndex {
			continue
		}
		otherSquad := sd.squadOfNode(uint32(i))
		// Members of the same squad share the base name
		if squadIndex >= 0 && otherSquad == squadIndex {
			continue
		}
		if model.NamesEqual(sd.baseName(uint32(i)), name) {
			return true
		}
	}
	return false
}

// CheckErrorNode runs the requested checks on node at nodeIndex.
// Only the fields matching checks are computed.
func (sd *SystemDefinition) CheckErrorNode(nodeIndex uint32, checks NodeChecks) (NodeCheckResult, error) {
	result := NodeCheckResult{Computed: checks}
	if err := sd.checkNodeIndex(nodeIndex); err != nil {
		return result, err
	}
	node := &sd.Nodes[nodeIndex]

	if checks.Has(CheckNodeNameConflict) {
		result.NameConflict = sd.checkNodeNameConflict(nodeIndex)
	}
	if checks.Has(CheckNodeNameInvalid) {
		result.NameInvalid = !sd.isValidName(sd.baseName(nodeIndex))
	}
	if checks.Has(CheckNodeIdInvalid) {
		result.InvalidNodeIdInterfaces = []uint32{}
		for comIndex := range node.ComInterfaces {
			ci := &node.ComInterfaces[comIndex]
			if !ci.IsConnected {
				continue
			}
			available, err := sd.CheckInterfaceIsAvailable(nodeIndex, uint32(comIndex), ci.NodeId)
			if err != nil {
				return result, err
			}
			if !available || ci.NodeId > MaxNodeId {
				result.InvalidNodeIdInterfaces = append(result.InvalidNodeIdInterfaces, uint32(comIndex))
			}
		}
		result.NodeIdInvalid = len(result.InvalidNodeIdInterfaces) > 0
	}
	if checks.Has(CheckIpInvalid) {
		result.InvalidIpInterfaces = []uint32{}
		for comIndex := range node.ComInterfaces {
			ci := &node.ComInterfaces[comIndex]
			if !ci.IsConnected || ci.Type != model.BusTypeEthernet {
				continue
			}
			valid, err := sd.CheckIpAddressIsValid(nodeIndex, uint32(comIndex), ci.Ip)
			if err != nil {
				return result, err
			}
			if !valid {
				result.InvalidIpInterfaces = append(result.InvalidIpInterfaces, uint32(comIndex))
			}
		}
		result.IpInvalid = len(result.InvalidIpInterfaces) > 0
	}
	if checks.Has(CheckDataPoolsInvalid) {
		result.InvalidDataPools = []uint32{}
		for dataPoolIndex := range node.DataPools {
			dataPoolResult, err := sd.CheckErrorDataPool(nodeIndex, uint32(dataPoolIndex))
			if err != nil {
				return result, err
			}
			if dataPoolResult.HasError() {
				result.InvalidDataPools = append(result.InvalidDataPools, uint32(dataPoolIndex))
			}
		}
		result.DataPoolsInvalid = len(result.InvalidDataPools) > 0
	}
	if checks.Has(CheckApplicationsInvalid) {
		result.InvalidApplications = sd.checkApplications(node)
		result.ApplicationsInvalid = len(result.InvalidApplications) > 0
	}
	if checks.Has(CheckHalcInvalid) {
		result.HalcInvalid = !sd.halcValid(&node.Halc)
	}
	if checks.Has(CheckCommSignalCount) {
		for i := range node.CanProtocols {
			protocol := &node.CanProtocols[i]
			rules := comm.RulesFor(protocol.Type)
			for containerIndex := range protocol.ComMessages {
				container := &protocol.ComMessages[containerIndex]
				if !container.IsUsedByInterface {
					continue
				}
				counts := comm.CheckSignalCounts(rules, container)
				if counts.TxSignalCountInvalid || counts.RxSignalCountInvalid {
					result.CommMaxSignalCountInvalid = true
				}
				if counts.MinSignalCountInvalid {
					result.CommMinSignalCountInvalid = true
				}
			}
		}
	}
	if checks.Has(CheckCanOpenNodeIds) || checks.Has(CheckCanOpenHeartbeat) {
		nodeIdInvalid, heartbeatInvalid := checkCanOpenManagers(node)
		if checks.Has(CheckCanOpenNodeIds) {
			result.CanOpenNodeIdInvalid = nodeIdInvalid
		}
		if checks.Has(CheckCanOpenHeartbeat) {
			result.CanOpenHeartbeatInvalid = heartbeatInvalid
		}
	}
	if result.HasError() {
		sd.logger.Debugf("[SYSDEF] node %v has errors %+v", node.Name, result)
	}
	return result, nil
}
