package sysdef

import (
	"fmt"

	"github.com/samsamfire/gosysdef/pkg/comm"
	"github.com/samsamfire/gosysdef/pkg/model"
)

// AddBus appends a bus and returns its index
func (sd *SystemDefinition) AddBus(bus model.Bus) uint32 {
	index := uint32(len(sd.Buses))
	// Cannot fail when inserting at the end
	_ = sd.InsertBus(index, bus)
	return index
}

// InsertBus inserts a bus at index, existing connections keep pointing
// to the same bus
func (sd *SystemDefinition) InsertBus(index uint32, bus model.Bus) error {
	if int(index) > len(sd.Buses) {
		return ErrRange
	}
	sd.Buses = append(sd.Buses, model.Bus{})
	copy(sd.Buses[index+1:], sd.Buses[index:])
	sd.Buses[index] = bus
	sd.reindexBusRefs(insertRemap(index))
	sd.cache.clear()
	sd.logger.Debugf("[SYSDEF] inserted bus %v at %v", bus.Name, index)
	return nil
}

// DeleteBus removes a bus, interfaces connected to it are disconnected
func (sd *SystemDefinition) DeleteBus(index uint32) error {
	if err := sd.checkBusIndex(index); err != nil {
		return err
	}
	name := sd.Buses[index].Name
	sd.Buses = append(sd.Buses[:index], sd.Buses[index+1:]...)
	sd.reindexBusRefs(deleteRemap(index))
	sd.cache.clear()
	sd.logger.Debugf("[SYSDEF] deleted bus %v at %v", name, index)
	return nil
}

// CheckBusIdAvailable returns false if another bus usable for routing
// already has busId. skip is an optional bus index to ignore.
func (sd *SystemDefinition) CheckBusIdAvailable(busId uint8, skip *uint32) bool {
	for i := range sd.Buses {
		if skip != nil && uint32(i) == *skip {
			continue
		}
		if sd.Buses[i].UsableForRouting && sd.Buses[i].BusId == busId {
			return false
		}
	}
	return true
}

// GetNextFreeBusId returns the lowest bus id, in [0, model.MaxBusId],
// not yet used by a bus usable for routing
func (sd *SystemDefinition) GetNextFreeBusId() (uint8, error) {
	for busId := uint8(0); busId <= model.MaxBusId; busId++ {
		if sd.CheckBusIdAvailable(busId, nil) {
			return busId, nil
		}
	}
	return 0, ErrNoFreeBusId
}

// CheckErrorBus runs the requested checks on bus at busIndex
func (sd *SystemDefinition) CheckErrorBus(busIndex uint32, checks BusChecks) (BusCheckResult, error) {
	result := BusCheckResult{Computed: checks}
	if err := sd.checkBusIndex(busIndex); err != nil {
		return result, err
	}
	bus := &sd.Buses[busIndex]

	if checks.Has(CheckBusNameConflict) {
		for i := range sd.Buses {
			if uint32(i) != busIndex && model.NamesEqual(sd.Buses[i].Name, bus.Name) {
				result.NameConflict = true
				break
			}
		}
	}
	if checks.Has(CheckBusNameInvalid) {
		result.NameInvalid = !sd.isValidName(bus.Name)
	}
	if checks.Has(CheckBusIdInvalid) && bus.UsableForRouting {
		result.IdInvalid = bus.BusId > model.MaxBusId || !sd.CheckBusIdAvailable(bus.BusId, &busIndex)
	}
	if checks.Has(CheckBusMessages) {
		invalidDataPools, invalidMessages, err := sd.checkBusMessages(busIndex)
		if err != nil {
			return result, err
		}
		result.InvalidDataPools = invalidDataPools
		result.InvalidMessages = invalidMessages
		result.MessagesInvalid = len(invalidDataPools) > 0
	}
	if result.HasError() {
		sd.logger.Debugf("[SYSDEF] bus %v has errors %+v", bus.Name, result)
	}
	return result, nil
}

// checkBusMessages runs the local layout check of every COM data pool
// on the bus then the bus wide name and id checks of every message
func (sd *SystemDefinition) checkBusMessages(busIndex uint32) ([]ComDataPoolConnection, []model.MessageId, error) {
	invalidDataPools := make([]ComDataPoolConnection, 0)
	invalidMessages := make([]model.MessageId, 0)
	syncProduced := false
	if manager, _, err := sd.GetCanOpenManagerOfBus(busIndex); err == nil && manager != nil {
		syncProduced = manager.ProduceSync
	}

	for _, conn := range sd.GetNodeAndComDpIndexesOfBus(busIndex) {
		node := &sd.Nodes[conn.NodeIndex]
		protocol := &node.CanProtocols[conn.ProtocolIndex]
		container := &protocol.ComMessages[conn.CanInterfaceIndex]
		dataPool := node.ComDataPool(protocol)
		if dataPool == nil {
			return nil, nil, fmt.Errorf("%w : protocol %v of node %v has no COM data pool", ErrConfig, conn.ProtocolIndex, node.Name)
		}
		opts := comm.Options{
			SyncProduced: syncProduced && protocol.Type == model.ProtocolCanOpen,
			IsValidName:  sd.isValidName,
		}
		local := comm.CheckContainer(
			comm.RulesFor(protocol.Type),
			container,
			dataPool.ComList(conn.CanInterfaceIndex, true),
			dataPool.ComList(conn.CanInterfaceIndex, false),
			opts,
		)
		if !local.Valid() {
			invalidDataPools = append(invalidDataPools, conn)
			for _, isTx := range []bool{true, false} {
				for _, messageIndex := range local.InvalidMessages(isTx) {
					invalidMessages = append(invalidMessages, conn.messageId(protocol.Type, isTx, messageIndex))
				}
			}
			continue
		}
		dataPoolValid := true
		for _, isTx := range []bool{true, false} {
			messages := container.Messages(isTx)
			for messageIndex := range messages {
				id := conn.messageId(protocol.Type, isTx, uint32(messageIndex))
				nameValid, err := sd.CheckMessageNameBus(busIndex, messages[messageIndex].Name, &id)
				if err != nil {
					return nil, nil, err
				}
				idValid, err := sd.CheckMessageIdBus(busIndex, messages[messageIndex].UniqueId(), &id)
				if err != nil {
					return nil, nil, err
				}
				if !nameValid || !idValid {
					dataPoolValid = false
					invalidMessages = append(invalidMessages, id)
				}
			}
		}
		if !dataPoolValid {
			invalidDataPools = append(invalidDataPools, conn)
		}
	}
	return invalidDataPools, invalidMessages, nil
}
