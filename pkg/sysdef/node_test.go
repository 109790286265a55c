package sysdef

import (
	"testing"

	"github.com/samsamfire/gosysdef/pkg/devices"
	"github.com/samsamfire/gosysdef/pkg/model"
	"github.com/stretchr/testify/assert"
)

func createSquadTest() []model.Node {
	return []model.Node{
		{DeviceType: "ESX4", SubDeviceName: "CPU_A"},
		{DeviceType: "ESX4", SubDeviceName: "CPU_B"},
	}
}

func TestAddNode(t *testing.T) {
	t.Run("needs a registry", func(t *testing.T) {
		_, err := New().AddNode(model.Node{Name: "ecu", DeviceType: "ESX3CM"})
		assert.ErrorIs(t, err, ErrConfig)
	})
	t.Run("unknown device", func(t *testing.T) {
		sd := New(WithDeviceRegistry(createRegistryTest(t)))
		_, err := sd.AddNode(model.Node{Name: "ecu", DeviceType: "unknown"})
		assert.ErrorIs(t, err, ErrConfig)
		assert.ErrorIs(t, err, devices.ErrUnknownDevice)
		assert.Empty(t, sd.Nodes)
	})
	t.Run("interfaces from device definition", func(t *testing.T) {
		sd := New(WithDeviceRegistry(createRegistryTest(t)))
		index, err := sd.AddNode(model.Node{
			Name:         "ecu",
			DeviceType:   "esx3cm",
			CanProtocols: []model.CanProtocol{{Type: model.ProtocolECeS}},
		})
		assert.Nil(t, err)
		node := sd.Nodes[index]
		assert.Len(t, node.ComInterfaces, 3)
		assert.Equal(t, model.BusTypeEthernet, node.ComInterfaces[2].Type)
		assert.Len(t, node.CanProtocols[0].ComMessages, 2)
	})
}

func TestNodeSquad(t *testing.T) {
	sd := createSystemTest(t)
	squadIndex, err := sd.AddNodeSquad(createSquadTest(), "dual")
	assert.Nil(t, err)
	assert.EqualValues(t, 0, squadIndex)
	assert.Equal(t, []uint32{2, 3}, sd.Squads[0].SubNodeIndexes)
	assert.Equal(t, "dual_CPU_A", sd.Nodes[2].Name)
	assert.Equal(t, "dual_CPU_B", sd.Nodes[3].Name)
	assert.Len(t, sd.Nodes[3].ComInterfaces, 2)

	t.Run("members do not conflict with each other", func(t *testing.T) {
		result, err := sd.CheckErrorNode(2, CheckNodeNameConflict|CheckNodeNameInvalid)
		assert.Nil(t, err)
		assert.False(t, result.HasError())
	})
	t.Run("base name conflicts with other nodes", func(t *testing.T) {
		clone := sd.Clone()
		assert.Nil(t, clone.SetNodeName(senderIndexTest, "DUAL"))
		for _, nodeIndex := range []uint32{senderIndexTest, 2, 3} {
			result, err := clone.CheckErrorNode(nodeIndex, CheckNodeNameConflict)
			assert.Nil(t, err)
			assert.True(t, result.NameConflict)
		}
	})
	t.Run("rename squad", func(t *testing.T) {
		clone := sd.Clone()
		assert.Nil(t, clone.SetNodeName(3, "twin"))
		assert.Equal(t, "twin", clone.Squads[0].BaseName)
		assert.Equal(t, "twin_CPU_A", clone.Nodes[2].Name)
		assert.Equal(t, "twin_CPU_B", clone.Nodes[3].Name)
	})
	t.Run("delete member deletes squad", func(t *testing.T) {
		clone := sd.Clone()
		late, err := clone.AddNode(createComNodeTest("late", false))
		assert.Nil(t, err)
		assert.EqualValues(t, 4, late)
		clone.Nodes[senderIndexTest].CanOpenManagers = map[uint8]model.CanOpenManager{
			0: {Active: true, NodeId: 1, Devices: map[model.CanOpenDeviceId]model.CanOpenDevice{
				{NodeIndex: 2}: {NodeId: 2},
				{NodeIndex: 4}: {NodeId: 4},
			}},
		}
		assert.Nil(t, clone.DeleteNode(3))
		assert.Len(t, clone.Nodes, 3)
		assert.Empty(t, clone.Squads)
		assert.Equal(t, "late", clone.Nodes[2].Name)
		devices := clone.Nodes[senderIndexTest].CanOpenManagers[0].Devices
		assert.Equal(t, map[model.CanOpenDeviceId]model.CanOpenDevice{{NodeIndex: 2}: {NodeId: 4}}, devices)
	})
	t.Run("delete squad renumbers squads above it", func(t *testing.T) {
		clone := sd.Clone()
		mid, err := clone.AddNode(createComNodeTest("mid", false))
		assert.Nil(t, err)
		assert.EqualValues(t, 4, mid)
		second, err := clone.AddNodeSquad(createSquadTest(), "second")
		assert.Nil(t, err)
		assert.Equal(t, []uint32{5, 6}, clone.Squads[second].SubNodeIndexes)

		assert.Nil(t, clone.DeleteNode(2))
		assert.Len(t, clone.Nodes, 5)
		assert.Len(t, clone.Squads, 1)
		assert.Equal(t, "second", clone.Squads[0].BaseName)
		assert.Equal(t, []uint32{3, 4}, clone.Squads[0].SubNodeIndexes)
		assert.Equal(t, "mid", clone.Nodes[2].Name)
		assert.Equal(t, "second_CPU_A", clone.Nodes[3].Name)
		assert.Equal(t, "second_CPU_B", clone.Nodes[4].Name)

		// Deleting the remaining squad leaves the nodes below untouched
		assert.Nil(t, clone.DeleteNode(4))
		assert.Empty(t, clone.Squads)
		assert.Len(t, clone.Nodes, 3)
		assert.Equal(t, "mid", clone.Nodes[2].Name)
	})
	t.Run("delete single node keeps squad indexes valid", func(t *testing.T) {
		clone := sd.Clone()
		assert.Nil(t, clone.DeleteNode(senderIndexTest))
		assert.Equal(t, []uint32{1, 2}, clone.Squads[0].SubNodeIndexes)
		assert.Equal(t, "dual_CPU_A", clone.Nodes[1].Name)
	})
	t.Run("invalid squads", func(t *testing.T) {
		clone := sd.Clone()
		_, err := clone.AddNodeSquad(createSquadTest()[:1], "single")
		assert.ErrorIs(t, err, ErrConfig)
		squad := createSquadTest()
		squad[1].SubDeviceName = ""
		_, err = clone.AddNodeSquad(squad, "broken")
		assert.ErrorIs(t, err, ErrConfig)
		squad[1].SubDeviceName = "CPU_C"
		_, err = clone.AddNodeSquad(squad, "broken")
		assert.ErrorIs(t, err, devices.ErrUnknownSubDevice)
		assert.Len(t, clone.Nodes, 4)
		assert.Len(t, clone.Squads, 1)
	})
}

func TestCheckErrorNodeComputed(t *testing.T) {
	sd := createSystemTest(t)
	sd.Nodes[senderIndexTest].Name = "1sender"
	result, err := sd.CheckErrorNode(senderIndexTest, CheckNodeNameInvalid)
	assert.Nil(t, err)
	assert.Equal(t, NodeCheckResult{Computed: CheckNodeNameInvalid, NameInvalid: true}, result)

	again, err := sd.CheckErrorNode(senderIndexTest, CheckNodeNameInvalid)
	assert.Nil(t, err)
	assert.Equal(t, result, again)
}

func TestDataPoolChecks(t *testing.T) {
	sd := createSystemTest(t)

	t.Run("content is memoized", func(t *testing.T) {
		sd.InvalidateCache()
		first, err := sd.CheckErrorNode(senderIndexTest, CheckDataPoolsInvalid)
		assert.Nil(t, err)
		hits, _ := sd.CacheStats()
		second, err := sd.CheckErrorNode(senderIndexTest, CheckDataPoolsInvalid)
		assert.Nil(t, err)
		newHits, _ := sd.CacheStats()
		assert.Equal(t, first, second)
		assert.Equal(t, hits+1, newHits)
	})
	t.Run("element referenced twice", func(t *testing.T) {
		clone := sd.Clone()
		message := &clone.Nodes[senderIndexTest].CanProtocols[0].ComMessages[0].TxMessages[0]
		message.Signals = append(message.Signals, model.Signal{ElementIndex: 0, StartBit: 16, BitLength: 16})
		result, err := clone.CheckErrorDataPool(senderIndexTest, 0)
		assert.Nil(t, err)
		assert.True(t, result.ListsInvalid)
		assert.Equal(t, []uint32{0}, result.InvalidLists)
	})
	t.Run("unreferenced element", func(t *testing.T) {
		clone := sd.Clone()
		list := &clone.Nodes[receiverIndexTest].DataPools[0].Lists[1]
		list.Elements = append(list.Elements, model.Element{Name: "unused", Type: model.TypeUint8, Max: 1})
		result, err := clone.CheckErrorDataPool(receiverIndexTest, 0)
		assert.Nil(t, err)
		assert.Equal(t, []uint32{1}, result.InvalidLists)
	})
	t.Run("duplicated data pool name", func(t *testing.T) {
		clone := sd.Clone()
		node := &clone.Nodes[senderIndexTest]
		node.DataPools = append(node.DataPools, model.DataPool{Name: "COMM", Type: model.DataPoolNvm})
		result, err := clone.CheckErrorNode(senderIndexTest, CheckDataPoolsInvalid)
		assert.Nil(t, err)
		assert.Equal(t, []uint32{0, 1}, result.InvalidDataPools)
	})
	t.Run("delete data pool renumbers protocols", func(t *testing.T) {
		clone := sd.Clone()
		node := &clone.Nodes[senderIndexTest]
		node.DataPools = append([]model.DataPool{{Name: "diag", Type: model.DataPoolDiag}}, node.DataPools...)
		node.CanProtocols[0].DataPoolIndex = 1
		assert.Nil(t, clone.DeleteDataPool(senderIndexTest, 0))
		assert.EqualValues(t, 0, clone.Nodes[senderIndexTest].CanProtocols[0].DataPoolIndex)
		assert.Nil(t, clone.DeleteDataPool(senderIndexTest, 0))
		assert.Empty(t, clone.Nodes[senderIndexTest].CanProtocols)
		assert.ErrorIs(t, clone.DeleteDataPool(senderIndexTest, 0), ErrRange)
	})
}

func TestSignalCounts(t *testing.T) {
	sd := createSystemTest(t)
	sd.Nodes[senderIndexTest].CanProtocols[0].Type = model.ProtocolECoS
	message := &sd.Nodes[senderIndexTest].CanProtocols[0].ComMessages[0].TxMessages[0]
	message.Signals = nil
	result, err := sd.CheckErrorNode(senderIndexTest, CheckCommSignalCount)
	assert.Nil(t, err)
	assert.True(t, result.CommMinSignalCountInvalid)
	assert.False(t, result.CommMaxSignalCountInvalid)
}

func TestApplicationsAndHalc(t *testing.T) {
	sd := createSystemTest(t)
	node := &sd.Nodes[senderIndexTest]
	node.Applications = []model.Application{
		{Name: "main", Type: model.ApplicationProgrammable, ProcessId: 0},
		{Name: "io", Type: model.ApplicationProgrammable, ProcessId: 1},
	}
	result, err := sd.CheckErrorNode(senderIndexTest, CheckApplicationsInvalid|CheckHalcInvalid)
	assert.Nil(t, err)
	assert.False(t, result.HasError())

	t.Run("duplicated process id", func(t *testing.T) {
		clone := sd.Clone()
		clone.Nodes[senderIndexTest].Applications[1].ProcessId = 0
		result, err := clone.CheckErrorNode(senderIndexTest, CheckApplicationsInvalid)
		assert.Nil(t, err)
		assert.Equal(t, []uint32{0, 1}, result.InvalidApplications)
	})
	t.Run("too many applications", func(t *testing.T) {
		clone := sd.Clone()
		clone.Nodes[senderIndexTest].Applications = append(clone.Nodes[senderIndexTest].Applications,
			model.Application{Name: "data", Type: model.ApplicationFileContainer})
		result, err := clone.CheckErrorNode(senderIndexTest, CheckApplicationsInvalid)
		assert.Nil(t, err)
		assert.Equal(t, []uint32{2}, result.InvalidApplications)
	})
	t.Run("duplicated halc channel", func(t *testing.T) {
		clone := sd.Clone()
		clone.Nodes[senderIndexTest].Halc = model.HalcConfig{Domains: []model.HalcDomain{
			{Name: "inputs", Channels: []model.HalcChannel{{Name: "in0"}, {Name: "IN0"}}},
		}}
		result, err := clone.CheckErrorNode(senderIndexTest, CheckHalcInvalid)
		assert.Nil(t, err)
		assert.True(t, result.HalcInvalid)
	})
}

func TestCanOpen(t *testing.T) {
	sd := createSystemTest(t)
	sd.Nodes[senderIndexTest].CanOpenManagers = map[uint8]model.CanOpenManager{
		0: {
			Active:                  true,
			NodeId:                  1,
			UseHeartbeatProducer:    true,
			HeartbeatProducerTimeMs: 100,
			ProduceSync:             true,
			Devices: map[model.CanOpenDeviceId]model.CanOpenDevice{
				{NodeIndex: receiverIndexTest}: {
					NodeId:                  2,
					UseHeartbeatProducer:    true,
					HeartbeatProducerTimeMs: 100,
					UseHeartbeatConsumer:    true,
					HeartbeatConsumerTimeMs: 150,
				},
			},
		},
	}
	manager, conn, err := sd.GetCanOpenManagerOfBus(canBusIndexTest)
	assert.Nil(t, err)
	assert.NotNil(t, manager)
	assert.Equal(t, BusConnection{NodeIndex: senderIndexTest, InterfaceIndex: 0}, conn)
	manager, _, err = sd.GetCanOpenManagerOfBus(ethBusIndexTest)
	assert.Nil(t, err)
	assert.Nil(t, manager)

	result, err := sd.CheckErrorNode(senderIndexTest, CheckCanOpenNodeIds|CheckCanOpenHeartbeat)
	assert.Nil(t, err)
	assert.False(t, result.HasError())

	t.Run("device node id used by manager", func(t *testing.T) {
		clone := sd.Clone()
		manager := clone.Nodes[senderIndexTest].CanOpenManagers[0]
		device := manager.Devices[model.CanOpenDeviceId{NodeIndex: receiverIndexTest}]
		device.NodeId = 1
		manager.Devices[model.CanOpenDeviceId{NodeIndex: receiverIndexTest}] = device
		result, err := clone.CheckErrorNode(senderIndexTest, CheckCanOpenNodeIds)
		assert.Nil(t, err)
		assert.True(t, result.CanOpenNodeIdInvalid)
	})
	t.Run("consumer faster than producer", func(t *testing.T) {
		clone := sd.Clone()
		manager := clone.Nodes[senderIndexTest].CanOpenManagers[0]
		device := manager.Devices[model.CanOpenDeviceId{NodeIndex: receiverIndexTest}]
		device.HeartbeatConsumerTimeMs = 100
		manager.Devices[model.CanOpenDeviceId{NodeIndex: receiverIndexTest}] = device
		result, err := clone.CheckErrorNode(senderIndexTest, CheckCanOpenHeartbeat)
		assert.Nil(t, err)
		assert.True(t, result.CanOpenHeartbeatInvalid)
	})
	t.Run("sync pdo needs a sync producer", func(t *testing.T) {
		clone := sd.Clone()
		for _, nodeIndex := range []uint32{senderIndexTest, receiverIndexTest} {
			protocol := &clone.Nodes[nodeIndex].CanProtocols[0]
			protocol.Type = model.ProtocolCanOpen
			messages := protocol.ComMessages[0].Messages(nodeIndex == senderIndexTest)
			messages[0].TxMethod = model.TxMethodCanOpenPdoSync
		}
		txId := messageIdTest(senderIndexTest, true)
		txId.ProtocolType = model.ProtocolCanOpen

		result, err := clone.CheckErrorBus(canBusIndexTest, CheckBusMessages)
		assert.Nil(t, err)
		assert.NotContains(t, result.InvalidMessages, txId)

		manager := clone.Nodes[senderIndexTest].CanOpenManagers[0]
		manager.ProduceSync = false
		clone.Nodes[senderIndexTest].CanOpenManagers[0] = manager
		result, err = clone.CheckErrorBus(canBusIndexTest, CheckBusMessages)
		assert.Nil(t, err)
		assert.Contains(t, result.InvalidMessages, txId)
	})
}
