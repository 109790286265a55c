package sysdef

import (
	"math"
	"testing"

	"github.com/samsamfire/gosysdef/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestBusIds(t *testing.T) {
	sd := createSystemTest(t)
	busId, err := sd.GetNextFreeBusId()
	assert.Nil(t, err)
	assert.EqualValues(t, 2, busId)
	assert.False(t, sd.CheckBusIdAvailable(0, nil))
	skip := canBusIndexTest
	assert.True(t, sd.CheckBusIdAvailable(0, &skip))

	t.Run("buses not used for routing are ignored", func(t *testing.T) {
		clone := sd.Clone()
		clone.Buses[canBusIndexTest].UsableForRouting = false
		busId, err := clone.GetNextFreeBusId()
		assert.Nil(t, err)
		assert.EqualValues(t, 0, busId)
	})
	t.Run("all ids used", func(t *testing.T) {
		clone := sd.Clone()
		for i := 2; i <= int(model.MaxBusId); i++ {
			clone.AddBus(model.Bus{Name: "can", BusId: uint8(i), UsableForRouting: true})
		}
		_, err := clone.GetNextFreeBusId()
		assert.ErrorIs(t, err, ErrNoFreeBusId)
	})
	t.Run("duplicated id is reported on both buses", func(t *testing.T) {
		clone := sd.Clone()
		clone.Buses[ethBusIndexTest].BusId = 0
		for _, busIndex := range []uint32{canBusIndexTest, ethBusIndexTest} {
			result, err := clone.CheckErrorBus(busIndex, CheckBusIdInvalid)
			assert.Nil(t, err)
			assert.True(t, result.IdInvalid)
		}
	})
	t.Run("id out of range", func(t *testing.T) {
		clone := sd.Clone()
		clone.Buses[ethBusIndexTest].BusId = model.MaxBusId + 1
		result, err := clone.CheckErrorBus(ethBusIndexTest, CheckBusIdInvalid)
		assert.Nil(t, err)
		assert.True(t, result.IdInvalid)
	})
}

func TestInsertDeleteBus(t *testing.T) {
	sd := createSystemTest(t)
	sender := &sd.Nodes[senderIndexTest]

	assert.Nil(t, sd.InsertBus(0, model.Bus{Name: "first", Type: model.BusTypeCan}))
	assert.EqualValues(t, 1, sender.ComInterfaces[0].BusIndex)
	assert.Len(t, sd.GetNodeIndexesOfBus(1), 2)
	assert.Empty(t, sd.GetNodeIndexesOfBus(0))

	assert.Nil(t, sd.DeleteBus(0))
	assert.EqualValues(t, 0, sender.ComInterfaces[0].BusIndex)
	assert.True(t, sender.ComInterfaces[0].IsConnected)
	assert.Len(t, sd.GetNodeIndexesOfBus(canBusIndexTest), 2)

	t.Run("deleting a bus disconnects its interfaces", func(t *testing.T) {
		assert.Nil(t, sd.DeleteBus(canBusIndexTest))
		assert.False(t, sd.Nodes[senderIndexTest].ComInterfaces[0].IsConnected)
		assert.False(t, sd.Nodes[receiverIndexTest].ComInterfaces[0].IsConnected)
		assert.Len(t, sd.Buses, 1)
	})
}

func TestConnections(t *testing.T) {
	sd := createSystemTest(t)
	assert.EqualValues(t, 0, sd.Nodes[senderIndexTest].ComInterfaces[0].NodeId)
	assert.EqualValues(t, 1, sd.Nodes[receiverIndexTest].ComInterfaces[0].NodeId)
	nodeId, err := sd.GetNextFreeNodeIdOnBus(canBusIndexTest)
	assert.Nil(t, err)
	assert.EqualValues(t, 2, nodeId)

	connections := sd.GetNodeAndComDpIndexesOfBus(canBusIndexTest)
	assert.Equal(t, []ComDataPoolConnection{
		{NodeIndex: senderIndexTest},
		{NodeIndex: receiverIndexTest},
	}, connections)
	assert.Len(t, sd.GetNodeAndComDpIndexesOfBusByProtocol(canBusIndexTest, model.ProtocolL2), 2)
	assert.Empty(t, sd.GetNodeAndComDpIndexesOfBusByProtocol(canBusIndexTest, model.ProtocolCanOpen))

	t.Run("duplicated node id", func(t *testing.T) {
		clone := sd.Clone()
		clone.Nodes[receiverIndexTest].ComInterfaces[0].NodeId = 0
		available, err := clone.CheckInterfaceIsAvailable(receiverIndexTest, 0, 0)
		assert.Nil(t, err)
		assert.False(t, available)
		for _, nodeIndex := range []uint32{senderIndexTest, receiverIndexTest} {
			result, err := clone.CheckErrorNode(nodeIndex, CheckNodeIdInvalid)
			assert.Nil(t, err)
			assert.True(t, result.NodeIdInvalid)
			assert.Equal(t, []uint32{0}, result.InvalidNodeIdInterfaces)
		}
	})
	t.Run("node id out of range", func(t *testing.T) {
		clone := sd.Clone()
		clone.Nodes[receiverIndexTest].ComInterfaces[0].NodeId = MaxNodeId + 1
		result, err := clone.CheckErrorNode(receiverIndexTest, CheckNodeIdInvalid)
		assert.Nil(t, err)
		assert.True(t, result.NodeIdInvalid)
	})
	t.Run("duplicated ip", func(t *testing.T) {
		clone := sd.Clone()
		for _, nodeIndex := range []uint32{senderIndexTest, receiverIndexTest} {
			assert.Nil(t, clone.AddConnection(nodeIndex, ethBusIndexTest, 0))
			clone.Nodes[nodeIndex].ComInterfaces[2].Ip = [4]byte{192, 168, 0, 1}
		}
		result, err := clone.CheckErrorNode(senderIndexTest, CheckIpInvalid)
		assert.Nil(t, err)
		assert.True(t, result.IpInvalid)
		assert.Equal(t, []uint32{2}, result.InvalidIpInterfaces)

		clone.Nodes[receiverIndexTest].ComInterfaces[2].Ip = [4]byte{192, 168, 0, 2}
		result, err = clone.CheckErrorNode(senderIndexTest, CheckIpInvalid)
		assert.Nil(t, err)
		assert.False(t, result.IpInvalid)
	})
	t.Run("remove connection", func(t *testing.T) {
		clone := sd.Clone()
		assert.Nil(t, clone.RemoveConnection(receiverIndexTest, 0))
		assert.Len(t, clone.GetNodeIndexesOfBus(canBusIndexTest), 1)
	})
}

func TestMessageCollisions(t *testing.T) {
	sd := createSystemTest(t)
	txId := messageIdTest(senderIndexTest, true)
	rxId := messageIdTest(receiverIndexTest, false)
	uid := model.MessageUniqueId{CanId: 0x100}

	t.Run("sender and receiver of one message do not collide", func(t *testing.T) {
		valid, err := sd.CheckMessageIdBus(canBusIndexTest, uid, &txId)
		assert.Nil(t, err)
		assert.True(t, valid)
		valid, err = sd.CheckMessageNameBus(canBusIndexTest, "status", &rxId)
		assert.Nil(t, err)
		assert.True(t, valid)
	})
	t.Run("without skip every user collides", func(t *testing.T) {
		valid, err := sd.CheckMessageIdBus(canBusIndexTest, uid, nil)
		assert.Nil(t, err)
		assert.False(t, valid)
	})
	t.Run("different definitions collide on both sides", func(t *testing.T) {
		clone := sd.Clone()
		clone.Nodes[receiverIndexTest].DataPools[0].Lists[1].Elements[0].Max = 500
		for _, id := range []model.MessageId{txId, rxId} {
			valid, err := clone.CheckMessageIdBus(canBusIndexTest, uid, &id)
			assert.Nil(t, err)
			assert.False(t, valid)
			valid, err = clone.CheckMessageNameBus(canBusIndexTest, "status", &id)
			assert.Nil(t, err)
			assert.False(t, valid)
		}
		result, err := clone.CheckErrorBus(canBusIndexTest, CheckBusMessages)
		assert.Nil(t, err)
		assert.True(t, result.MessagesInvalid)
		assert.ElementsMatch(t, []model.MessageId{txId, rxId}, result.InvalidMessages)
	})
	t.Run("two senders collide", func(t *testing.T) {
		clone := sd.Clone()
		index, err := clone.AddNode(createComNodeTest("sender2", true))
		assert.Nil(t, err)
		assert.Nil(t, clone.AddConnection(index, canBusIndexTest, 0))
		otherTx := messageIdTest(index, true)
		for _, id := range []model.MessageId{txId, otherTx} {
			valid, err := clone.CheckMessageIdBus(canBusIndexTest, uid, &id)
			assert.Nil(t, err)
			assert.False(t, valid)
		}
	})
	t.Run("local layout errors are reported", func(t *testing.T) {
		clone := sd.Clone()
		clone.Nodes[senderIndexTest].CanProtocols[0].ComMessages[0].TxMessages[0].CycleTimeMs = 0
		result, err := clone.CheckErrorBus(canBusIndexTest, CheckBusMessages)
		assert.Nil(t, err)
		assert.True(t, result.MessagesInvalid)
		assert.Contains(t, result.InvalidMessages, txId)
	})
}

func TestCheckMessageMatch(t *testing.T) {
	sd := createSystemTest(t)
	txId := messageIdTest(senderIndexTest, true)
	rxId := messageIdTest(receiverIndexTest, false)

	t.Run("reflexive", func(t *testing.T) {
		for _, id := range []model.MessageId{txId, rxId} {
			match, err := sd.CheckMessageMatch(id, id, true)
			assert.Nil(t, err)
			assert.True(t, match)
			match, err = sd.CheckMessageMatch(id, id, false)
			assert.Nil(t, err)
			assert.True(t, match)
		}
	})
	t.Run("reflexive with missing element", func(t *testing.T) {
		clone := sd.Clone()
		rx := &clone.Nodes[receiverIndexTest].CanProtocols[0].ComMessages[0].RxMessages[0]
		rx.Signals[0].ElementIndex = 5
		for _, ignoreDirection := range []bool{true, false} {
			match, err := clone.CheckMessageMatch(rxId, rxId, ignoreDirection)
			assert.Nil(t, err)
			assert.True(t, match)
		}
	})
	t.Run("reflexive with NaN values", func(t *testing.T) {
		clone := sd.Clone()
		element := &clone.Nodes[receiverIndexTest].DataPools[0].Lists[1].Elements[0]
		element.Factor = math.NaN()
		element.InitValue = math.NaN()
		for _, ignoreDirection := range []bool{true, false} {
			match, err := clone.CheckMessageMatch(rxId, rxId, ignoreDirection)
			assert.Nil(t, err)
			assert.True(t, match)
		}
		// Same layout on both sides still matches through the full comparison
		sender := &clone.Nodes[senderIndexTest].DataPools[0].Lists[0].Elements[0]
		sender.Factor = math.NaN()
		sender.InitValue = math.NaN()
		match, err := clone.CheckMessageMatch(txId, rxId, true)
		assert.Nil(t, err)
		assert.True(t, match)
	})
	t.Run("opposite directions", func(t *testing.T) {
		match, err := sd.CheckMessageMatch(txId, rxId, true)
		assert.Nil(t, err)
		assert.True(t, match)
		match, err = sd.CheckMessageMatch(txId, rxId, false)
		assert.Nil(t, err)
		assert.False(t, match)
	})
	t.Run("two tx messages always match when direction is used", func(t *testing.T) {
		clone := sd.Clone()
		other := createComNodeTest("sender2", true)
		other.CanProtocols[0].ComMessages[0].TxMessages[0].CanId = 0x200
		index, err := clone.AddNode(other)
		assert.Nil(t, err)
		otherTx := messageIdTest(index, true)

		match, err := clone.CheckMessageMatch(txId, otherTx, false)
		assert.Nil(t, err)
		assert.True(t, match)
		match, err = clone.CheckMessageMatch(txId, otherTx, true)
		assert.Nil(t, err)
		assert.False(t, match)
	})
	t.Run("cycle time only compared for cyclic messages", func(t *testing.T) {
		clone := sd.Clone()
		for _, nodeIndex := range []uint32{senderIndexTest, receiverIndexTest} {
			protocol := &clone.Nodes[nodeIndex].CanProtocols[0]
			messages := protocol.ComMessages[0].Messages(nodeIndex == senderIndexTest)
			messages[0].TxMethod = model.TxMethodOnChange
			messages[0].CycleTimeMs = 10 * (nodeIndex + 1)
		}
		match, err := clone.CheckMessageMatch(txId, rxId, true)
		assert.Nil(t, err)
		assert.True(t, match)
	})
}
