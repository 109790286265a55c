// Package canopen decodes CANopen predefined connection set frames
package canopen

import (
	"encoding/binary"
	"fmt"

	"github.com/samsamfire/gosysdef/pkg/can"
	"github.com/samsamfire/gosysdef/pkg/interpreter"
)

const ProtocolName = "canopen"

func init() {
	interpreter.Register(ProtocolName, New)
}

// Function codes, bits 7 to 10 of the id
const (
	functionNmt       uint32 = 0x0
	functionSyncEmcy  uint32 = 0x1
	functionTpdo1     uint32 = 0x3
	functionRpdo4     uint32 = 0xA
	functionSdoServer uint32 = 0xB
	functionSdoClient uint32 = 0xC
	functionHeartbeat uint32 = 0xE
)

type Interpreter struct{}

func New() interpreter.Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) ProtocolName() string {
	return ProtocolName
}

func nodeField(nodeId uint32) string {
	return fmt.Sprintf("NODE:%d", nodeId)
}

// MessageToString decodes frames of the predefined connection set,
// LSS and manufacturer specific ids are not decoded
func (i *Interpreter) MessageToString(frame can.Frame) string {
	if frame.IsExtended() {
		return ""
	}
	id := frame.Identifier()
	function := id >> 7
	nodeId := id & 0x7F
	payload := frame.Payload()

	switch {
	case id == 0x000:
		return decodeNmt(payload)
	case id == 0x080:
		if len(payload) > 0 {
			return fmt.Sprintf("SYNC COUNTER:%d", payload[0])
		}
		return "SYNC"
	case function == functionSyncEmcy:
		return decodeEmcy(nodeId, payload)
	case id == 0x100:
		return decodeTime(payload)
	case function >= functionTpdo1 && function <= functionRpdo4 && nodeId != 0:
		return interpreter.Line(pdoName(function), nodeField(nodeId), interpreter.DataField(payload, 0))
	case function == functionSdoServer && nodeId != 0:
		return interpreter.Line("SDO RES", nodeField(nodeId), decodeSdo(payload, false))
	case function == functionSdoClient && nodeId != 0:
		return interpreter.Line("SDO REQ", nodeField(nodeId), decodeSdo(payload, true))
	case function == functionHeartbeat && nodeId != 0:
		return decodeHeartbeat(nodeId, payload)
	}
	return ""
}

// pdoName returns e.g. TPDO1 for 0x180, RPDO1 for 0x200
func pdoName(function uint32) string {
	number := (function-functionTpdo1)/2 + 1
	if (function-functionTpdo1)%2 == 0 {
		return fmt.Sprintf("TPDO%d", number)
	}
	return fmt.Sprintf("RPDO%d", number)
}

func decodeNmt(payload []byte) string {
	if len(payload) < 2 {
		return interpreter.Line("NMT", interpreter.WrongDlc, interpreter.DataField(payload, 0))
	}
	description, ok := commandDescription[command(payload[0])]
	if !ok {
		description = fmt.Sprintf("UNKNOWN(0x%02X)", payload[0])
	}
	target := "NODE:ALL"
	if payload[1] != 0 {
		target = nodeField(uint32(payload[1]))
	}
	return interpreter.Line("NMT", description, target)
}

func decodeEmcy(nodeId uint32, payload []byte) string {
	if len(payload) < 8 {
		return interpreter.Line("EMCY", nodeField(nodeId), interpreter.WrongDlc, interpreter.DataField(payload, 0))
	}
	return interpreter.Line(
		"EMCY",
		nodeField(nodeId),
		fmt.Sprintf("CODE:0x%04X", binary.LittleEndian.Uint16(payload[0:2])),
		fmt.Sprintf("REG:0x%02X", payload[2]),
		interpreter.DataField(payload, 3),
	)
}

// decodeTime decodes TIME_OF_DAY, milliseconds after midnight on 28 bits
// followed by days since 1984-01-01
func decodeTime(payload []byte) string {
	if len(payload) < 6 {
		return interpreter.Line("TIME", interpreter.WrongDlc, interpreter.DataField(payload, 0))
	}
	ms := binary.LittleEndian.Uint32(payload[0:4]) & 0x0FFFFFFF
	days := binary.LittleEndian.Uint16(payload[4:6])
	return fmt.Sprintf("TIME MS:%d DAYS:%d", ms, days)
}

func decodeHeartbeat(nodeId uint32, payload []byte) string {
	if len(payload) < 1 {
		return interpreter.Line("HEARTBEAT", nodeField(nodeId), interpreter.WrongDlc)
	}
	if payload[0] == stateInitializing {
		return interpreter.Line("BOOTUP", nodeField(nodeId))
	}
	state, ok := stateMap[payload[0]&0x7F]
	if !ok {
		state = fmt.Sprintf("UNKNOWN(0x%02X)", payload[0])
	}
	return interpreter.Line("HEARTBEAT", nodeField(nodeId), state)
}
