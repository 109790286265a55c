// Package kefex decodes the KEFEX variable access protocol, ids 0x600 to 0x6FF.
package kefex

import (
	"encoding/binary"
	"fmt"

	"github.com/samsamfire/gosysdef/pkg/can"
	"github.com/samsamfire/gosysdef/pkg/interpreter"
)

const (
	ProtocolName = "kefex"
	FirstId      = 0x600
	LastId       = 0x6FF
)

func init() {
	interpreter.Register(ProtocolName, New)
}

type Service uint8

const (
	ServiceSrr           Service = 0x10
	ServiceEcrr          Service = 0x11
	ServiceEcrrHs        Service = 0x12
	ServiceTcrr          Service = 0x13
	ServiceTcrrHs        Service = 0x14
	ServiceAbort         Service = 0x15
	ServiceWrite         Service = 0x20
	ServiceIWrite        Service = 0x21
	ServiceWriteHs       Service = 0x22
	ServiceReadBlock     Service = 0x30
	ServiceWriteBlock    Service = 0x31
	ServiceResponse      Service = 0x40
	ServiceEventResponse Service = 0x41
	ServiceTimeResponse  Service = 0x42
	ServiceWriteAck      Service = 0x43
	ServiceError         Service = 0x50
	ServiceLife          Service = 0xFA
	ServiceLogon         Service = 0xFB
	ServiceLogoff        Service = 0xFC
)

var serviceMap = map[Service]string{
	ServiceSrr:           "SRR",
	ServiceEcrr:          "ECRR",
	ServiceEcrrHs:        "ECRR_HS",
	ServiceTcrr:          "TCRR",
	ServiceTcrrHs:        "TCRR_HS",
	ServiceAbort:         "ABORT",
	ServiceWrite:         "WRITE",
	ServiceIWrite:        "IWRITE",
	ServiceWriteHs:       "WRITE_HS",
	ServiceReadBlock:     "READ_BLOCK",
	ServiceWriteBlock:    "WRITE_BLOCK",
	ServiceResponse:      "RESPONSE",
	ServiceEventResponse: "EVENT_RESPONSE",
	ServiceTimeResponse:  "TIME_RESPONSE",
	ServiceWriteAck:      "WRITE_ACK",
	ServiceError:         "ERROR",
	ServiceLife:          "LIFE",
	ServiceLogon:         "LOGON",
	ServiceLogoff:        "LOGOFF",
}

func (s Service) String() string {
	if name, ok := serviceMap[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(s))
}

// Sub operations of block transfers, byte 6
var blockOperationMap = map[uint8]string{
	0: "REQ",
	1: "ACK",
	2: "CTRL",
}

const minDlc = 4

func minServiceDlc(service Service) int {
	switch service {
	case ServiceLife, ServiceLogon, ServiceLogoff:
		return 8
	case ServiceEcrr, ServiceEcrrHs, ServiceReadBlock, ServiceWriteBlock:
		return 7
	case ServiceTcrr, ServiceTcrrHs:
		return 6
	}
	return minDlc
}

// Hysteresis decodes the percentage encoding of event driven requests.
// 0 to 99 are tenths of a percent, 110 to 200 whole percents from 10 to 100.
func Hysteresis(value uint8) string {
	switch {
	case value < 100:
		return fmt.Sprintf("%d.%d%%", value/10, value%10)
	case value >= 110 && value <= 200:
		return fmt.Sprintf("%d%%", value-100)
	default:
		return "invalid"
	}
}

// address formats a segment/node byte, high nibble is the segment
func address(value uint8) string {
	return fmt.Sprintf("%02d/%02d", value>>4, value&0x0F)
}

type Interpreter struct{}

func New() interpreter.Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) ProtocolName() string {
	return ProtocolName
}

// MessageToString decodes one frame, e.g.
// "SND:01/02 RCV:03/04 IDX:1 REQ LIFE TIME:1000ms"
func (i *Interpreter) MessageToString(frame can.Frame) string {
	if frame.IsExtended() || frame.ID < FirstId || frame.ID > LastId {
		return ""
	}
	sender := "SND:" + address(uint8(frame.ID&0xFF))
	payload := frame.Payload()
	if len(payload) < minDlc {
		return interpreter.Line(sender, interpreter.WrongDlc, interpreter.DataField(payload, 0))
	}
	receiver := "RCV:" + address(payload[0])
	index := fmt.Sprintf("IDX:%d", uint16(payload[1])|uint16(payload[2]&0x7F)<<8)
	direction := "REQ"
	if payload[2]&0x80 != 0 {
		direction = "RES"
	}
	service := Service(payload[3])
	header := interpreter.Line(sender, receiver, index, direction, service.String())
	if len(payload) < minServiceDlc(service) {
		return interpreter.Line(header, interpreter.WrongDlc, interpreter.DataField(payload, 4))
	}
	return interpreter.Line(header, decodeService(service, payload))
}

func decodeService(service Service, payload []byte) string {
	switch service {
	case ServiceEcrr, ServiceEcrrHs:
		return interpreter.Line(
			fmt.Sprintf("INTERVAL:%dms", binary.LittleEndian.Uint16(payload[4:6])),
			"HYST:"+Hysteresis(payload[6]),
		)
	case ServiceTcrr, ServiceTcrrHs:
		return fmt.Sprintf("INTERVAL:%dms", binary.LittleEndian.Uint16(payload[4:6]))
	case ServiceReadBlock, ServiceWriteBlock:
		operation, ok := blockOperationMap[payload[6]]
		if !ok {
			operation = fmt.Sprintf("OP(%d)", payload[6])
		}
		return interpreter.Line(
			operation,
			fmt.Sprintf("BLOCK:%d", binary.LittleEndian.Uint16(payload[4:6])),
			interpreter.DataField(payload, 7),
		)
	case ServiceLife, ServiceLogon, ServiceLogoff:
		return fmt.Sprintf("TIME:%dms", binary.LittleEndian.Uint32(payload[4:8]))
	case ServiceError:
		if len(payload) > 4 {
			return interpreter.Line(fmt.Sprintf("CODE:0x%02X", payload[4]), interpreter.DataField(payload, 5))
		}
		return ""
	default:
		return interpreter.DataField(payload, 4)
	}
}
