// Package ssp decodes the segmented service protocol used for
// configuration and flashing, ids 0x480 to 0x5C4.
// Odd ids are requests, even ids responses.
package ssp

import (
	"encoding/binary"
	"fmt"

	"github.com/samsamfire/gosysdef/pkg/can"
	"github.com/samsamfire/gosysdef/pkg/interpreter"
)

const (
	ProtocolName = "ssp"
	FirstId      = 0x480
	LastId       = 0x5C4
)

func init() {
	interpreter.Register(ProtocolName, New)
}

type Service uint8

const (
	ServiceData Service = iota
	ServiceGetConfig
	ServiceSetConfig
	ServiceHandshake
	ServiceDownload
	ServiceResponseReady
	ServiceError
)

var serviceMap = map[Service]string{
	ServiceData:          "DATA",
	ServiceGetConfig:     "GET_CONFIG",
	ServiceSetConfig:     "SET_CONFIG",
	ServiceHandshake:     "HANDSHAKE",
	ServiceDownload:      "DOWNLOAD",
	ServiceResponseReady: "RESPONSE_READY",
	ServiceError:         "ERROR",
}

func (s Service) String() string {
	if name, ok := serviceMap[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_SERVICE(%d)", uint8(s))
}

// Segment is the position of a frame in a segmented transfer
type Segment uint8

const (
	SegmentFirst Segment = iota
	SegmentConsecutive
	SegmentSingle
	SegmentLast
)

var segmentMap = map[Segment]string{
	SegmentFirst:       "(FF)",
	SegmentConsecutive: "(CF)",
	SegmentSingle:      "(SF)",
	SegmentLast:        "(LF)",
}

func (s Segment) String() string {
	return segmentMap[s]
}

// starts returns true for frames opening a transfer
func (s Segment) starts() bool {
	return s == SegmentFirst || s == SegmentSingle
}

// Bit 7 of byte 0 flags the last frame, byte 1 is the block number
func segmentOf(byte0 uint8, block uint8) Segment {
	last := byte0&0x80 != 0
	switch {
	case !last && block == 0:
		return SegmentFirst
	case !last:
		return SegmentConsecutive
	case block == 0:
		return SegmentSingle
	default:
		return SegmentLast
	}
}

const minDlc = 2

// minServiceDlc returns the minimum dlc of a service frame
func minServiceDlc(service Service, segment Segment, isRequest bool) uint8 {
	switch service {
	case ServiceData:
		if segment.starts() {
			return 4
		}
	case ServiceGetConfig:
		if isRequest {
			return 3
		}
		return 4
	case ServiceSetConfig, ServiceError:
		return 4
	case ServiceHandshake:
		return 3
	case ServiceDownload:
		if segment.starts() {
			return 8
		}
	}
	return minDlc
}

type Interpreter struct{}

func New() interpreter.Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) ProtocolName() string {
	return ProtocolName
}

// MessageToString decodes one frame, e.g.
// "REQ NODE:00 DATA (FF) BLOCK:0 SIZE:10 DATA:00 00 00 00"
func (i *Interpreter) MessageToString(frame can.Frame) string {
	if frame.IsExtended() || frame.ID < FirstId || frame.ID > LastId {
		return ""
	}
	isRequest := frame.ID&1 == 1
	direction := "RES"
	if isRequest {
		direction = "REQ"
	}
	node := fmt.Sprintf("NODE:%02d", (frame.ID-FirstId)>>1)
	payload := frame.Payload()
	if len(payload) < minDlc {
		return interpreter.Line(direction, node, interpreter.WrongDlc, interpreter.DataField(payload, 0))
	}

	service := Service(payload[0] & 0x0F)
	block := payload[1]
	segment := segmentOf(payload[0], block)
	header := interpreter.Line(direction, node, service.String(), segment.String(), fmt.Sprintf("BLOCK:%d", block))
	if len(payload) < int(minServiceDlc(service, segment, isRequest)) {
		return interpreter.Line(header, interpreter.WrongDlc, interpreter.DataField(payload, 2))
	}
	return interpreter.Line(header, decodeService(service, segment, isRequest, payload))
}

// decodeService formats the service specific part, payload length
// was checked against the service minimum
func decodeService(service Service, segment Segment, isRequest bool, payload []byte) string {
	switch service {
	case ServiceData:
		if segment.starts() {
			return interpreter.Line(
				fmt.Sprintf("SIZE:%d", binary.LittleEndian.Uint16(payload[2:4])),
				interpreter.DataField(payload, 4),
			)
		}
		return interpreter.DataField(payload, 2)
	case ServiceGetConfig:
		if isRequest {
			return fmt.Sprintf("ID:%d", payload[2])
		}
		return interpreter.Line(fmt.Sprintf("ID:%d", payload[2]), "VALUE:"+interpreter.HexBytes(payload[3:]))
	case ServiceSetConfig:
		return interpreter.Line(fmt.Sprintf("ID:%d", payload[2]), "VALUE:"+interpreter.HexBytes(payload[3:]))
	case ServiceHandshake:
		return interpreter.Line(fmt.Sprintf("CODE:0x%02X", payload[2]), interpreter.DataField(payload, 3))
	case ServiceDownload:
		if segment.starts() {
			return interpreter.Line(
				fmt.Sprintf("ADDR:0x%08X", binary.LittleEndian.Uint32(payload[2:6])),
				fmt.Sprintf("SIZE:%d", binary.LittleEndian.Uint16(payload[6:8])),
			)
		}
		return interpreter.DataField(payload, 2)
	case ServiceResponseReady:
		return interpreter.DataField(payload, 2)
	case ServiceError:
		return interpreter.Line(
			fmt.Sprintf("CODE:0x%04X", binary.LittleEndian.Uint16(payload[2:4])),
			interpreter.DataField(payload, 4),
		)
	default:
		return interpreter.DataField(payload, 2)
	}
}
