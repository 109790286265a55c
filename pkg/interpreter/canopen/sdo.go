package canopen

import (
	"encoding/binary"
	"fmt"

	"github.com/samsamfire/gosysdef/pkg/interpreter"
)

// Client command specifiers, bits 5 to 7 of byte 0
var requestSpecifiers = map[uint8]string{
	0: "DOWNLOAD_SEGMENT",
	1: "INITIATE_DOWNLOAD",
	2: "INITIATE_UPLOAD",
	3: "UPLOAD_SEGMENT",
	4: "ABORT",
	5: "BLOCK_UPLOAD",
	6: "BLOCK_DOWNLOAD",
}

// Server command specifiers
var responseSpecifiers = map[uint8]string{
	0: "UPLOAD_SEGMENT",
	1: "DOWNLOAD_SEGMENT",
	2: "INITIATE_UPLOAD",
	3: "INITIATE_DOWNLOAD",
	4: "ABORT",
	5: "BLOCK_DOWNLOAD",
	6: "BLOCK_UPLOAD",
}

const specifierAbort uint8 = 4

// multiplexer formats index and sub index of initiate and abort frames
func multiplexer(payload []byte) string {
	return fmt.Sprintf("IDX:0x%04X SUB:%d", binary.LittleEndian.Uint16(payload[1:3]), payload[3])
}

// expeditedData returns the data bytes of an expedited initiate frame
func expeditedData(payload []byte) string {
	if payload[0]&0x02 == 0 {
		return ""
	}
	size := 4
	if payload[0]&0x01 != 0 {
		size = 4 - int(payload[0]>>2&0x03)
	}
	return "DATA:" + interpreter.HexBytes(payload[4:4+size])
}

func decodeSdo(payload []byte, isRequest bool) string {
	if len(payload) < 8 {
		return interpreter.Line(interpreter.WrongDlc, interpreter.DataField(payload, 0))
	}
	specifier := payload[0] >> 5
	specifiers := responseSpecifiers
	if isRequest {
		specifiers = requestSpecifiers
	}
	name, ok := specifiers[specifier]
	if !ok {
		return interpreter.Line(fmt.Sprintf("UNKNOWN(%d)", specifier), interpreter.DataField(payload, 0))
	}
	switch {
	case specifier == specifierAbort:
		code := abortCode(binary.LittleEndian.Uint32(payload[4:8]))
		return interpreter.Line(name, multiplexer(payload), fmt.Sprintf("CODE:0x%08X", uint32(code)), abortCodeDescription[code])
	case isRequest && specifier == 1, !isRequest && specifier == 2:
		// Initiate frames carrying data
		return interpreter.Line(name, multiplexer(payload), expeditedData(payload))
	case isRequest && specifier == 2, !isRequest && specifier == 3:
		return interpreter.Line(name, multiplexer(payload))
	case isRequest && specifier == 0, !isRequest && specifier == 0:
		// Segments carry up to 7 bytes, unused count in bits 1 to 3
		used := 7 - int(payload[0]>>1&0x07)
		return interpreter.Line(name, interpreter.DataField(payload[:1+used], 1))
	default:
		return interpreter.Line(name, interpreter.DataField(payload, 1))
	}
}
