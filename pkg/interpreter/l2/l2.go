// Package l2 formats any CAN frame as raw identifier and data,
// it is the fallback of interpreter chains
package l2

import (
	"fmt"

	"github.com/samsamfire/gosysdef/pkg/can"
	"github.com/samsamfire/gosysdef/pkg/interpreter"
)

const ProtocolName = "l2"

func init() {
	interpreter.Register(ProtocolName, New)
}

type Interpreter struct{}

func New() interpreter.Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) ProtocolName() string {
	return ProtocolName
}

// MessageToString never returns an empty string, e.g.
// "ID:0x123 DLC:2 DATA:01 02" or "ID:0x18FF1234x DLC:0 RTR"
func (i *Interpreter) MessageToString(frame can.Frame) string {
	id := fmt.Sprintf("ID:0x%03X", frame.Identifier())
	if frame.IsExtended() {
		id = fmt.Sprintf("ID:0x%08Xx", frame.Identifier())
	}
	dlc := fmt.Sprintf("DLC:%d", frame.DLC)
	if frame.IsRemote() {
		return interpreter.Line(id, dlc, "RTR")
	}
	return interpreter.Line(id, dlc, interpreter.DataField(frame.Payload(), 0))
}
