// Package interpreter turns raw CAN frames into one line of text.
//
// Each protocol lives in its own sub package and registers itself in
// an init function, import the packages of the protocols you need.
// Interpreters are stateless and safe for concurrent use.
package interpreter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samsamfire/gosysdef/pkg/can"
)

// WrongDlc tags frames that are too short for their service
const WrongDlc = "WRONG DLC"

var ErrUnknownProtocol = errors.New("unknown protocol")

// Interpreter decodes the frames of one protocol. MessageToString
// returns an empty string for frames that are not part of the protocol.
type Interpreter interface {
	MessageToString(frame can.Frame) string
	ProtocolName() string
}

type NewInterpreterFunc func() Interpreter

var (
	registryMu sync.RWMutex
	registry   = make(map[string]NewInterpreterFunc)
)

// Register a new protocol interpreter
// This should be called inside an init() function of the protocol package
func Register(name string, newInterpreter NewInterpreterFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = newInterpreter
}

// New creates the interpreter registered under name
func New(name string) (Interpreter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	newInterpreter, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w : %v", ErrUnknownProtocol, name)
	}
	return newInterpreter(), nil
}

// Names returns the registered protocol names
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HexBytes formats data as space separated hex bytes, e.g. "0A 00 FF"
func HexBytes(data []byte) string {
	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// Line joins non empty fields with a single space
func Line(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if field != "" {
			parts = append(parts, field)
		}
	}
	return strings.Join(parts, " ")
}

// DataField returns "DATA:.." for the payload bytes from offset, or an
// empty field if there are none
func DataField(payload []byte, offset int) string {
	if offset >= len(payload) {
		return ""
	}
	return "DATA:" + HexBytes(payload[offset:])
}
