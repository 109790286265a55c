package can

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Flags folded in the frame ID, same layout as SocketCAN
const (
	CanEffFlag uint32 = 0x80000000
	CanRtrFlag uint32 = 0x40000000
	CanErrFlag uint32 = 0x20000000
	CanSffMask uint32 = 0x000007FF
	CanEffMask uint32 = 0x1FFFFFFF
)

var ErrUnsupportedInterface = errors.New("unsupported CAN interface")

// A CAN frame
type Frame struct {
	ID    uint32
	Flags uint8
	DLC   uint8
	Data  [8]byte
	// Timestamp is the reception time in microseconds, zero if unknown
	Timestamp uint64
}

func NewFrame(id uint32, flags uint8, dlc uint8) Frame {
	return Frame{ID: id, Flags: flags, DLC: dlc}
}

// IsExtended returns true for 29 bit identifiers
func (f *Frame) IsExtended() bool {
	return f.ID&CanEffFlag != 0
}

func (f *Frame) IsRemote() bool {
	return f.ID&CanRtrFlag != 0
}

// Identifier returns the 11 or 29 bit identifier without flags
func (f *Frame) Identifier() uint32 {
	if f.IsExtended() {
		return f.ID & CanEffMask
	}
	return f.ID & CanSffMask
}

// Payload returns the data bytes actually sent, at most 8
func (f *Frame) Payload() []byte {
	dlc := f.DLC
	if dlc > 8 {
		dlc = 8
	}
	return f.Data[:dlc]
}

// Timestamp returns the current time in microseconds, for stamping
// received frames
func Timestamp() uint64 {
	return uint64(time.Now().UnixMicro())
}

// Interface for handling a received CAN frame
type FrameListener interface {
	Handle(frame Frame)
}

// A CAN Bus interface
type Bus interface {
	Connect(...any) error                   // Connect to the CAN bus
	Disconnect() error                      // Disconnect from CAN bus
	Send(frame Frame) error                 // Send a frame on the bus
	Subscribe(callback FrameListener) error // Subscribe to all received CAN frames
}

// Register a new CAN bus interface type
// This should be called inside an init() function of plugin
func RegisterInterface(interfaceType string, newInterface NewInterfaceFunc) {
	interfaceRegistry[interfaceType] = newInterface
}

type NewInterfaceFunc func(channel string) (Bus, error)

var interfaceRegistry = make(map[string]NewInterfaceFunc)

// Interfaces returns the registered interface types
func Interfaces() []string {
	names := make([]string, 0, len(interfaceRegistry))
	for name := range interfaceRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create a new CAN bus with given interface
// Interfaces are registered by importing their package, e.g. socketcan
func NewBus(canInterface string, channel string) (Bus, error) {
	createInterface, ok := interfaceRegistry[canInterface]
	if !ok {
		return nil, fmt.Errorf("%w : %v", ErrUnsupportedInterface, canInterface)
	}
	return createInterface(channel)
}
