package socketcan

import (
	sockcan "github.com/brutella/can"
	"github.com/samsamfire/gosysdef/pkg/can"
	log "github.com/sirupsen/logrus"
)

// Basic wrapper for socketcan it uses the implementation
// that can be found here : https://github.com/brutella/can

func init() {
	can.RegisterInterface("socketcan", NewSocketCanBus)
}

type SocketcanBus struct {
	bus        *sockcan.Bus
	rxCallback can.FrameListener
	logger     *log.Entry
}

// "Connect" implementation of Bus interface
func (socketcan *SocketcanBus) Connect(...any) error {
	go func() {
		err := socketcan.bus.ConnectAndPublish()
		if err != nil {
			socketcan.logger.Warnf("[SOCKETCAN] reception stopped : %v", err)
		}
	}()
	return nil
}

// "Disconnect" implementation of Bus interface
func (socketcan *SocketcanBus) Disconnect() error {
	return socketcan.bus.Disconnect()
}

// "Send" implementation of Bus interface
func (socketcan *SocketcanBus) Send(frame can.Frame) error {
	return socketcan.bus.Publish(toBrutella(frame))
}

// "Subscribe" implementation of Bus interface
func (socketcan *SocketcanBus) Subscribe(rxCallback can.FrameListener) error {
	socketcan.rxCallback = rxCallback
	// brutella/can defines a "Handle" interface for handling received CAN frames
	socketcan.bus.Subscribe(socketcan)
	return nil
}

// brutella/can specific "Handle" implementation
func (socketcan *SocketcanBus) Handle(frame sockcan.Frame) {
	if socketcan.rxCallback == nil {
		return
	}
	socketcan.rxCallback.Handle(fromBrutella(frame, can.Timestamp()))
}

func toBrutella(frame can.Frame) sockcan.Frame {
	return sockcan.Frame{ID: frame.ID, Length: frame.DLC, Flags: frame.Flags, Data: frame.Data}
}

// fromBrutella keeps the EFF/RTR flags, brutella passes the raw SocketCAN id
func fromBrutella(frame sockcan.Frame, timestamp uint64) can.Frame {
	return can.Frame{ID: frame.ID, DLC: frame.Length, Flags: frame.Flags, Data: frame.Data, Timestamp: timestamp}
}

func NewSocketCanBus(name string) (can.Bus, error) {
	bus, err := sockcan.NewBusForInterfaceWithName(name)
	if err != nil {
		return nil, err
	}
	return &SocketcanBus{bus: bus, logger: log.WithField("component", "socketcan").WithField("channel", name)}, nil
}
