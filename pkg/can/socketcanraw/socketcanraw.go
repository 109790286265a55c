package socketcanraw

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"unsafe"

	"github.com/samsamfire/gosysdef/pkg/can"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// SocketCAN implementation working directly on a raw socket,
// unlike socketcan it supports kernel filters

const (
	SocketCANFrameSize  = 16
	DefaultRcvTimeoutUs = 100000
)

func init() {
	can.RegisterInterface("socketcanraw", NewSocketCanBus)
}

// rawFrame is the kernel struct can_frame
type rawFrame struct {
	id    uint32
	dlc   uint8
	flags uint8
	res0  uint8
	res1  uint8
	data  [8]uint8
}

type SocketcanBus struct {
	f          *os.File
	fd         int
	mu         sync.Mutex
	rxCallback can.FrameListener
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *log.Entry
}

// Create a new SocketCAN bus. This expects the CAN channel to be up.
// e.g. running "ip a" should show can0 or something similar.
func NewSocketCanBus(channel string) (can.Bus, error) {
	iface, err := net.InterfaceByName(channel)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("failed to create CAN socket : %w", err)
	}
	tv := unix.NsecToTimeval(DefaultRcvTimeoutUs * 1000)
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to set read timeout : %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: iface.Index}); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &SocketcanBus{fd: fd, logger: log.WithField("component", "socketcanraw").WithField("channel", channel)}, nil
}

// "Connect" implementation of Bus interface
func (s *SocketcanBus) Connect(...any) error {
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	s.f = os.NewFile(uintptr(s.fd), fmt.Sprintf("fd %d", s.fd))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.processIncoming(ctx)
	}()
	return nil
}

// "Disconnect" implementation of Bus interface
func (s *SocketcanBus) Disconnect() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	s.wg.Wait()
	s.cancel = nil
	return s.f.Close()
}

// "Send" implementation of Bus interface
func (s *SocketcanBus) Send(frame can.Frame) error {
	raw := encodeFrame(frame)
	n, err := s.f.Write(raw[:])
	if err != nil {
		return err
	}
	if n != SocketCANFrameSize {
		return fmt.Errorf("short write : %v bytes", n)
	}
	return nil
}

func encodeFrame(frame can.Frame) [SocketCANFrameSize]byte {
	raw := rawFrame{id: frame.ID, dlc: frame.DLC, flags: frame.Flags, data: frame.Data}
	return *(*[SocketCANFrameSize]byte)(unsafe.Pointer(&raw))
}

func decodeFrame(buffer []byte, timestamp uint64) can.Frame {
	raw := (*rawFrame)(unsafe.Pointer(&buffer[0]))
	return can.Frame{ID: raw.id, DLC: raw.dlc, Flags: raw.flags, Data: raw.data, Timestamp: timestamp}
}

// process incoming frames. This is meant to be run inside of a goroutine
func (s *SocketcanBus) processIncoming(ctx context.Context) {
	buffer := make([]byte, SocketCANFrameSize)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("[SOCKETCAN] exiting reception, closed")
			return
		default:
			n, err := s.f.Read(buffer)
			if os.IsTimeout(err) {
				continue
			}
			if n != SocketCANFrameSize || err != nil {
				s.logger.Warnf("[SOCKETCAN] exiting reception : %v", err)
				return
			}
			frame := decodeFrame(buffer, can.Timestamp())
			s.mu.Lock()
			callback := s.rxCallback
			s.mu.Unlock()
			if callback != nil {
				callback.Handle(frame)
			}
		}
	}
}

// "Subscribe" implementation of Bus interface
func (s *SocketcanBus) Subscribe(rxCallback can.FrameListener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rxCallback = rxCallback
	return nil
}

// Enable own reception on the bus. CAN be useful when testing for example
func (s *SocketcanBus) SetReceiveOwn(enabled bool) error {
	enabledInt := 0
	if enabled {
		enabledInt = 1
	}
	s.logger.Debugf("[SOCKETCAN] setting CAN_RAW_RECV_OWN_MSGS to %v", enabled)
	return unix.SetsockoptInt(s.fd, unix.SOL_CAN_RAW, unix.CAN_RAW_RECV_OWN_MSGS, enabledInt)
}

// SetFilters only lets frames matching one of the id ranges through
func (s *SocketcanBus) SetFilters(filters []unix.CanFilter) error {
	s.logger.Debugf("[SOCKETCAN] setting CAN_RAW_FILTER %v", filters)
	return unix.SetsockoptCanRawFilter(s.fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER, filters)
}

// RangeFilter builds a filter accepting standard ids in [first, last],
// the range is widened to the enclosing power of two aligned block
func RangeFilter(first uint32, last uint32) unix.CanFilter {
	mask := can.CanSffMask
	for (first & mask) != (last & mask) {
		mask = (mask << 1) & can.CanSffMask
	}
	return unix.CanFilter{Id: first & mask, Mask: mask | can.CanEffFlag | can.CanRtrFlag}
}
