package virtual

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/samsamfire/gosysdef/pkg/can"
	log "github.com/sirupsen/logrus"
)

// Virtual CAN bus implementation with TCP primarily used for testing
// and replaying traces. This needs a broker server to send CAN frames to
// all connected clients.
// More information : https://github.com/windelbouwman/virtualcan

func init() {
	can.RegisterInterface("virtual", NewVirtualCanBus)
	can.RegisterInterface("virtualcan", NewVirtualCanBus)
}

// Wire size of a frame : id, flags, dlc, data
const wireFrameSize = 4 + 1 + 1 + 8

var (
	ErrNotConnected   = errors.New("no active connection")
	ErrTruncatedFrame = errors.New("truncated frame")
)

type Bus struct {
	logger       *log.Entry
	mu           sync.Mutex
	channel      string
	conn         net.Conn
	receiveOwn   bool
	framehandler can.FrameListener
	stop         chan struct{}
	wg           sync.WaitGroup
	isRunning    bool
}

func NewVirtualCanBus(channel string) (can.Bus, error) {
	return &Bus{
		channel: channel,
		logger:  log.WithField("component", "virtualcan").WithField("channel", channel),
	}, nil
}

// serializeFrame prefixes the big endian frame with its length
func serializeFrame(frame can.Frame) []byte {
	buffer := make([]byte, 4+wireFrameSize)
	binary.BigEndian.PutUint32(buffer, wireFrameSize)
	binary.BigEndian.PutUint32(buffer[4:], frame.ID)
	buffer[8] = frame.Flags
	buffer[9] = frame.DLC
	copy(buffer[10:], frame.Data[:])
	return buffer
}

func deserializeFrame(buffer []byte) (can.Frame, error) {
	if len(buffer) < wireFrameSize {
		return can.Frame{}, fmt.Errorf("frame too short : %v bytes", len(buffer))
	}
	frame := can.Frame{
		ID:    binary.BigEndian.Uint32(buffer),
		Flags: buffer[4],
		DLC:   buffer[5],
	}
	copy(frame.Data[:], buffer[6:wireFrameSize])
	return frame, nil
}

// "Connect" to server e.g. localhost:18000
func (b *Bus) Connect(...any) error {
	conn, err := net.Dial("tcp", b.channel)
	if err != nil {
		return err
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			conn.Close()
			return err
		}
	}
	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()
	return nil
}

// "Disconnect" from server
func (b *Bus) Disconnect() error {
	b.mu.Lock()
	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
	b.mu.Unlock()
	b.wg.Wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		err := b.conn.Close()
		b.conn = nil
		return err
	}
	return nil
}

// "Send" implementation of Bus interface
func (b *Bus) Send(frame can.Frame) error {
	b.mu.Lock()
	conn := b.conn
	handler := b.framehandler
	receiveOwn := b.receiveOwn
	b.mu.Unlock()
	// Local loopback
	if receiveOwn && handler != nil {
		handler.Handle(frame)
	}
	if conn == nil {
		if receiveOwn {
			return nil
		}
		return ErrNotConnected
	}
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Millisecond))
	_, err := conn.Write(serializeFrame(frame))
	return err
}

// "Subscribe" implementation of Bus interface
func (b *Bus) Subscribe(framehandler can.FrameListener) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.framehandler = framehandler
	if b.isRunning || b.conn == nil {
		return nil
	}
	// Start go routine that receives incoming traffic and passes it to frameHandler
	b.wg.Add(1)
	b.isRunning = true
	b.stop = make(chan struct{})
	go b.handleReception(b.conn, b.stop)
	return nil
}

// recv waits for one frame, a timeout error is returned if nothing
// is received within timeout. Once the first byte of a frame is read the
// rest must follow, otherwise the stream is out of sync and
// ErrTruncatedFrame is returned.
func recv(conn net.Conn, timeout time.Duration) (can.Frame, error) {
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	header := make([]byte, 4)
	n, err := io.ReadFull(conn, header)
	if err != nil {
		if n == 0 {
			return can.Frame{}, err
		}
		return can.Frame{}, fmt.Errorf("%w : header %v/4 bytes : %v", ErrTruncatedFrame, n, err)
	}
	length := binary.BigEndian.Uint32(header)
	if length > 64 {
		return can.Frame{}, fmt.Errorf("invalid frame length %v", length)
	}
	payload := make([]byte, length)
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	if n, err := io.ReadFull(conn, payload); err != nil {
		return can.Frame{}, fmt.Errorf("%w : payload %v/%v bytes : %v", ErrTruncatedFrame, n, length, err)
	}
	return deserializeFrame(payload)
}

// Handle incoming traffic
func (b *Bus) handleReception(conn net.Conn, stop chan struct{}) {
	defer func() {
		b.mu.Lock()
		b.isRunning = false
		b.mu.Unlock()
		b.wg.Done()
	}()
	for {
		select {
		case <-stop:
			return
		default:
			frame, err := recv(conn, 200*time.Millisecond)
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				// No message received, this is OK
				continue
			}
			if err != nil {
				b.logger.Errorf("[VIRTUAL] listening routine has closed : %v", err)
				return
			}
			frame.Timestamp = can.Timestamp()
			b.mu.Lock()
			handler := b.framehandler
			b.mu.Unlock()
			if handler != nil {
				handler.Handle(frame)
			}
		}
	}
}

func (b *Bus) SetReceiveOwn(receiveOwn bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receiveOwn = receiveOwn
}
