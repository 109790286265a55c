package socketcan

import (
	"testing"

	sockcan "github.com/brutella/can"
	"github.com/samsamfire/gosysdef/pkg/can"
	"github.com/stretchr/testify/assert"
)

type frameListener struct {
	frames []can.Frame
}

func (f *frameListener) Handle(frame can.Frame) {
	f.frames = append(f.frames, frame)
}

func TestFrameConversion(t *testing.T) {
	frame := can.Frame{ID: can.CanEffFlag | 0x1234, DLC: 4, Data: [8]byte{1, 2, 3, 4}}
	converted := toBrutella(frame)
	assert.EqualValues(t, 4, converted.Length)
	back := fromBrutella(converted, 42)
	frame.Timestamp = 42
	assert.Equal(t, frame, back)
	assert.True(t, back.IsExtended())
}

func TestHandleForwardsFrames(t *testing.T) {
	listener := &frameListener{}
	bus := &SocketcanBus{rxCallback: listener}
	bus.Handle(sockcan.Frame{ID: 0x701, Length: 1})
	assert.Len(t, listener.frames, 1)
	assert.EqualValues(t, 0x701, listener.frames[0].ID)
	assert.NotZero(t, listener.frames[0].Timestamp)
}
