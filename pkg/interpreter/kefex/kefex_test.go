package kefex

import (
	"testing"

	"github.com/samsamfire/gosysdef/pkg/can"
	"github.com/samsamfire/gosysdef/pkg/interpreter"
	"github.com/stretchr/testify/assert"
)

func frameTest(id uint32, data ...byte) can.Frame {
	frame := can.Frame{ID: id, DLC: uint8(len(data))}
	copy(frame.Data[:], data)
	return frame
}

func TestLifeMessage(t *testing.T) {
	// 1000 little endian in bytes 4 to 7
	text := New().MessageToString(frameTest(0x612, 0x34, 0x00, 0x00, 0xFA, 0xE8, 0x03, 0x00, 0x00))
	assert.Equal(t, "SND:01/02 RCV:03/04 IDX:0 REQ LIFE TIME:1000ms", text)
	assert.Contains(t, text, "01/02")
	assert.Contains(t, text, "LIFE")
	assert.Contains(t, text, "1000ms")
}

func TestHysteresis(t *testing.T) {
	assert.Equal(t, "0.0%", Hysteresis(0))
	assert.Equal(t, "0.5%", Hysteresis(5))
	assert.Equal(t, "9.9%", Hysteresis(99))
	for value := uint8(100); value <= 109; value++ {
		assert.Equal(t, "invalid", Hysteresis(value))
	}
	assert.Equal(t, "10%", Hysteresis(110))
	assert.Equal(t, "55%", Hysteresis(155))
	assert.Equal(t, "100%", Hysteresis(200))
	assert.Equal(t, "invalid", Hysteresis(201))
	assert.Equal(t, "invalid", Hysteresis(255))
}

func TestRange(t *testing.T) {
	kefex := New()
	assert.Equal(t, "", kefex.MessageToString(frameTest(0x5FF, 0, 0, 0, 0x10)))
	assert.Equal(t, "", kefex.MessageToString(frameTest(0x700, 0, 0, 0, 0x10)))
	assert.Equal(t, "", kefex.MessageToString(frameTest(can.CanEffFlag|0x612, 0, 0, 0, 0x10)))
	assert.Equal(t, "SND:15/15 WRONG DLC DATA:01", kefex.MessageToString(frameTest(0x6FF, 0x01)))
}

func TestServices(t *testing.T) {
	kefex := New()
	tests := []struct {
		name     string
		frame    can.Frame
		expected string
	}{
		{"index and response flag", frameTest(0x601, 0x02, 0x34, 0x92, 0x40, 0x01, 0x02),
			"SND:00/01 RCV:00/02 IDX:4660 RES RESPONSE DATA:01 02"},
		{"single request", frameTest(0x601, 0x02, 0x05, 0x00, 0x10), "SND:00/01 RCV:00/02 IDX:5 REQ SRR"},
		{"event request", frameTest(0x601, 0x02, 0x05, 0x00, 0x11, 0x64, 0x00, 150),
			"SND:00/01 RCV:00/02 IDX:5 REQ ECRR INTERVAL:100ms HYST:50%"},
		{"time request", frameTest(0x601, 0x02, 0x05, 0x00, 0x14, 0xE8, 0x03),
			"SND:00/01 RCV:00/02 IDX:5 REQ TCRR_HS INTERVAL:1000ms"},
		{"block ack", frameTest(0x601, 0x02, 0x05, 0x00, 0x31, 0x02, 0x00, 0x01),
			"SND:00/01 RCV:00/02 IDX:5 REQ WRITE_BLOCK ACK BLOCK:2"},
		{"logon", frameTest(0x610, 0x00, 0x00, 0x00, 0xFB, 0x00, 0x00, 0x01, 0x00),
			"SND:01/00 RCV:00/00 IDX:0 REQ LOGON TIME:65536ms"},
		{"error", frameTest(0x601, 0x02, 0x05, 0x80, 0x50, 0x07), "SND:00/01 RCV:00/02 IDX:5 RES ERROR CODE:0x07"},
		{"unknown", frameTest(0x601, 0x02, 0x05, 0x00, 0x99, 0x07), "SND:00/01 RCV:00/02 IDX:5 REQ UNKNOWN(0x99) DATA:07"},
		{"event request too short", frameTest(0x601, 0x02, 0x05, 0x00, 0x11, 0x64),
			"SND:00/01 RCV:00/02 IDX:5 REQ ECRR " + interpreter.WrongDlc + " DATA:64"},
		{"life too short", frameTest(0x612, 0x34, 0x00, 0x00, 0xFA),
			"SND:01/02 RCV:03/04 IDX:0 REQ LIFE " + interpreter.WrongDlc},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, kefex.MessageToString(test.frame))
		})
	}
}
