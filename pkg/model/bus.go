package model

import "github.com/samsamfire/gosysdef/internal/crc"

type BusType uint8

const (
	BusTypeCan      BusType = 0
	BusTypeEthernet BusType = 1
)

var busTypeMap = map[BusType]string{
	BusTypeCan:      "CAN",
	BusTypeEthernet: "ETHERNET",
}

func (t BusType) String() string {
	s, ok := busTypeMap[t]
	if !ok {
		return "UNKNOWN"
	}
	return s
}

// MaxBusId is the highest bus id usable for routing
const MaxBusId uint8 = 15

// Bus is one physical network segment
type Bus struct {
	Name    string
	Comment string
	Type    BusType
	// BusId is only meaningful when UsableForRouting is set
	BusId            uint8
	UsableForRouting bool
	// Bitrate in kbit/s, CAN only
	Bitrate uint32
}

func (b *Bus) CalcHash(c *crc.CRC32) {
	c.String(b.Name)
	c.String(b.Comment)
	c.Uint8(uint8(b.Type))
	c.Uint8(b.BusId)
	c.Bool(b.UsableForRouting)
	c.Uint32(b.Bitrate)
}
