package model

import "github.com/samsamfire/gosysdef/internal/crc"

type DataPoolType uint8

const (
	DataPoolDiag DataPoolType = iota
	DataPoolNvm
	DataPoolCom
	DataPoolHalc
)

var dataPoolTypeMap = map[DataPoolType]string{
	DataPoolDiag: "DIAG",
	DataPoolNvm:  "NVM",
	DataPoolCom:  "COMM",
	DataPoolHalc: "HALC",
}

func (t DataPoolType) String() string {
	s, ok := dataPoolTypeMap[t]
	if !ok {
		return "UNKNOWN"
	}
	return s
}

// ContentType is the data type of a data pool element
type ContentType uint8

const (
	TypeBool ContentType = iota
	TypeUint8
	TypeInt8
	TypeUint16
	TypeInt16
	TypeUint32
	TypeInt32
	TypeUint64
	TypeInt64
	TypeFloat32
	TypeFloat64
)

var contentTypeBits = map[ContentType]uint16{
	TypeBool:    1,
	TypeUint8:   8,
	TypeInt8:    8,
	TypeUint16:  16,
	TypeInt16:   16,
	TypeUint32:  32,
	TypeInt32:   32,
	TypeUint64:  64,
	TypeInt64:   64,
	TypeFloat32: 32,
	TypeFloat64: 64,
}

// Bits returns the bit width of the type, 0 if unknown
func (t ContentType) Bits() uint16 {
	return contentTypeBits[t]
}

func (t ContentType) IsFloat() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// Element is a single data pool variable.
// For COM data pools, an element backs exactly one signal.
type Element struct {
	Name      string
	Comment   string
	Type      ContentType
	Min       float64
	Max       float64
	Factor    float64
	Offset    float64
	Unit      string
	InitValue float64
}

func (e *Element) CalcHash(c *crc.CRC32) {
	c.String(e.Name)
	c.String(e.Comment)
	c.Uint8(uint8(e.Type))
	c.Float64(e.Min)
	c.Float64(e.Max)
	c.Float64(e.Factor)
	c.Float64(e.Offset)
	c.String(e.Unit)
	c.Float64(e.InitValue)
}

type List struct {
	Name     string
	Comment  string
	Elements []Element
}

func (l *List) CalcHash(c *crc.CRC32) {
	c.String(l.Name)
	c.String(l.Comment)
	c.Uint32(uint32(len(l.Elements)))
	for i := range l.Elements {
		l.Elements[i].CalcHash(c)
	}
}

type DataPool struct {
	Name    string
	Comment string
	Type    DataPoolType
	Lists   []List
}

func (dp *DataPool) CalcHash(c *crc.CRC32) {
	c.String(dp.Name)
	c.String(dp.Comment)
	c.Uint8(uint8(dp.Type))
	c.Uint32(uint32(len(dp.Lists)))
	for i := range dp.Lists {
		dp.Lists[i].CalcHash(c)
	}
}

// ComListIndex returns the list index holding the signals of the
// given CAN interface and direction inside a COM data pool
func ComListIndex(interfaceIndex uint32, isTx bool) uint32 {
	if isTx {
		return interfaceIndex * 2
	}
	return interfaceIndex*2 + 1
}

// ComList returns the COM list for interface and direction or nil
func (dp *DataPool) ComList(interfaceIndex uint32, isTx bool) *List {
	index := ComListIndex(interfaceIndex, isTx)
	if dp.Type != DataPoolCom || int(index) >= len(dp.Lists) {
		return nil
	}
	return &dp.Lists[index]
}
