package model

import "github.com/samsamfire/gosysdef/internal/crc"

type ApplicationType uint8

const (
	ApplicationProgrammable ApplicationType = iota
	ApplicationBinary
	ApplicationFileContainer
)

type Application struct {
	Name      string
	Comment   string
	Type      ApplicationType
	ProcessId uint8
}

func (a *Application) CalcHash(c *crc.CRC32) {
	c.String(a.Name)
	c.String(a.Comment)
	c.Uint8(uint8(a.Type))
	c.Uint8(a.ProcessId)
}

type HalcChannel struct {
	Name    string
	Comment string
}

type HalcDomain struct {
	Name     string
	Channels []HalcChannel
}

// HalcConfig is the hardware abstraction layer configuration of a node
type HalcConfig struct {
	Domains []HalcDomain
}

func (h *HalcConfig) CalcHash(c *crc.CRC32) {
	c.Uint32(uint32(len(h.Domains)))
	for _, domain := range h.Domains {
		c.String(domain.Name)
		c.Uint32(uint32(len(domain.Channels)))
		for _, channel := range domain.Channels {
			c.String(channel.Name)
			c.String(channel.Comment)
		}
	}
}
