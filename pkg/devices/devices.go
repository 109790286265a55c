// Package devices holds the device type definitions that nodes refer to
package devices

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

var (
	ErrUnknownDevice    = errors.New("unknown device type")
	ErrUnknownSubDevice = errors.New("unknown sub device")
	ErrDuplicateDevice  = errors.New("device type already registered")
	ErrInterfaceCount   = errors.New("interface count out of range")
)

// SubDevice is the definition of one physical node.
// Single devices have exactly one sub device with an empty name.
type SubDevice struct {
	Name               string
	CanInterfaces      uint8
	EthernetInterfaces uint8
	ProgrammingSupport bool
	MaxApplications    int
}

// Device is a device type, possibly made of multiple sub devices (squad)
type Device struct {
	Name        string
	Description string
	SubDevices  []SubDevice
}

// IsMultiDevice returns true if nodes of this type are squad members
func (d *Device) IsMultiDevice() bool {
	return len(d.SubDevices) > 1
}

// SubDevice returns the sub device with given name.
// An empty name matches the first sub device of a single device.
func (d *Device) SubDevice(name string) (*SubDevice, error) {
	for i := range d.SubDevices {
		if d.SubDevices[i].Name == name {
			return &d.SubDevices[i], nil
		}
	}
	if name == "" && len(d.SubDevices) == 1 {
		return &d.SubDevices[0], nil
	}
	return nil, fmt.Errorf("%w : %v in %v", ErrUnknownSubDevice, name, d.Name)
}

// Registry resolves device type names, lookups are case insensitive
type Registry struct {
	devices map[string]*Device
	logger  *log.Entry
}

func NewRegistry() *Registry {
	return &Registry{
		devices: map[string]*Device{},
		logger:  log.WithField("component", "devices"),
	}
}

// Add a device definition to the registry
func (r *Registry) Add(device Device) error {
	key := strings.ToLower(device.Name)
	if _, ok := r.devices[key]; ok {
		return fmt.Errorf("%w : %v", ErrDuplicateDevice, device.Name)
	}
	if len(device.SubDevices) == 0 {
		device.SubDevices = []SubDevice{{}}
	}
	r.devices[key] = &device
	r.logger.Debugf("[DEVICES] registered %v with %v sub devices", device.Name, len(device.SubDevices))
	return nil
}

// Lookup returns the device definition of name
func (r *Registry) Lookup(name string) (*Device, error) {
	device, ok := r.devices[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w : %v", ErrUnknownDevice, name)
	}
	return device, nil
}

// SubDevice returns the sub device definition of a node
func (r *Registry) SubDevice(deviceName string, subDeviceName string) (*SubDevice, error) {
	device, err := r.Lookup(deviceName)
	if err != nil {
		return nil, err
	}
	return device.SubDevice(subDeviceName)
}

// Names returns the registered device names in alphabetical order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.devices))
	for _, device := range r.devices {
		names = append(names, device.Name)
	}
	sort.Strings(names)
	return names
}

// Load creates a registry from an INI device description.
// file can be a path, []byte or io.Reader, see [ini.Load]
func Load(file any) (*Registry, error) {
	registry := NewRegistry()
	err := registry.Load(file)
	if err != nil {
		return nil, err
	}
	return registry, nil
}

// Load adds all device types found in an INI description.
// Each top level section is a device type. A device made of multiple
// sub devices lists them in "SubDevices" and describes each in a
// section named "<device>.<subdevice>".
func (r *Registry) Load(file any) error {
	cfg, err := ini.Load(file)
	if err != nil {
		return err
	}
	for _, section := range cfg.Sections() {
		name := section.Name()
		if name == ini.DefaultSection || strings.Contains(name, ".") {
			continue
		}
		device := Device{
			Name:        name,
			Description: section.Key("Description").String(),
		}
		subNames := section.Key("SubDevices").Strings(",")
		if len(subNames) == 0 {
			sub, err := parseSubDevice(section, "")
			if err != nil {
				return fmt.Errorf("[DEVICES] device %v : %w", name, err)
			}
			device.SubDevices = []SubDevice{sub}
		}
		for _, subName := range subNames {
			subSection, err := cfg.GetSection(name + "." + subName)
			if err != nil {
				return fmt.Errorf("[DEVICES] device %v misses sub device section %v : %w", name, subName, err)
			}
			sub, err := parseSubDevice(subSection, subName)
			if err != nil {
				return fmt.Errorf("[DEVICES] device %v sub device %v : %w", name, subName, err)
			}
			device.SubDevices = append(device.SubDevices, sub)
		}
		if err := r.Add(device); err != nil {
			return err
		}
	}
	return nil
}

func parseSubDevice(section *ini.Section, name string) (SubDevice, error) {
	sub := SubDevice{Name: name}
	var err error
	if sub.CanInterfaces, err = parseInterfaceCount(section, "CanInterfaces"); err != nil {
		return sub, err
	}
	if sub.EthernetInterfaces, err = parseInterfaceCount(section, "EthernetInterfaces"); err != nil {
		return sub, err
	}
	sub.ProgrammingSupport = section.Key("ProgrammingSupport").MustBool(false)
	sub.MaxApplications = section.Key("MaxApplications").MustInt(0)
	return sub, nil
}

// parseInterfaceCount reads an optional interface count, zero if absent
func parseInterfaceCount(section *ini.Section, key string) (uint8, error) {
	// Key() creates missing keys, so presence is tested first
	if !section.HasKey(key) {
		return 0, nil
	}
	count, err := section.Key(key).Uint()
	if err != nil {
		return 0, err
	}
	if count > math.MaxUint8 {
		return 0, fmt.Errorf("%w : %v = %v in [%v]", ErrInterfaceCount, key, count, section.Name())
	}
	return uint8(count), nil
}
