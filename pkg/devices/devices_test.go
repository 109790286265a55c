package devices

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const devicesIniTest = `
[ESX3CM]
Description = Single controller
CanInterfaces = 2
EthernetInterfaces = 1
ProgrammingSupport = true
MaxApplications = 8

[ESX4]
Description = Dual core controller
SubDevices = CPU_A,CPU_B

[ESX4.CPU_A]
CanInterfaces = 2
MaxApplications = 4

[ESX4.CPU_B]
CanInterfaces = 1
EthernetInterfaces = 1
`

func TestLoad(t *testing.T) {
	registry, err := Load([]byte(devicesIniTest))
	assert.Nil(t, err)
	assert.Equal(t, []string{"ESX3CM", "ESX4"}, registry.Names())

	t.Run("single device", func(t *testing.T) {
		device, err := registry.Lookup("esx3cm")
		assert.Nil(t, err)
		assert.False(t, device.IsMultiDevice())
		sub, err := registry.SubDevice("ESX3CM", "")
		assert.Nil(t, err)
		assert.EqualValues(t, 2, sub.CanInterfaces)
		assert.EqualValues(t, 1, sub.EthernetInterfaces)
		assert.True(t, sub.ProgrammingSupport)
		assert.Equal(t, 8, sub.MaxApplications)
	})
	t.Run("multi device", func(t *testing.T) {
		device, err := registry.Lookup("ESX4")
		assert.Nil(t, err)
		assert.True(t, device.IsMultiDevice())
		sub, err := device.SubDevice("CPU_B")
		assert.Nil(t, err)
		assert.EqualValues(t, 1, sub.CanInterfaces)
		_, err = device.SubDevice("")
		assert.True(t, errors.Is(err, ErrUnknownSubDevice))
	})
	t.Run("unknown device", func(t *testing.T) {
		_, err := registry.Lookup("nope")
		assert.True(t, errors.Is(err, ErrUnknownDevice))
	})
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.ini")
	assert.Nil(t, os.WriteFile(path, []byte(devicesIniTest), 0o644))
	registry, err := Load(path)
	assert.Nil(t, err)
	assert.Len(t, registry.Names(), 2)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing sub device section", func(t *testing.T) {
		_, err := Load([]byte("[X]\nSubDevices = A\n"))
		assert.NotNil(t, err)
	})
	t.Run("bad interface count", func(t *testing.T) {
		_, err := Load([]byte("[X]\nCanInterfaces = many\n"))
		assert.NotNil(t, err)
	})
	t.Run("interface count does not fit", func(t *testing.T) {
		_, err := Load([]byte("[X]\nCanInterfaces = 256\n"))
		assert.ErrorIs(t, err, ErrInterfaceCount)
		_, err = Load([]byte("[Y]\nSubDevices = A\n[Y.A]\nEthernetInterfaces = 300\n"))
		assert.ErrorIs(t, err, ErrInterfaceCount)
		registry, err := Load([]byte("[Z]\nCanInterfaces = 255\n"))
		assert.Nil(t, err)
		sub, err := registry.SubDevice("Z", "")
		assert.Nil(t, err)
		assert.EqualValues(t, 255, sub.CanInterfaces)
	})
	t.Run("duplicate", func(t *testing.T) {
		registry := NewRegistry()
		assert.Nil(t, registry.Add(Device{Name: "A"}))
		assert.True(t, errors.Is(registry.Add(Device{Name: "a"}), ErrDuplicateDevice))
	})
}
