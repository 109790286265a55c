// Package sysdef is the consistency engine of a system definition:
// nodes, buses and node squads with their communication configuration.
//
// The data is held in plain exported slices and cross references are
// indexes. Structural changes must go through the mutators of
// [SystemDefinition] so that every index based reference is kept in sync.
// Checks never modify the data and report findings through result
// structs, errors are only returned for invalid arguments.
//
// A SystemDefinition is not safe for concurrent mutation. Background
// validation should run on a [SystemDefinition.Clone].
package sysdef

import (
	"errors"

	"github.com/samsamfire/gosysdef/pkg/devices"
	"github.com/samsamfire/gosysdef/pkg/model"
	log "github.com/sirupsen/logrus"
)

var (
	ErrRange        = errors.New("index out of range")
	ErrConfig       = errors.New("invalid system definition configuration")
	ErrNoFreeBusId  = errors.New("no free bus id available")
	ErrNoFreeNodeId = errors.New("no free node id available on bus")
)

// MaxNodeId is the highest node id of a communication interface
const MaxNodeId uint8 = 126

// DeviceRegistry resolves the device definition of a node
type DeviceRegistry interface {
	SubDevice(deviceName string, subDeviceName string) (*devices.SubDevice, error)
}

type SystemDefinition struct {
	Nodes  []model.Node
	Buses  []model.Bus
	Squads []model.NodeSquad

	devices     DeviceRegistry
	isValidName func(string) bool
	logger      *log.Entry
	cache       *dataPoolCache
}

type Option func(sd *SystemDefinition)

// WithDeviceRegistry sets the registry used when adding nodes
func WithDeviceRegistry(registry DeviceRegistry) Option {
	return func(sd *SystemDefinition) {
		sd.devices = registry
	}
}

// WithNameValidator replaces the default C identifier name policy
func WithNameValidator(isValid func(string) bool) Option {
	return func(sd *SystemDefinition) {
		sd.isValidName = isValid
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(sd *SystemDefinition) {
		sd.logger = logger
	}
}

// New creates an empty system definition
func New(opts ...Option) *SystemDefinition {
	sd := &SystemDefinition{
		Nodes:       []model.Node{},
		Buses:       []model.Bus{},
		Squads:      []model.NodeSquad{},
		isValidName: model.IsValidName,
		logger:      log.WithField("component", "sysdef"),
		cache:       newDataPoolCache(),
	}
	for _, opt := range opts {
		opt(sd)
	}
	return sd
}

// Clone returns a deep copy that can be checked independently.
// The copy shares the registry, name policy and the data pool cache,
// the cache is keyed by content so sharing it is safe.
func (sd *SystemDefinition) Clone() *SystemDefinition {
	clone := &SystemDefinition{
		Nodes:       make([]model.Node, len(sd.Nodes)),
		Buses:       append([]model.Bus(nil), sd.Buses...),
		Squads:      make([]model.NodeSquad, len(sd.Squads)),
		devices:     sd.devices,
		isValidName: sd.isValidName,
		logger:      sd.logger,
		cache:       sd.cache,
	}
	for i := range sd.Nodes {
		clone.Nodes[i] = sd.Nodes[i].Clone()
	}
	for i := range sd.Squads {
		clone.Squads[i] = sd.Squads[i].Clone()
	}
	return clone
}

// InvalidateCache drops all memoized data pool results
func (sd *SystemDefinition) InvalidateCache() {
	sd.cache.clear()
}

func (sd *SystemDefinition) checkNodeIndex(nodeIndex uint32) error {
	if int(nodeIndex) >= len(sd.Nodes) {
		return ErrRange
	}
	return nil
}

func (sd *SystemDefinition) checkBusIndex(busIndex uint32) error {
	if int(busIndex) >= len(sd.Buses) {
		return ErrRange
	}
	return nil
}

func (sd *SystemDefinition) comInterface(nodeIndex uint32, comIndex uint32) (*model.ComInterface, error) {
	if err := sd.checkNodeIndex(nodeIndex); err != nil {
		return nil, err
	}
	node := &sd.Nodes[nodeIndex]
	if int(comIndex) >= len(node.ComInterfaces) {
		return nil, ErrRange
	}
	return &node.ComInterfaces[comIndex], nil
}
