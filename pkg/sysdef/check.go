package sysdef

import "github.com/samsamfire/gosysdef/pkg/model"

// NodeChecks selects the checks run by CheckErrorNode.
// Only the requested fields of [NodeCheckResult] are computed.
type NodeChecks uint32

const (
	CheckNodeNameConflict NodeChecks = 1 << iota
	CheckNodeNameInvalid
	CheckNodeIdInvalid
	CheckIpInvalid
	CheckDataPoolsInvalid
	CheckApplicationsInvalid
	CheckHalcInvalid
	CheckCommSignalCount
	CheckCanOpenNodeIds
	CheckCanOpenHeartbeat

	CheckAllNode NodeChecks = 1<<iota - 1
)

func (c NodeChecks) Has(check NodeChecks) bool {
	return c&check == check
}

type NodeCheckResult struct {
	// Computed holds the checks that were run, other fields are zero
	Computed NodeChecks

	NameConflict bool
	NameInvalid  bool

	NodeIdInvalid           bool
	InvalidNodeIdInterfaces []uint32

	IpInvalid           bool
	InvalidIpInterfaces []uint32

	DataPoolsInvalid bool
	InvalidDataPools []uint32

	ApplicationsInvalid bool
	InvalidApplications []uint32

	HalcInvalid bool

	// CommMaxSignalCountInvalid is set when a tx or rx COM list has too many signals
	CommMaxSignalCountInvalid bool
	// CommMinSignalCountInvalid is set when a message has less signals than its protocol requires
	CommMinSignalCountInvalid bool

	CanOpenNodeIdInvalid    bool
	CanOpenHeartbeatInvalid bool
}

// HasError returns true if any computed check found a problem
func (r NodeCheckResult) HasError() bool {
	return r.NameConflict || r.NameInvalid || r.NodeIdInvalid || r.IpInvalid ||
		r.DataPoolsInvalid || r.ApplicationsInvalid || r.HalcInvalid ||
		r.CommMaxSignalCountInvalid || r.CommMinSignalCountInvalid ||
		r.CanOpenNodeIdInvalid || r.CanOpenHeartbeatInvalid
}

// BusChecks selects the checks run by CheckErrorBus
type BusChecks uint32

const (
	CheckBusNameConflict BusChecks = 1 << iota
	CheckBusNameInvalid
	CheckBusIdInvalid
	CheckBusMessages

	CheckAllBus BusChecks = 1<<iota - 1
)

func (c BusChecks) Has(check BusChecks) bool {
	return c&check == check
}

type BusCheckResult struct {
	Computed BusChecks

	NameConflict bool
	NameInvalid  bool
	IdInvalid    bool

	MessagesInvalid  bool
	InvalidDataPools []ComDataPoolConnection
	InvalidMessages  []model.MessageId
}

func (r BusCheckResult) HasError() bool {
	return r.NameConflict || r.NameInvalid || r.IdInvalid || r.MessagesInvalid
}

// DataPoolCheckResult is the outcome of CheckErrorDataPool
type DataPoolCheckResult struct {
	NameConflict bool
	NameInvalid  bool
	ListsInvalid bool
	InvalidLists []uint32
}

func (r DataPoolCheckResult) HasError() bool {
	return r.NameConflict || r.NameInvalid || r.ListsInvalid
}
