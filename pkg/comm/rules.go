// Package comm contains the protocol specific layout rules for CAN
// messages and signals and the local (single container) consistency check.
package comm

import "github.com/samsamfire/gosysdef/pkg/model"

const (
	MaxDlc            uint8  = 8
	MaxSignalsPerList int    = 2048
	MinCycleTimeMs    uint32 = 1
	MaxCycleTimeMs    uint32 = 50000
	MaxEventTimerMs   uint32 = 65535
	// Last two bytes of an ECeS message are message counter and checksum
	ecesPayloadBits uint16 = 48
	// CANopen PDO mapping parameters hold 8 application objects
	canOpenMaxMappedSignals = 8
)

// Rules are the layout constraints of one protocol type
type Rules struct {
	Type                 model.ProtocolType
	HasFixedDlc          bool
	FixedDlc             uint8
	PayloadBits          uint16
	MinSignalsPerMessage int
	MaxSignalsPerMessage int
	MaxSignalsPerList    int
	TxMethods            []model.TxMethod
	IntelOnly            bool
}

var rulesMap = map[model.ProtocolType]Rules{
	model.ProtocolL2: {
		Type:                 model.ProtocolL2,
		PayloadBits:          64,
		MinSignalsPerMessage: 0,
		MaxSignalsPerMessage: 64,
		MaxSignalsPerList:    MaxSignalsPerList,
		TxMethods:            []model.TxMethod{model.TxMethodCyclic, model.TxMethodOnChange, model.TxMethodOnEvent},
	},
	model.ProtocolECeS: {
		Type:                 model.ProtocolECeS,
		HasFixedDlc:          true,
		FixedDlc:             8,
		PayloadBits:          ecesPayloadBits,
		MinSignalsPerMessage: 1,
		MaxSignalsPerMessage: 64,
		MaxSignalsPerList:    MaxSignalsPerList,
		TxMethods:            []model.TxMethod{model.TxMethodCyclic},
	},
	model.ProtocolECoS: {
		Type:                 model.ProtocolECoS,
		HasFixedDlc:          true,
		FixedDlc:             8,
		PayloadBits:          64,
		MinSignalsPerMessage: 1,
		MaxSignalsPerMessage: 64,
		MaxSignalsPerList:    MaxSignalsPerList,
		TxMethods:            []model.TxMethod{model.TxMethodCyclic},
	},
	model.ProtocolCanOpen: {
		Type:                 model.ProtocolCanOpen,
		PayloadBits:          64,
		MinSignalsPerMessage: 1,
		MaxSignalsPerMessage: canOpenMaxMappedSignals,
		MaxSignalsPerList:    MaxSignalsPerList,
		TxMethods:            []model.TxMethod{model.TxMethodCanOpenPdoSync, model.TxMethodCanOpenPdoEvent},
		IntelOnly:            true,
	},
}

// RulesFor returns the rules of the protocol, unknown protocols
// get the layer 2 rules
func RulesFor(protocolType model.ProtocolType) Rules {
	rules, ok := rulesMap[protocolType]
	if !ok {
		return rulesMap[model.ProtocolL2]
	}
	return rules
}

// AllowsTxMethod returns true if method is allowed by the protocol
func (r Rules) AllowsTxMethod(method model.TxMethod) bool {
	for _, allowed := range r.TxMethods {
		if allowed == method {
			return true
		}
	}
	return false
}

// UsableBits returns the number of bits a signal may use for given dlc
func (r Rules) UsableBits(dlc uint8) uint16 {
	bits := uint16(dlc) * 8
	if bits > r.PayloadBits {
		return r.PayloadBits
	}
	return bits
}
