package canopen

const (
	stateInitializing   uint8 = 0
	statePreOperational uint8 = 127
	stateOperational    uint8 = 5
	stateStopped        uint8 = 4
)

var stateMap = map[uint8]string{
	statePreOperational: "PRE-OPERATIONAL",
	stateOperational:    "OPERATIONAL",
	stateStopped:        "STOPPED",
}

type command uint8

const (
	commandEnterOperational    command = 1
	commandEnterStopped        command = 2
	commandEnterPreOperational command = 128
	commandResetNode           command = 129
	commandResetCommunication  command = 130
)

var commandDescription = map[command]string{
	commandEnterOperational:    "ENTER-OPERATIONAL",
	commandEnterStopped:        "ENTER-STOPPED",
	commandEnterPreOperational: "ENTER-PREOPERATIONAL",
	commandResetNode:           "RESET-NODE",
	commandResetCommunication:  "RESET-COMMUNICATION",
}

type abortCode uint32

var abortCodeDescription = map[abortCode]string{
	0x05030000: "Toggle bit not altered",
	0x05040000: "SDO protocol timed out",
	0x05040001: "Command specifier not valid or unknown",
	0x05040002: "Invalid block size in block mode",
	0x05040003: "Invalid sequence number in block mode",
	0x05040004: "CRC error (block mode only)",
	0x05040005: "Out of memory",
	0x06010000: "Unsupported access to an object",
	0x06010001: "Attempt to read a write only object",
	0x06010002: "Attempt to write a read only object",
	0x06020000: "Object does not exist in the object dictionary",
	0x06040041: "Object cannot be mapped to the PDO",
	0x06040042: "Num and len of object to be mapped exceeds PDO len",
	0x06040043: "General parameter incompatibility reasons",
	0x06040047: "General internal incompatibility in device",
	0x06060000: "Access failed due to hardware error",
	0x06070010: "Data type does not match, length does not match",
	0x06070012: "Data type does not match, length too high",
	0x06070013: "Data type does not match, length too short",
	0x06090011: "Sub index does not exist",
	0x06090030: "Invalid value for parameter (download only)",
	0x06090031: "Value range of parameter written too high",
	0x06090032: "Value range of parameter written too low",
	0x06090036: "Maximum value is less than minimum value.",
	0x060A0023: "Resource not available: SDO connection",
	0x08000000: "General error",
	0x08000020: "Data cannot be transferred or stored to application",
	0x08000021: "Data cannot be transferred because of local control",
	0x08000022: "Data cannot be tran. because of present device state",
	0x08000023: "Object dict. not present or dynamic generation fails",
	0x08000024: "No data available",
}
