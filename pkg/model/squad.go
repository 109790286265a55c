package model

// NodeSquad groups the nodes of one multi device unit
type NodeSquad struct {
	BaseName       string
	SubNodeIndexes []uint32
}

// SquadSeparator is placed between base name and sub device name
const SquadSeparator = "_"

// MemberName builds the display name of a squad member
func MemberName(baseName string, subDeviceName string) string {
	if subDeviceName == "" {
		return baseName
	}
	return baseName + SquadSeparator + subDeviceName
}

// Contains returns the position of nodeIndex in the squad or -1
func (s *NodeSquad) Contains(nodeIndex uint32) int {
	for i, index := range s.SubNodeIndexes {
		if index == nodeIndex {
			return i
		}
	}
	return -1
}
