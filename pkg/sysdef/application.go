package sysdef

import (
	"strings"

	"github.com/samsamfire/gosysdef/pkg/model"
)

// checkApplications returns the indexes of invalid applications of node
func (sd *SystemDefinition) checkApplications(node *model.Node) []uint32 {
	invalid := make([]uint32, 0)
	maxApplications := -1
	if sd.devices != nil {
		if sub, err := sd.devices.SubDevice(node.DeviceType, node.SubDeviceName); err == nil && sub.ProgrammingSupport {
			maxApplications = sub.MaxApplications
		}
	}
	applications := node.Applications
	for i := range applications {
		app := &applications[i]
		valid := sd.isValidName(app.Name)
		for j := range applications {
			if i == j {
				continue
			}
			if model.NamesEqual(app.Name, applications[j].Name) {
				valid = false
			}
			if app.Type == model.ApplicationProgrammable && applications[j].Type == model.ApplicationProgrammable &&
				app.ProcessId == applications[j].ProcessId {
				valid = false
			}
		}
		if maxApplications >= 0 && i >= maxApplications {
			valid = false
		}
		if !valid {
			invalid = append(invalid, uint32(i))
		}
	}
	return invalid
}

// halcValid checks domain names and channel names of each domain
func (sd *SystemDefinition) halcValid(halc *model.HalcConfig) bool {
	domainNames := map[string]bool{}
	for _, domain := range halc.Domains {
		key := strings.ToLower(domain.Name)
		if !sd.isValidName(domain.Name) || domainNames[key] {
			return false
		}
		domainNames[key] = true
		channelNames := map[string]bool{}
		for _, channel := range domain.Channels {
			key := strings.ToLower(channel.Name)
			if !sd.isValidName(channel.Name) || channelNames[key] {
				return false
			}
			channelNames[key] = true
		}
	}
	return true
}
