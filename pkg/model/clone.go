package model

// Clone returns a deep copy of the node
func (n *Node) Clone() Node {
	out := *n
	out.ComInterfaces = append([]ComInterface(nil), n.ComInterfaces...)
	out.DataPools = make([]DataPool, len(n.DataPools))
	for i := range n.DataPools {
		out.DataPools[i] = n.DataPools[i].Clone()
	}
	out.CanProtocols = make([]CanProtocol, len(n.CanProtocols))
	for i := range n.CanProtocols {
		out.CanProtocols[i] = n.CanProtocols[i].Clone()
	}
	if n.CanOpenManagers != nil {
		out.CanOpenManagers = make(map[uint8]CanOpenManager, len(n.CanOpenManagers))
		for number, manager := range n.CanOpenManagers {
			out.CanOpenManagers[number] = manager.Clone()
		}
	}
	out.Applications = append([]Application(nil), n.Applications...)
	out.Halc.Domains = make([]HalcDomain, len(n.Halc.Domains))
	for i, domain := range n.Halc.Domains {
		out.Halc.Domains[i] = HalcDomain{
			Name:     domain.Name,
			Channels: append([]HalcChannel(nil), domain.Channels...),
		}
	}
	return out
}

func (dp *DataPool) Clone() DataPool {
	out := *dp
	out.Lists = make([]List, len(dp.Lists))
	for i, list := range dp.Lists {
		out.Lists[i] = List{
			Name:     list.Name,
			Comment:  list.Comment,
			Elements: append([]Element(nil), list.Elements...),
		}
	}
	return out
}

func (p *CanProtocol) Clone() CanProtocol {
	out := *p
	out.ComMessages = make([]MessageContainer, len(p.ComMessages))
	for i, container := range p.ComMessages {
		out.ComMessages[i] = MessageContainer{
			IsUsedByInterface: container.IsUsedByInterface,
			TxMessages:        cloneMessages(container.TxMessages),
			RxMessages:        cloneMessages(container.RxMessages),
		}
	}
	return out
}

func (m *CanOpenManager) Clone() CanOpenManager {
	out := *m
	if m.Devices != nil {
		out.Devices = make(map[CanOpenDeviceId]CanOpenDevice, len(m.Devices))
		for id, device := range m.Devices {
			out.Devices[id] = device
		}
	}
	return out
}

func (s *NodeSquad) Clone() NodeSquad {
	return NodeSquad{
		BaseName:       s.BaseName,
		SubNodeIndexes: append([]uint32(nil), s.SubNodeIndexes...),
	}
}

func cloneMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	out := make([]Message, len(messages))
	for i, message := range messages {
		out[i] = message
		out[i].Signals = append([]Signal(nil), message.Signals...)
	}
	return out
}
