package sysdef

import (
	"sync"

	"github.com/samsamfire/gosysdef/internal/crc"
	"github.com/samsamfire/gosysdef/pkg/model"
)

// dataPoolContent is the memoized part of a data pool check, it only
// depends on the data pool and its related protocols
type dataPoolContent struct {
	listsInvalid bool
	invalidLists []uint32
}

// dataPoolCache memoizes content checks by structural hash.
// It is safe for concurrent use.
type dataPoolCache struct {
	mu      sync.Mutex
	results map[uint32]dataPoolContent
	hits    uint64
	misses  uint64
}

func newDataPoolCache() *dataPoolCache {
	return &dataPoolCache{results: map[uint32]dataPoolContent{}}
}

func (c *dataPoolCache) get(key uint32) (dataPoolContent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	content, ok := c.results[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return content, ok
}

func (c *dataPoolCache) put(key uint32, content dataPoolContent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[key] = content
}

func (c *dataPoolCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = map[uint32]dataPoolContent{}
}

// CacheStats returns the number of data pool cache hits and misses
func (sd *SystemDefinition) CacheStats() (hits uint64, misses uint64) {
	sd.cache.mu.Lock()
	defer sd.cache.mu.Unlock()
	return sd.cache.hits, sd.cache.misses
}

// DeleteDataPool removes a data pool of node, protocols bound to it are removed
// and protocols of following data pools are renumbered
func (sd *SystemDefinition) DeleteDataPool(nodeIndex uint32, dataPoolIndex uint32) error {
	if err := sd.checkNodeIndex(nodeIndex); err != nil {
		return err
	}
	node := &sd.Nodes[nodeIndex]
	if int(dataPoolIndex) >= len(node.DataPools) {
		return ErrRange
	}
	node.DataPools = append(node.DataPools[:dataPoolIndex], node.DataPools[dataPoolIndex+1:]...)
	sd.reindexDataPoolRefs(nodeIndex, deleteRemap(dataPoolIndex))
	sd.cache.clear()
	return nil
}

// CheckErrorDataPool checks name and content of a data pool.
// Content results are memoized by a hash of the data pool and its protocols.
func (sd *SystemDefinition) CheckErrorDataPool(nodeIndex uint32, dataPoolIndex uint32) (DataPoolCheckResult, error) {
	result := DataPoolCheckResult{}
	if err := sd.checkNodeIndex(nodeIndex); err != nil {
		return result, err
	}
	node := &sd.Nodes[nodeIndex]
	if int(dataPoolIndex) >= len(node.DataPools) {
		return result, ErrRange
	}
	dataPool := &node.DataPools[dataPoolIndex]

	result.NameInvalid = !sd.isValidName(dataPool.Name)
	for i := range node.DataPools {
		if uint32(i) != dataPoolIndex && model.NamesEqual(node.DataPools[i].Name, dataPool.Name) {
			result.NameConflict = true
			break
		}
	}

	protocols := node.ProtocolsOfDataPool(dataPoolIndex)
	hash := crc.New()
	dataPool.CalcHash(&hash)
	for _, protocol := range protocols {
		protocol.CalcHash(&hash)
	}
	content, ok := sd.cache.get(hash.Value())
	if !ok {
		content = sd.checkDataPoolContent(dataPool, protocols)
		sd.cache.put(hash.Value(), content)
	}
	result.ListsInvalid = content.listsInvalid
	result.InvalidLists = append([]uint32{}, content.invalidLists...)
	return result, nil
}

func (sd *SystemDefinition) checkDataPoolContent(dataPool *model.DataPool, protocols []*model.CanProtocol) dataPoolContent {
	invalid := make(map[uint32]bool)
	listNames := map[string]uint32{}
	for listIndex := range dataPool.Lists {
		list := &dataPool.Lists[listIndex]
		if !sd.isValidName(list.Name) {
			invalid[uint32(listIndex)] = true
		}
		if other, ok := listNames[list.Name]; ok {
			invalid[uint32(listIndex)] = true
			invalid[other] = true
		} else {
			listNames[list.Name] = uint32(listIndex)
		}
		if !sd.elementsValid(list) {
			invalid[uint32(listIndex)] = true
		}
	}
	if dataPool.Type == model.DataPoolCom {
		for listIndex := range checkComReferences(dataPool, protocols) {
			invalid[listIndex] = true
		}
	}
	content := dataPoolContent{invalidLists: []uint32{}}
	for listIndex := range dataPool.Lists {
		if invalid[uint32(listIndex)] {
			content.invalidLists = append(content.invalidLists, uint32(listIndex))
		}
	}
	content.listsInvalid = len(content.invalidLists) > 0
	return content
}

func (sd *SystemDefinition) elementsValid(list *model.List) bool {
	names := map[string]bool{}
	for i := range list.Elements {
		element := &list.Elements[i]
		if !sd.isValidName(element.Name) || names[element.Name] {
			return false
		}
		names[element.Name] = true
		if element.Min > element.Max || element.InitValue < element.Min || element.InitValue > element.Max {
			return false
		}
	}
	return true
}

// checkComReferences returns the COM lists whose elements are not
// referenced by exactly one signal of the matching message container
func checkComReferences(dataPool *model.DataPool, protocols []*model.CanProtocol) map[uint32]bool {
	invalid := map[uint32]bool{}
	if len(protocols) == 0 {
		return invalid
	}
	for _, protocol := range protocols {
		if len(dataPool.Lists) != 2*len(protocol.ComMessages) {
			for listIndex := range dataPool.Lists {
				invalid[uint32(listIndex)] = true
			}
			return invalid
		}
		for canIndex := range protocol.ComMessages {
			container := &protocol.ComMessages[canIndex]
			for _, isTx := range []bool{true, false} {
				listIndex := model.ComListIndex(uint32(canIndex), isTx)
				list := &dataPool.Lists[listIndex]
				references := make([]int, len(list.Elements))
				for _, message := range container.Messages(isTx) {
					for _, signal := range message.Signals {
						if int(signal.ElementIndex) >= len(list.Elements) {
							invalid[listIndex] = true
							continue
						}
						references[signal.ElementIndex]++
					}
				}
				for _, count := range references {
					if count != 1 {
						invalid[listIndex] = true
					}
				}
			}
		}
	}
	return invalid
}
