package comm

import "github.com/samsamfire/gosysdef/pkg/model"

type MessageError uint32

const (
	MessageNameInvalid MessageError = 1 << iota
	MessageNameConflict
	MessageIdInvalid
	MessageIdConflict
	MessageDlcInvalid
	MessageTxMethodInvalid
	MessageCycleTimeInvalid
	MessageNotEnoughSignals
	MessageTooManySignals
	MessageSignalsInvalid
)

type SignalError uint32

const (
	SignalElementMissing SignalError = 1 << iota
	SignalNameInvalid
	SignalNameConflict
	SignalBitLengthInvalid
	SignalOutOfLayout
	SignalOverlap
	SignalByteOrderInvalid
	SignalValueInvalid
)

// Options tune the local check
type Options struct {
	// SyncProduced is set when the CANopen manager of the bus produces SYNC
	SyncProduced bool
	// IsValidName defaults to model.IsValidName
	IsValidName func(string) bool
}

type MessageResult struct {
	Errors       MessageError
	SignalErrors []SignalError
}

func (r MessageResult) Valid() bool {
	return r.Errors == 0
}

// InvalidSignals returns the indexes of the signals with errors
func (r MessageResult) InvalidSignals() []uint32 {
	indexes := make([]uint32, 0)
	for i, err := range r.SignalErrors {
		if err != 0 {
			indexes = append(indexes, uint32(i))
		}
	}
	return indexes
}

type ContainerResult struct {
	Tx     []MessageResult
	Rx     []MessageResult
	Counts SignalCountResult
}

// Valid returns true if no message has an error and signal counts are ok
func (r ContainerResult) Valid() bool {
	for _, m := range r.Tx {
		if !m.Valid() {
			return false
		}
	}
	for _, m := range r.Rx {
		if !m.Valid() {
			return false
		}
	}
	return r.Counts.Valid()
}

// InvalidMessages returns the indexes of invalid messages for direction
func (r ContainerResult) InvalidMessages(isTx bool) []uint32 {
	results := r.Rx
	if isTx {
		results = r.Tx
	}
	indexes := make([]uint32, 0)
	for i, m := range results {
		if !m.Valid() {
			indexes = append(indexes, uint32(i))
		}
	}
	return indexes
}

type SignalCountResult struct {
	TxSignalCountInvalid  bool
	RxSignalCountInvalid  bool
	MinSignalCountInvalid bool
}

func (r SignalCountResult) Valid() bool {
	return !r.TxSignalCountInvalid && !r.RxSignalCountInvalid && !r.MinSignalCountInvalid
}

// CheckSignalCounts only checks the number of signals of the container,
// this is much cheaper than a full CheckContainer
func CheckSignalCounts(rules Rules, container *model.MessageContainer) SignalCountResult {
	result := SignalCountResult{}
	count := func(messages []model.Message) int {
		total := 0
		for i := range messages {
			total += len(messages[i].Signals)
			if len(messages[i].Signals) < rules.MinSignalsPerMessage {
				result.MinSignalCountInvalid = true
			}
		}
		return total
	}
	result.TxSignalCountInvalid = count(container.TxMessages) > rules.MaxSignalsPerList
	result.RxSignalCountInvalid = count(container.RxMessages) > rules.MaxSignalsPerList
	return result
}

// CheckContainer runs the local message and signal layout checks of one
// message container. txList and rxList are the COM lists backing the signals,
// nil lists mean every signal misses its element.
func CheckContainer(
	rules Rules,
	container *model.MessageContainer,
	txList *model.List,
	rxList *model.List,
	opts Options,
) ContainerResult {
	if opts.IsValidName == nil {
		opts.IsValidName = model.IsValidName
	}
	result := ContainerResult{
		Tx:     make([]MessageResult, len(container.TxMessages)),
		Rx:     make([]MessageResult, len(container.RxMessages)),
		Counts: CheckSignalCounts(rules, container),
	}
	for i := range container.TxMessages {
		result.Tx[i] = checkMessage(rules, &container.TxMessages[i], txList, opts)
	}
	for i := range container.RxMessages {
		result.Rx[i] = checkMessage(rules, &container.RxMessages[i], rxList, opts)
	}
	markContainerConflicts(container, &result)
	return result
}

// CheckMessage runs the local checks of a single message, conflicts
// with other messages are not detected
func CheckMessage(rules Rules, message *model.Message, list *model.List, opts Options) MessageResult {
	if opts.IsValidName == nil {
		opts.IsValidName = model.IsValidName
	}
	return checkMessage(rules, message, list, opts)
}

func checkMessage(rules Rules, message *model.Message, list *model.List, opts Options) MessageResult {
	result := MessageResult{SignalErrors: make([]SignalError, len(message.Signals))}

	if !opts.IsValidName(message.Name) {
		result.Errors |= MessageNameInvalid
	}
	if (message.IsExtended && message.CanId > model.MaxExtId) ||
		(!message.IsExtended && message.CanId > model.MaxStdId) {
		result.Errors |= MessageIdInvalid
	}
	if message.Dlc > MaxDlc || (rules.HasFixedDlc && message.Dlc != rules.FixedDlc) {
		result.Errors |= MessageDlcInvalid
	}
	result.Errors |= checkTxMethod(rules, message, opts)
	if len(message.Signals) < rules.MinSignalsPerMessage {
		result.Errors |= MessageNotEnoughSignals
	}
	if len(message.Signals) > rules.MaxSignalsPerMessage {
		result.Errors |= MessageTooManySignals
	}

	checkSignals(rules, message, list, opts, result.SignalErrors)
	for _, err := range result.SignalErrors {
		if err != 0 {
			result.Errors |= MessageSignalsInvalid
			break
		}
	}
	return result
}

func checkTxMethod(rules Rules, message *model.Message, opts Options) MessageError {
	if !rules.AllowsTxMethod(message.TxMethod) {
		return MessageTxMethodInvalid
	}
	switch message.TxMethod {
	case model.TxMethodCyclic:
		if message.CycleTimeMs < MinCycleTimeMs || message.CycleTimeMs > MaxCycleTimeMs {
			return MessageCycleTimeInvalid
		}
	case model.TxMethodCanOpenPdoSync:
		// Sync PDOs are timed by the manager SYNC, no cycle time to check
		if !opts.SyncProduced {
			return MessageTxMethodInvalid
		}
	case model.TxMethodCanOpenPdoEvent:
		if message.CycleTimeMs > MaxEventTimerMs {
			return MessageCycleTimeInvalid
		}
	}
	return 0
}

func checkSignals(rules Rules, message *model.Message, list *model.List, opts Options, errs []SignalError) {
	usable := rules.UsableBits(message.Dlc)
	// owner of each bit, -1 if free
	var owners [64]int
	for i := range owners {
		owners[i] = -1
	}
	names := make(map[string]int, len(message.Signals))

	for i := range message.Signals {
		signal := &message.Signals[i]
		var element *model.Element
		if list != nil && int(signal.ElementIndex) < len(list.Elements) {
			element = &list.Elements[signal.ElementIndex]
		}
		if element == nil {
			errs[i] |= SignalElementMissing
		} else {
			errs[i] |= checkElement(signal, element, opts)
			if other, ok := names[element.Name]; ok {
				errs[i] |= SignalNameConflict
				errs[other] |= SignalNameConflict
			} else {
				names[element.Name] = i
			}
		}
		if signal.BitLength == 0 || signal.BitLength > 64 {
			errs[i] |= SignalBitLengthInvalid
			continue
		}
		if rules.IntelOnly && signal.ByteOrder != model.ByteOrderIntel {
			errs[i] |= SignalByteOrderInvalid
		}
		for _, bit := range signal.Bits() {
			if bit >= usable || bit >= 64 {
				errs[i] |= SignalOutOfLayout
				continue
			}
			if owners[bit] >= 0 && owners[bit] != i {
				errs[i] |= SignalOverlap
				errs[owners[bit]] |= SignalOverlap
				continue
			}
			owners[bit] = i
		}
	}
}

func checkElement(signal *model.Signal, element *model.Element, opts Options) SignalError {
	var err SignalError
	if !opts.IsValidName(element.Name) {
		err |= SignalNameInvalid
	}
	typeBits := element.Type.Bits()
	switch {
	case typeBits == 0:
		err |= SignalBitLengthInvalid
	case element.Type.IsFloat() || element.Type == model.TypeBool:
		if signal.BitLength != typeBits {
			err |= SignalBitLengthInvalid
		}
	case signal.BitLength > typeBits:
		err |= SignalBitLengthInvalid
	}
	if element.Min > element.Max || element.InitValue < element.Min || element.InitValue > element.Max {
		err |= SignalValueInvalid
	}
	return err
}

// markContainerConflicts flags duplicated names and ids over tx and rx
func markContainerConflicts(container *model.MessageContainer, result *ContainerResult) {
	type ref struct {
		isTx  bool
		index int
	}
	mark := func(r ref, err MessageError) {
		if r.isTx {
			result.Tx[r.index].Errors |= err
		} else {
			result.Rx[r.index].Errors |= err
		}
	}
	names := map[string]ref{}
	ids := map[model.MessageUniqueId]ref{}
	visit := func(isTx bool, messages []model.Message) {
		for i := range messages {
			current := ref{isTx: isTx, index: i}
			if other, ok := names[messages[i].Name]; ok {
				mark(current, MessageNameConflict)
				mark(other, MessageNameConflict)
			} else {
				names[messages[i].Name] = current
			}
			uid := messages[i].UniqueId()
			if other, ok := ids[uid]; ok {
				mark(current, MessageIdConflict)
				mark(other, MessageIdConflict)
			} else {
				ids[uid] = current
			}
		}
	}
	visit(true, container.TxMessages)
	visit(false, container.RxMessages)
}
