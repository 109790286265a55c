package interpreter

import "github.com/samsamfire/gosysdef/pkg/can"

// Chain tries interpreters in order, the first non empty result wins.
// Frames nobody recognizes are passed to the fallback.
type Chain struct {
	interpreters []Interpreter
	fallback     Interpreter
}

// NewChain creates a chain, fallback may be nil
func NewChain(fallback Interpreter, interpreters ...Interpreter) *Chain {
	return &Chain{interpreters: interpreters, fallback: fallback}
}

// NewChainFromNames creates a chain from registered protocol names.
// The fallback is the "l2" interpreter if registered.
func NewChainFromNames(names []string) (*Chain, error) {
	interpreters := make([]Interpreter, 0, len(names))
	for _, name := range names {
		interpreter, err := New(name)
		if err != nil {
			return nil, err
		}
		interpreters = append(interpreters, interpreter)
	}
	fallback, err := New("l2")
	if err != nil {
		fallback = nil
	}
	return NewChain(fallback, interpreters...), nil
}

// Decode returns the name of the protocol that decoded frame and the text.
// Both are empty if nobody decoded it.
func (c *Chain) Decode(frame can.Frame) (protocol string, text string) {
	for _, interpreter := range c.interpreters {
		if text := interpreter.MessageToString(frame); text != "" {
			return interpreter.ProtocolName(), text
		}
	}
	if c.fallback != nil {
		return c.fallback.ProtocolName(), c.fallback.MessageToString(frame)
	}
	return "", ""
}

func (c *Chain) MessageToString(frame can.Frame) string {
	_, text := c.Decode(frame)
	return text
}

func (c *Chain) ProtocolName() string {
	return "chain"
}
