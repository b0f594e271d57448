package sim

// Message is the closed set of values published on the Engine's Channel.
// Consumers switch over the concrete types:
//   - KeyDateMessage
//   - IntervalDescriptionMessage
//   - VerboseModeFlagMessage
type Message interface {
	isMessage()
}

// KeyDateMessage carries a dated milestone crossing or a Source/Subject boundary.
type KeyDateMessage struct {
	KeyDate KeyDate
}

// IntervalDescriptionMessage carries one resolved interval of the Training Mode Table.
type IntervalDescriptionMessage struct {
	Interval IntervalDescription
}

// VerboseModeFlagMessage is announced once per run, before the first Key-Date.
// Consumers that need start/end pairs fail fast when Verbose is false.
type VerboseModeFlagMessage struct {
	Verbose bool
}

func (KeyDateMessage) isMessage()             {}
func (IntervalDescriptionMessage) isMessage() {}
func (VerboseModeFlagMessage) isMessage()     {}

// Listener receives messages synchronously from a Channel.
type Listener interface {
	OnMessage(msg Message)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(msg Message)

// OnMessage calls f(msg).
func (f ListenerFunc) OnMessage(msg Message) { f(msg) }

// Channel delivers each published message to every subscriber, inline and in
// subscription order. There is no queue; Publish returns after the last listener.
type Channel struct {
	listeners []Listener
}

// Subscribe appends l to the delivery list.
func (c *Channel) Subscribe(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Publish delivers msg to all listeners.
func (c *Channel) Publish(msg Message) {
	for _, l := range c.listeners {
		l.OnMessage(msg)
	}
}
