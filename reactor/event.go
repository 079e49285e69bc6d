package reactor

import "context"

// HandlerResolver walks from an event's target up toward the document root
// looking for a bound handler, implemented by the sink (spec.md §4.4,
// "Event delegation"): "the first ancestor with data-w-on<eventname> is
// the binding".
type HandlerResolver interface {
	ResolveHandler(eventName, targetId string) (handlerId string, ok bool)
}

// EventDelegate installs a single logical capture-phase listener per event
// name and turns a fired DOM event into an execute-signal command carrying
// the event value, enqueued into the owning Delegate's command stream.
type EventDelegate struct {
	resolver HandlerResolver
	commands chan<- Command
}

// NewEventDelegate creates an EventDelegate that resolves bindings through
// resolver and enqueues execute-signal commands onto commands.
func NewEventDelegate(resolver HandlerResolver, commands chan<- Command) *EventDelegate {
	return &EventDelegate{resolver: resolver, commands: commands}
}

// Dispatch handles one fired DOM event: eventName is e.g. "click",
// targetId is the id of the element the event originated on, and event is
// whatever event payload the handler's logic should receive.
func (ed *EventDelegate) Dispatch(ctx context.Context, eventName, targetId string, event any) bool {
	handlerId, ok := ed.resolver.ResolveHandler(eventName, targetId)
	if !ok {
		return false
	}

	select {
	case ed.commands <- Command{Kind: ExecuteSignal, Id: handlerId, Event: event}:
		return true
	case <-ctx.Done():
		return false
	}
}
