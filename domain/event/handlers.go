package event

// Handler Each kind of event has its own handler
// Based on the Chain of responsibility pattern
type Handler interface {
	Handle(event Event)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(event Event)

func (f HandlerFunc) Handle(event Event) {
	f(event)
}
