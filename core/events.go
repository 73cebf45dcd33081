package core

// Events pushed to open windows after a successful mutation.
const (
	EventCanvasChanged      = "canvas-state-changed"
	EventHeaderImageChanged = "header-image-changed"
)

// Notifier broadcasts a change event to every listening client.
type Notifier interface {
	Notify(event string)
}

// Notify is a no-op when n is nil.
func Notify(n Notifier, event string) {
	if n != nil {
		n.Notify(event)
	}
}
