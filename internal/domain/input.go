package domain

// InputEventKind classifies the raw input events that count as user activity.
type InputEventKind string

const (
	InputPointerMove InputEventKind = "pointerMove"
	InputPointerDown InputEventKind = "pointerDown"
	InputTouchStart  InputEventKind = "touchStart"
	InputClick       InputEventKind = "click"
	InputScroll      InputEventKind = "scroll"
	InputKeyPress    InputEventKind = "keyPress"
)

// InputEvent is a qualifying user-input event. All kinds feed the same
// record-activity transition.
type InputEvent struct {
	Kind InputEventKind
}

// InputSource delivers raw input events from the host window layer.
// Subscribe returns a cancel func that detaches the callback; the activity
// monitor holds one per source and cancels them all on Stop.
type InputSource interface {
	Subscribe(fn func(InputEvent)) (cancel func(), err error)
}
