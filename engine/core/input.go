package core

import "github.com/spaghettifunk/dolas/engine/containers"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key codes follow the virtual-key numbering so the platform layer can map
// into them directly.
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_SHIFT     KeyCode = 0x10
	KEY_CONTROL   KeyCode = 0x11
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_END       KeyCode = 0x23
	KEY_HOME      KeyCode = 0x24
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_DELETE    KeyCode = 0x2E
	KEY_0         KeyCode = 0x30
	KEY_1         KeyCode = 0x31
	KEY_2         KeyCode = 0x32
	KEY_3         KeyCode = 0x33
	KEY_4         KeyCode = 0x34
	KEY_5         KeyCode = 0x35
	KEY_6         KeyCode = 0x36
	KEY_7         KeyCode = 0x37
	KEY_8         KeyCode = 0x38
	KEY_9         KeyCode = 0x39
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F2        KeyCode = 0x71
	KEY_F3        KeyCode = 0x72
	KEY_F4        KeyCode = 0x73
	KEY_F5        KeyCode = 0x74
	KEY_F6        KeyCode = 0x75
	KEY_F7        KeyCode = 0x76
	KEY_F8        KeyCode = 0x77
	KEY_F9        KeyCode = 0x78
	KEY_F10       KeyCode = 0x79
	KEY_F11       KeyCode = 0x7A
	KEY_F12       KeyCode = 0x7B
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3

	KEYS_MAX_KEYS KeyCode = 0x100
)

const DEFAULT_INPUT_QUEUE_SIZE = 256

// KeyEvent is a discrete key transition.
type KeyEvent struct {
	Key     KeyCode
	Pressed bool
}

// Frame is everything the input producer queued since the last Drain.
type Frame struct {
	Events  []KeyEvent
	Held    [KEYS_MAX_KEYS]bool
	Buttons [BUTTON_MAX_BUTTONS]bool
	MouseDX float32
	MouseDY float32
	Wheel   float32
	Dropped int
}

func (f Frame) IsKeyDown(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	return f.Held[key]
}

func (f Frame) IsButtonDown(button Button) bool {
	if button >= BUTTON_MAX_BUTTONS {
		return false
	}
	return f.Buttons[button]
}

// Input collects events from the platform layer. Key transitions are queued
// and consumed once; mouse and wheel deltas accumulate until drained.
type Input struct {
	events  *containers.RingQueue[KeyEvent]
	held    [KEYS_MAX_KEYS]bool
	buttons [BUTTON_MAX_BUTTONS]bool
	mouseDX float32
	mouseDY float32
	wheel   float32
	dropped int
	bus     *EventBus
}

// NewInput creates an input queue holding at most capacity key events. bus
// may be nil; when set, key transitions are also fired as events.
func NewInput(capacity int, bus *EventBus) *Input {
	if capacity <= 0 {
		capacity = DEFAULT_INPUT_QUEUE_SIZE
	}
	return &Input{
		events: containers.NewRingQueue[KeyEvent](capacity),
		bus:    bus,
	}
}

// PushKey queues a key transition. When the queue is full the oldest event is
// folded into the held state and discarded, so a dropped release still
// releases its key.
func (in *Input) PushKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	ev := KeyEvent{Key: key, Pressed: pressed}
	if in.events.IsFull() {
		if old, err := in.events.Dequeue(); err == nil {
			in.held[old.Key] = old.Pressed
		}
		in.dropped++
	}
	_ = in.events.Enqueue(ev)

	if in.bus != nil {
		code := EVENT_CODE_KEY_RELEASED
		if pressed {
			code = EVENT_CODE_KEY_PRESSED
		}
		in.bus.Fire(EventContext{Type: code, Data: ev})
	}
}

func (in *Input) PushMouseDelta(dx, dy float32) {
	in.mouseDX += dx
	in.mouseDY += dy
}

func (in *Input) PushWheel(delta float32) {
	in.wheel += delta
}

func (in *Input) SetButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS {
		return
	}
	in.buttons[button] = pressed
}

func (in *Input) IsButtonDown(button Button) bool {
	if button >= BUTTON_MAX_BUTTONS {
		return false
	}
	return in.buttons[button]
}

// IsKeyDown reports the key state as of the last Drain.
func (in *Input) IsKeyDown(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	return in.held[key]
}

// Pending is the number of queued key events.
func (in *Input) Pending() int {
	return in.events.Len()
}

// Drain consumes every queued event and the accumulated deltas.
func (in *Input) Drain() Frame {
	frame := Frame{
		Events:  make([]KeyEvent, 0, in.events.Len()),
		MouseDX: in.mouseDX,
		MouseDY: in.mouseDY,
		Wheel:   in.wheel,
		Buttons: in.buttons,
		Dropped: in.dropped,
	}
	for !in.events.IsEmpty() {
		ev, err := in.events.Dequeue()
		if err != nil {
			break
		}
		in.held[ev.Key] = ev.Pressed
		frame.Events = append(frame.Events, ev)
	}
	frame.Held = in.held

	in.mouseDX, in.mouseDY, in.wheel = 0, 0, 0
	in.dropped = 0
	return frame
}

// Reset forgets every queued event and held key.
func (in *Input) Reset() {
	for !in.events.IsEmpty() {
		_, _ = in.events.Dequeue()
	}
	in.held = [KEYS_MAX_KEYS]bool{}
	in.buttons = [BUTTON_MAX_BUTTONS]bool{}
	in.mouseDX, in.mouseDY, in.wheel = 0, 0, 0
	in.dropped = 0
}
