// Package fsm models the engine lifecycle as a small explicit state machine.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle         State = "idle"
	StateListening    State = "listening"
	StateTranscribing State = "transcribing"
	StateStopped      State = "stopped"
	StateError        State = "error"
)

const (
	EventStart       Event = "start"
	EventAudio       Event = "audio"
	EventTranscribed Event = "transcribed"
	EventStop        Event = "stop"
	EventFail        Event = "fail"
	EventReset       Event = "reset"
)

func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateError, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateListening:
		switch event {
		case EventAudio:
			return StateTranscribing, nil
		case EventStop:
			return StateStopped, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTranscribing:
		switch event {
		case EventTranscribed:
			return StateListening, nil
		case EventStop:
			return StateStopped, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStopped:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateError:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
