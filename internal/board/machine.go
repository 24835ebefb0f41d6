package board

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Suggestion machine states. Untyped so they convert to statekit.StateID.
const (
	StateIdle    = "idle"
	StatePending = "pending"
)

// Suggestion machine events.
const (
	eventRequest = "request"
	eventSettle  = "settle"
)

type suggestionContext struct {
	TaskID string
}

// suggestionMachine tracks whether a single task awaits a suggestion reply.
// Pending ignores further requests; the first settle returns it to idle.
type suggestionMachine struct {
	interpreter *statekit.Interpreter[suggestionContext]
}

func newSuggestionMachine(taskID string) (*suggestionMachine, error) {
	builder := statekit.NewMachine[suggestionContext]("suggestion-" + taskID).
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(suggestionContext{TaskID: taskID})

	builder.State(StateIdle).
		On(eventRequest).Target(StatePending).
		Done()

	builder.State(StatePending).
		On(eventSettle).Target(StateIdle).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build suggestion machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &suggestionMachine{interpreter: interpreter}, nil
}

func (m *suggestionMachine) send(event string) {
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (m *suggestionMachine) Current() string {
	return string(m.interpreter.State().Value)
}

func (m *suggestionMachine) Pending() bool {
	return m.Current() == StatePending
}
