package action

import (
	"context"
	"fmt"
)

// Params carries named arguments for an action handler.
type Params map[string]any

// Handler executes an action. Whatever it returns is passed back to the
// caller unmodified. Handlers run while the owning agent holds its lock, so
// they must not call back into the agent.
type Handler func(ctx context.Context, params Params) (any, error)

// Action is a named capability with a fixed list of required parameters.
type Action struct {
	Name           string
	Description    string
	Handler        Handler
	RequiredParams []string
}

// Missing returns the required parameters that are absent from params,
// in declaration order.
func (a Action) Missing(params Params) []string {
	var missing []string
	for _, name := range a.RequiredParams {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Registry holds actions by name and remembers the order they were first
// registered in. It is not safe for concurrent use.
type Registry struct {
	actions map[string]Action
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds an action, replacing any existing action with the same name.
// A replaced action keeps its original listing position.
func (r *Registry) Register(name, description string, handler Handler, requiredParams ...string) error {
	if name == "" {
		return ErrEmptyName
	}
	if _, exists := r.actions[name]; !exists {
		r.order = append(r.order, name)
	}
	r.actions[name] = Action{
		Name:           name,
		Description:    description,
		Handler:        handler,
		RequiredParams: append([]string(nil), requiredParams...),
	}
	return nil
}

// Get looks up an action by name.
func (r *Registry) Get(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.actions[name]
	return ok
}

// List returns registered action names in registration order.
func (r *Registry) List() []string {
	return append([]string(nil), r.order...)
}

// Actions returns every registered action in registration order.
func (r *Registry) Actions() []Action {
	out := make([]Action, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.actions[name])
	}
	return out
}

// Len returns the number of registered actions.
func (r *Registry) Len() int { return len(r.order) }

// Execute validates params against the action's required parameters and runs
// its handler. Returns ErrUnknownAction for an unregistered name and a
// *MissingParametersError without calling the handler when any required
// parameter is absent. Handler errors and panics come back as *ActionFailedError.
func (r *Registry) Execute(ctx context.Context, name string, params Params) (any, error) {
	a, ok := r.actions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}

	if missing := a.Missing(params); len(missing) > 0 {
		return nil, &MissingParametersError{Action: name, Names: missing}
	}

	return invoke(ctx, a, params)
}

func invoke(ctx context.Context, a Action, params Params) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = &ActionFailedError{Action: a.Name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	result, err = a.Handler(ctx, params)
	if err != nil {
		return nil, &ActionFailedError{Action: a.Name, Err: err}
	}
	return result, nil
}
