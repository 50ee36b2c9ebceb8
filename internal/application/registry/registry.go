// Package registry holds the named tools and components exposed to the
// dispatch host. Descriptors are built from typed handlers; arguments are
// decoded strictly and validated before a handler runs.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/productivitybrain/core/internal/application/ui"
)

// Observer is notified after every invocation
type Observer func(kind, name string, err error, elapsed time.Duration)

// catalog is a name-indexed list kept in registration order
type catalog[D any] struct {
	kind  string
	mu    sync.RWMutex
	items map[string]D
	order []string
}

func newCatalog[D any](kind string) catalog[D] {
	return catalog[D]{kind: kind, items: make(map[string]D)}
}

func (c *catalog[D]) register(name string, d D) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		return fmt.Errorf("%s name is required", c.kind)
	}
	if _, exists := c.items[name]; exists {
		return fmt.Errorf("%s %s already registered", c.kind, name)
	}
	c.items[name] = d
	c.order = append(c.order, name)
	return nil
}

func (c *catalog[D]) get(name string) (D, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.items[name]
	return d, ok
}

func (c *catalog[D]) list() []D {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]D, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.items[name])
	}
	return out
}

// Tool is a named, schema-described operation
type Tool struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	InputSchema  *Schema `json:"inputSchema"`
	OutputSchema *Schema `json:"outputSchema"`

	invoke func(ctx context.Context, args json.RawMessage) (any, error)
}

// NewTool builds a tool whose input and output schemas are reflected from In
// and Out.
func NewTool[In, Out any](name, description string, fn func(ctx context.Context, in In) (Out, error)) Tool {
	return Tool{
		Name:         name,
		Description:  description,
		InputSchema:  SchemaFor[In](),
		OutputSchema: SchemaFor[Out](),
		invoke: func(ctx context.Context, args json.RawMessage) (any, error) {
			in, err := decode[In](args)
			if err != nil {
				return nil, &ValidationError{Kind: "tool", Name: name, Err: err}
			}
			return fn(ctx, in)
		},
	}
}

// Invoke decodes args and runs the tool
func (t Tool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	if t.invoke == nil {
		return nil, fmt.Errorf("tool %q has no handler", t.Name)
	}
	return t.invoke(ctx, args)
}

// Tools is the tool registry
type Tools struct {
	catalog  catalog[Tool]
	observer Observer
}

func NewTools() *Tools {
	return &Tools{catalog: newCatalog[Tool]("tool")}
}

// Observe sets the invocation observer; call before serving
func (r *Tools) Observe(o Observer) {
	r.observer = o
}

func (r *Tools) Register(t Tool) error {
	if t.invoke == nil {
		return fmt.Errorf("tool %s has no handler", t.Name)
	}
	return r.catalog.register(t.Name, t)
}

// MustRegister registers every tool, panicking on the first error
func (r *Tools) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

func (r *Tools) Get(name string) (Tool, bool) {
	return r.catalog.get(name)
}

// List returns tools in registration order
func (r *Tools) List() []Tool {
	return r.catalog.list()
}

// Invoke runs the named tool
func (r *Tools) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	t, ok := r.catalog.get(name)
	if !ok {
		return nil, fmt.Errorf("tool %q: %w", name, ErrNotRegistered)
	}

	start := time.Now()
	out, err := t.Invoke(ctx, args)
	if r.observer != nil {
		r.observer("tool", name, err, time.Since(start))
	}
	return out, err
}

// Component is a named widget rendered from validated props
type Component struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	PropsSchema *Schema      `json:"propsSchema"`
	Actions     []ActionInfo `json:"actions,omitempty"`

	render  func(ctx context.Context, props json.RawMessage) (ui.Node, error)
	actions map[string]func(ctx context.Context, props, args json.RawMessage) (ui.Node, error)
}

// ActionInfo describes one write-back a component accepts
type ActionInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ArgsSchema  *Schema `json:"argsSchema"`
}

type componentSpec[P any] struct {
	actions []actionSpec[P]
}

type actionSpec[P any] struct {
	info ActionInfo
	run  func(ctx context.Context, props *P, args json.RawMessage) error
}

// ComponentOption customises a component built by NewComponent
type ComponentOption[P any] func(*componentSpec[P])

// WithAction attaches a write-back. After fn succeeds the component is
// rendered again with the props fn was given, including any changes fn made
// to them.
func WithAction[P, A any](name, description string, fn func(ctx context.Context, props *P, args A) error) ComponentOption[P] {
	return func(spec *componentSpec[P]) {
		spec.actions = append(spec.actions, actionSpec[P]{
			info: ActionInfo{Name: name, Description: description, ArgsSchema: SchemaFor[A]()},
			run: func(ctx context.Context, props *P, raw json.RawMessage) error {
				args, err := decode[A](raw)
				if err != nil {
					return &ValidationError{Kind: "action", Name: name, Err: err}
				}
				return fn(ctx, props, args)
			},
		})
	}
}

// NewComponent builds a component whose props schema is reflected from P
func NewComponent[P any](name, description string, render func(ctx context.Context, props P) (ui.Node, error), opts ...ComponentOption[P]) Component {
	var spec componentSpec[P]
	for _, opt := range opts {
		opt(&spec)
	}

	decodeProps := func(raw json.RawMessage) (P, error) {
		props, err := decode[P](raw)
		if err != nil {
			return props, &ValidationError{Kind: "component", Name: name, Err: err}
		}
		return props, nil
	}

	c := Component{
		Name:        name,
		Description: description,
		PropsSchema: SchemaFor[P](),
		render: func(ctx context.Context, raw json.RawMessage) (ui.Node, error) {
			props, err := decodeProps(raw)
			if err != nil {
				return ui.Node{}, err
			}
			return render(ctx, props)
		},
		actions: make(map[string]func(ctx context.Context, props, args json.RawMessage) (ui.Node, error)),
	}

	for _, a := range spec.actions {
		a := a
		c.Actions = append(c.Actions, a.info)
		c.actions[a.info.Name] = func(ctx context.Context, rawProps, rawArgs json.RawMessage) (ui.Node, error) {
			props, err := decodeProps(rawProps)
			if err != nil {
				return ui.Node{}, err
			}
			if err := a.run(ctx, &props, rawArgs); err != nil {
				return ui.Node{}, err
			}
			return render(ctx, props)
		}
	}
	return c
}

// Render validates props and renders the component
func (c Component) Render(ctx context.Context, props json.RawMessage) (ui.Node, error) {
	if c.render == nil {
		return ui.Node{}, fmt.Errorf("component %q has no renderer", c.Name)
	}
	return c.render(ctx, props)
}

// Act runs a named action and returns the refreshed render
func (c Component) Act(ctx context.Context, action string, props, args json.RawMessage) (ui.Node, error) {
	run, ok := c.actions[action]
	if !ok {
		return ui.Node{}, fmt.Errorf("action %q of component %q: %w", action, c.Name, ErrNotRegistered)
	}
	return run(ctx, props, args)
}

// Components is the component registry
type Components struct {
	catalog  catalog[Component]
	observer Observer
}

func NewComponents() *Components {
	return &Components{catalog: newCatalog[Component]("component")}
}

// Observe sets the invocation observer; call before serving
func (r *Components) Observe(o Observer) {
	r.observer = o
}

func (r *Components) Register(c Component) error {
	if c.render == nil {
		return fmt.Errorf("component %s has no renderer", c.Name)
	}
	return r.catalog.register(c.Name, c)
}

func (r *Components) MustRegister(components ...Component) {
	for _, c := range components {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

func (r *Components) Get(name string) (Component, bool) {
	return r.catalog.get(name)
}

func (r *Components) List() []Component {
	return r.catalog.list()
}

// Render renders the named component
func (r *Components) Render(ctx context.Context, name string, props json.RawMessage) (ui.Node, error) {
	c, ok := r.catalog.get(name)
	if !ok {
		return ui.Node{}, fmt.Errorf("component %q: %w", name, ErrNotRegistered)
	}

	start := time.Now()
	node, err := c.Render(ctx, props)
	r.observe("component", name, err, start)
	return node, err
}

// Act runs an action of the named component
func (r *Components) Act(ctx context.Context, name, action string, props, args json.RawMessage) (ui.Node, error) {
	c, ok := r.catalog.get(name)
	if !ok {
		return ui.Node{}, fmt.Errorf("component %q: %w", name, ErrNotRegistered)
	}

	start := time.Now()
	node, err := c.Act(ctx, action, props, args)
	r.observe("action", name+"/"+action, err, start)
	return node, err
}

func (r *Components) observe(kind, name string, err error, start time.Time) {
	if r.observer != nil {
		r.observer(kind, name, err, time.Since(start))
	}
}
