// Package ui defines the serializable widget tree a component render
// produces. The dispatch host's rendering engine decides how each kind looks.
package ui

// Node kinds
const (
	KindPanel    = "panel"
	KindHeading  = "heading"
	KindText     = "text"
	KindBadge    = "badge"
	KindList     = "list"
	KindItem     = "item"
	KindGrid     = "grid"
	KindColumn   = "column"
	KindStat     = "stat"
	KindProgress = "progress"
	KindChart    = "chart"
	KindEmpty    = "empty"
	KindTimer    = "timer"
	KindCard     = "card"
)

// Node is one element of a rendered component
type Node struct {
	Kind     string         `json:"kind" yaml:"kind"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Attrs    map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children []Node         `json:"children,omitempty" yaml:"children,omitempty"`
	Actions  []Action       `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Action is a write-back the host can invoke on the owning component
type Action struct {
	Name  string         `json:"name" yaml:"name"`
	Label string         `json:"label,omitempty" yaml:"label,omitempty"`
	Args  map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
}

func Panel(title string, children ...Node) Node {
	return Node{Kind: KindPanel, Text: title, Children: children}
}

func Heading(text string) Node {
	return Node{Kind: KindHeading, Text: text}
}

func Text(text string) Node {
	return Node{Kind: KindText, Text: text}
}

// Badge is a short label; tone hints at its colour (e.g. "high", "done")
func Badge(text, tone string) Node {
	return Node{Kind: KindBadge, Text: text, Attrs: map[string]any{"tone": tone}}
}

func List(children ...Node) Node {
	return Node{Kind: KindList, Children: children}
}

func Item(text string, children ...Node) Node {
	return Node{Kind: KindItem, Text: text, Children: children}
}

func Grid(columns int, children ...Node) Node {
	return Node{Kind: KindGrid, Attrs: map[string]any{"columns": columns}, Children: children}
}

func Column(title string, children ...Node) Node {
	return Node{Kind: KindColumn, Text: title, Children: children}
}

func Card(title string, children ...Node) Node {
	return Node{Kind: KindCard, Text: title, Children: children}
}

func Stat(label string, value any) Node {
	return Node{Kind: KindStat, Text: label, Attrs: map[string]any{"value": value}}
}

// Progress is a bar; percent is clamped to [0, 100]
func Progress(label string, percent int) Node {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return Node{Kind: KindProgress, Text: label, Attrs: map[string]any{"percent": percent}}
}

// Empty is the placeholder shown when a filtered view has nothing to show
func Empty(message, hint string) Node {
	n := Node{Kind: KindEmpty, Text: message}
	if hint != "" {
		n.Attrs = map[string]any{"hint": hint}
	}
	return n
}

// WithAttr returns n with one more attribute
func (n Node) WithAttr(key string, value any) Node {
	attrs := make(map[string]any, len(n.Attrs)+1)
	for k, v := range n.Attrs {
		attrs[k] = v
	}
	attrs[key] = value
	n.Attrs = attrs
	return n
}

// WithActions returns n with the given actions appended
func (n Node) WithActions(actions ...Action) Node {
	n.Actions = append(append([]Action(nil), n.Actions...), actions...)
	return n
}

// Append returns n with more children
func (n Node) Append(children ...Node) Node {
	n.Children = append(append([]Node(nil), n.Children...), children...)
	return n
}

// Find returns the first node in depth-first order matching pred
func (n Node) Find(pred func(Node) bool) (Node, bool) {
	if pred(n) {
		return n, true
	}
	for _, c := range n.Children {
		if found, ok := c.Find(pred); ok {
			return found, true
		}
	}
	return Node{}, false
}

// FindAll returns every node in depth-first order matching pred
func (n Node) FindAll(pred func(Node) bool) []Node {
	var out []Node
	if pred(n) {
		out = append(out, n)
	}
	for _, c := range n.Children {
		out = append(out, c.FindAll(pred)...)
	}
	return out
}

// OfKind matches nodes by kind, for use with Find and FindAll
func OfKind(kind string) func(Node) bool {
	return func(n Node) bool { return n.Kind == kind }
}
