package component

import (
	"reflect"
	"sort"
)

// InputSocket is a named, typed input slot of a component.
type InputSocket struct {
	Name       string
	Type       reflect.Type
	Default    any
	HasDefault bool
	// Senders lists the "component.socket" addresses connected to this socket.
	Senders []string
}

// IsMandatory reports whether the socket needs a value for the component to run.
func (s *InputSocket) IsMandatory() bool {
	return !s.HasDefault
}

// OutputSocket is a named, typed output slot of a component.
type OutputSocket struct {
	Name string
	Type reflect.Type
	// Receivers lists the "component.socket" addresses this socket feeds.
	Receivers []string
}

// InputSockets maps socket names to the input sockets of one component.
type InputSockets map[string]*InputSocket

// OutputSockets maps socket names to the output sockets of one component.
// It is the output contract of a component.
type OutputSockets map[string]*OutputSocket

// OutputTypes builds an output contract from name/type pairs.
// It panics when called with an odd number of arguments or a non string name.
func OutputTypes(pairs ...any) OutputSockets {
	if len(pairs)%2 != 0 {
		panic("component: OutputTypes expects name/type pairs")
	}
	out := make(OutputSockets, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name := pairs[i].(string)
		out[name] = &OutputSocket{Name: name, Type: asType(pairs[i+1])}
	}

	return out
}

// InputTypes builds mandatory input sockets from name/type pairs.
func InputTypes(pairs ...any) InputSockets {
	if len(pairs)%2 != 0 {
		panic("component: InputTypes expects name/type pairs")
	}
	in := make(InputSockets, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name := pairs[i].(string)
		in[name] = &InputSocket{Name: name, Type: asType(pairs[i+1])}
	}

	return in
}

// asType accepts either a reflect.Type or a sample value.
func asType(v any) reflect.Type {
	if t, ok := v.(reflect.Type); ok {
		return t
	}

	return reflect.TypeOf(v)
}

// Names returns the socket names in lexical order.
func (sk OutputSockets) Names() []string {
	names := make([]string, 0, len(sk))
	for name := range sk {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Clone deep copies the sockets, so the copy can be connected on its own.
func (sk OutputSockets) Clone() OutputSockets {
	if sk == nil {
		return nil
	}
	out := make(OutputSockets, len(sk))
	for name, s := range sk {
		out[name] = &OutputSocket{
			Name:      s.Name,
			Type:      s.Type,
			Receivers: append([]string(nil), s.Receivers...),
		}
	}

	return out
}

// Equal compares socket names and types. Connections are ignored.
func (sk OutputSockets) Equal(other OutputSockets) bool {
	if len(sk) != len(other) {
		return false
	}
	for name, s := range sk {
		o, ok := other[name]
		if !ok || o.Name != s.Name || o.Type != s.Type {
			return false
		}
	}

	return true
}

// Names returns the socket names in lexical order.
func (is InputSockets) Names() []string {
	names := make([]string, 0, len(is))
	for name := range is {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Clone deep copies the sockets.
func (is InputSockets) Clone() InputSockets {
	if is == nil {
		return nil
	}
	out := make(InputSockets, len(is))
	for name, s := range is {
		out[name] = &InputSocket{
			Name:       s.Name,
			Type:       s.Type,
			Default:    s.Default,
			HasDefault: s.HasDefault,
			Senders:    append([]string(nil), s.Senders...),
		}
	}

	return out
}
