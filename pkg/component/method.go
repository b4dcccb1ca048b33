package component

import (
	"context"
	"fmt"
	"reflect"

	"github.com/pkg/errors"

	"github.com/askiada/go-typed-pipeline/pkg/schema"
)

// RunFunc is the calling convention used by the pipeline for every entrypoint.
type RunFunc func(ctx context.Context, inputs map[string]any) (any, error)

// Method is an execution entrypoint of a component.
type Method struct {
	name        string
	returnType  reflect.Type
	inputType   reflect.Type
	outputTypes OutputSockets
	fn          RunFunc
}

// NewMethod creates an entrypoint. A nil returnType means the method returns a mapping
// and declares no return contract.
func NewMethod(name string, returnType reflect.Type, fn RunFunc) *Method {
	return &Method{
		name:       name,
		returnType: returnType,
		fn:         fn,
	}
}

// Name returns the method name.
func (m *Method) Name() string {
	return m.name
}

// ReturnType returns the declared return contract, nil when unspecified.
func (m *Method) ReturnType() reflect.Type {
	return m.returnType
}

// Call invokes the entrypoint.
func (m *Method) Call(ctx context.Context, inputs map[string]any) (any, error) {
	return m.fn(ctx, inputs)
}

// OutputTypesCache returns the output types attached to the method, if any.
func (m *Method) OutputTypesCache() OutputSockets {
	return m.outputTypes
}

// SetOutputTypesCache attaches output types to the method. They are used as the
// output contract of a component whose method declares no return contract.
func (m *Method) SetOutputTypesCache(sockets OutputSockets) {
	m.outputTypes = sockets
}

// InputSockets derives input sockets from the model the method takes as input.
func (m *Method) InputSockets() InputSockets {
	if m.inputType == nil {
		return InputSockets{}
	}
	fields, err := schema.Fields(m.inputType)
	if err != nil {
		return InputSockets{}
	}
	in := make(InputSockets, len(fields))
	for _, f := range fields {
		s := &InputSocket{Name: f.Name, Type: f.Type}
		if f.Optional {
			s.HasDefault = true
			s.Default = reflect.Zero(f.Type).Interface()
		}
		in[f.Name] = s
	}

	return in
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	mappingType = reflect.TypeOf(map[string]any(nil))
)

// FromValue reflects the method called name on v. It returns nil when v has no such method.
//
// Supported signatures are
//
//	func(ctx context.Context) (R, error)
//	func(ctx context.Context, in I) (R, error)
//
// where I is a schema model or map[string]any. When R is map[string]any the
// method declares no return contract.
func FromValue(v any, name string) (*Method, error) {
	if v == nil {
		return nil, nil
	}
	mv := reflect.ValueOf(v).MethodByName(name)
	if !mv.IsValid() {
		return nil, nil
	}
	component := fmt.Sprintf("%T", v)
	mt := mv.Type()

	if mt.NumIn() < 1 || mt.NumIn() > 2 || mt.In(0) != contextType {
		return nil, newContractError(component, ErrInvalidSignature, "%s must take a context and at most one input, got %v", name, mt)
	}
	if mt.NumOut() != 2 || mt.Out(1) != errorType {
		return nil, newContractError(component, ErrInvalidSignature, "%s must return a value and an error, got %v", name, mt)
	}

	var (
		inputType  reflect.Type
		mappingIn  bool
		returnType = mt.Out(0)
	)
	if mt.NumIn() == 2 {
		switch in := mt.In(1); {
		case in == mappingType:
			mappingIn = true
		case schema.IsModel(in):
			inputType = in
		default:
			return nil, newContractError(component, ErrInvalidSignature, "%s input must be a schema model or map[string]any, got %v", name, in)
		}
	}
	if returnType == mappingType {
		returnType = nil
	}

	fn := func(ctx context.Context, inputs map[string]any) (any, error) {
		args := []reflect.Value{reflect.ValueOf(&ctx).Elem()}
		switch {
		case inputType != nil:
			in, err := schema.Decode(inputType, inputs)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid inputs for %s.%s", component, name)
			}
			args = append(args, in)
		case mappingIn:
			if inputs == nil {
				inputs = map[string]any{}
			}
			args = append(args, reflect.ValueOf(inputs))
		}

		out := mv.Call(args)
		if errV := out[1]; !errV.IsNil() {
			return nil, errV.Interface().(error)
		}

		return out[0].Interface(), nil
	}

	m := NewMethod(name, returnType, fn)
	m.inputType = inputType

	return m, nil
}
