package component

import (
	"github.com/askiada/go-typed-pipeline/pkg/schema"
)

// OutputTypesLookup returns the output types attached to an entrypoint.
type OutputTypesLookup func(m *Method) OutputSockets

// CachedOutputTypes reads the cache set with Method.SetOutputTypesCache.
func CachedOutputTypes(m *Method) OutputSockets {
	if m == nil {
		return nil
	}

	return m.OutputTypesCache()
}

// Deriver computes the output contract of a component.
type Deriver struct {
	// Lookup finds the fallback output types of an entrypoint.
	// CachedOutputTypes is used when nil.
	Lookup OutputTypesLookup
}

// DefaultDeriver is used by components created without WithDeriver.
var DefaultDeriver = Deriver{Lookup: CachedOutputTypes}

// Derive returns the output sockets of c.
//
// A schema model returned by Run gives one socket per model field. When Run returns a
// mapping, the output types attached to Run are used instead; if RunAsync exists its
// output types must match. Any other return type is rejected.
func (d Deriver) Derive(c *Component) (OutputSockets, error) {
	run := c.Run()
	if run == nil {
		return nil, newContractError(c.Name(), ErrMissingRun, "")
	}

	returnType := run.ReturnType()
	switch {
	case returnType == nil:
		lookup := d.Lookup
		if lookup == nil {
			lookup = CachedOutputTypes
		}
		runTypes := lookup(run)
		if runAsync := c.RunAsync(); runAsync != nil {
			asyncTypes := lookup(runAsync)
			if !runTypes.Equal(asyncTypes) {
				return nil, newContractError(c.Name(), ErrOutputMismatch, "run declares %v, run async declares %v", runTypes.Names(), asyncTypes.Names())
			}
		}
		// the cache may be shared by every value of the same type
		outputs := runTypes.Clone()
		if outputs == nil {
			outputs = OutputSockets{}
		}

		return outputs, nil
	case schema.IsModel(returnType):
		fields, err := schema.Fields(returnType)
		if err != nil {
			return nil, newContractError(c.Name(), ErrInvalidReturnType, "%s", err)
		}
		outputs := make(OutputSockets, len(fields))
		for _, f := range fields {
			outputs[f.Name] = &OutputSocket{Name: f.Name, Type: f.Type}
		}

		return outputs, nil
	default:
		return nil, newContractError(c.Name(), ErrInvalidReturnType, "got %v", returnType)
	}
}
