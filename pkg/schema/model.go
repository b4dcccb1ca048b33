package schema

import (
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Field is a named, typed slot of a model.
type Field struct {
	Name     string
	Type     reflect.Type
	Index    []int
	Optional bool
}

var (
	fieldCache sync.Map // reflect.Type -> []Field
	validate   = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _ := jsonName(fld)
		return name
	})

	return v
}

// IsModel reports whether t is a struct or a pointer to a struct.
func IsModel(t reflect.Type) bool {
	_, _, ok := structType(t)
	return ok
}

func structType(t reflect.Type) (reflect.Type, bool, bool) {
	if t == nil {
		return nil, false, false
	}
	if t.Kind() == reflect.Ptr {
		return t.Elem(), true, t.Elem().Kind() == reflect.Struct
	}

	return t, false, t.Kind() == reflect.Struct
}

// jsonName returns the model name of a struct field and whether omitempty is set.
// The name is empty when the field is excluded with "-".
func jsonName(fld reflect.StructField) (string, bool) {
	tag, ok := fld.Tag.Lookup("json")
	if !ok {
		return fld.Name, false
	}
	if tag == "-" {
		return "", false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = fld.Name
	}

	return name, strings.Contains(","+opts+",", ",omitempty,")
}

// Fields lists the fields of a model in declaration order.
// Embedded structs without a json name are flattened, as encoding/json does.
func Fields(t reflect.Type) ([]Field, error) {
	st, _, ok := structType(t)
	if !ok {
		return nil, errors.Wrapf(ErrNotModel, "%v", t)
	}
	if cached, ok := fieldCache.Load(st); ok {
		return cached.([]Field), nil
	}
	fields := collectFields(st, nil)
	fieldCache.Store(st, fields)

	return fields, nil
}

func collectFields(st reflect.Type, parent []int) []Field {
	var fields []Field
	for i := 0; i < st.NumField(); i++ {
		fld := st.Field(i)
		index := append(append([]int{}, parent...), i)
		if fld.Anonymous && fld.Type.Kind() == reflect.Struct {
			if _, tagged := fld.Tag.Lookup("json"); !tagged {
				fields = append(fields, collectFields(fld.Type, index)...)
				continue
			}
		}
		if !fld.IsExported() {
			continue
		}
		name, optional := jsonName(fld)
		if name == "" {
			continue
		}
		fields = append(fields, Field{
			Name:     name,
			Type:     fld.Type,
			Index:    index,
			Optional: optional,
		})
	}

	return fields
}

// FieldNames returns the model field names in declaration order.
func FieldNames(t reflect.Type) ([]string, error) {
	fields, err := Fields(t)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	return names, nil
}

// Decode builds an instance of the model t from a mapping of field name to value.
// The returned value has type t. Extra keys in values are ignored.
func Decode(t reflect.Type, values map[string]any) (reflect.Value, error) {
	st, isPtr, ok := structType(t)
	if !ok {
		return reflect.Value{}, errors.Wrapf(ErrNotModel, "%v", t)
	}
	fields, err := Fields(st)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(st)
	verr := &ValidationError{Model: t}
	for _, f := range fields {
		raw, ok := values[f.Name]
		if !ok {
			if !f.Optional {
				verr.add(f.Name, "field required")
			}
			continue
		}
		val, ok := coerce(verr, f.Name, raw, f.Type)
		if !ok {
			continue
		}
		out.Elem().FieldByIndex(f.Index).Set(val)
	}
	if len(verr.Fields) > 0 {
		return reflect.Value{}, verr
	}

	err = validate.Struct(out.Interface())
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return reflect.Value{}, errors.Wrapf(err, "unable to validate %v", t)
		}
		for _, fe := range fieldErrs {
			verr.add(validatorPath(fe), "failed on the '%s' rule", fe.Tag())
		}

		return reflect.Value{}, verr
	}

	if isPtr {
		return out, nil
	}

	return out.Elem(), nil
}

// validatorPath drops the struct name the validator puts in front of the namespace.
func validatorPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, found := strings.Cut(ns, "."); found {
		return rest
	}

	return fe.Field()
}

// Into decodes values into a model of type T.
func Into[T any](values map[string]any) (T, error) {
	var zero T
	val, err := Decode(reflect.TypeOf((*T)(nil)).Elem(), values)
	if err != nil {
		return zero, err
	}

	return val.Interface().(T), nil
}

// Encode extracts the field values of a model instance.
func Encode(v any) (map[string]any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, ErrNilModel
	}
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, errors.Wrapf(ErrNilModel, "%v", rv.Type())
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrNotModel, "%v", rv.Type())
	}
	fields, err := Fields(rv.Type())
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Name] = rv.FieldByIndex(f.Index).Interface()
	}

	return out, nil
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// coerce converts raw into a value assignable to a field of type ft.
// Problems are recorded on verr under path.
func coerce(verr *ValidationError, path string, raw any, ft reflect.Type) (reflect.Value, bool) {
	if raw == nil {
		if nillable(ft.Kind()) {
			return reflect.Zero(ft), true
		}
		verr.add(path, "expected %v, got nil", ft)

		return reflect.Value{}, false
	}

	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(ft) {
		return rv, true
	}

	if nested, ok := raw.(map[string]any); ok && IsModel(ft) {
		val, err := Decode(ft, nested)
		if err != nil {
			var inner *ValidationError
			if errors.As(err, &inner) {
				for _, fe := range inner.Fields {
					verr.add(path+"."+fe.Field, "%s", fe.Reason)
				}
			} else {
				verr.add(path, "%s", err)
			}

			return reflect.Value{}, false
		}

		return val, true
	}

	if val, ok := convertNumber(rv, ft); ok {
		return val, true
	}

	if rv.Kind() == ft.Kind() && (ft.Kind() == reflect.String || ft.Kind() == reflect.Bool) {
		return rv.Convert(ft), true
	}

	verr.add(path, "expected %v, got %T", ft, raw)

	return reflect.Value{}, false
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// convertNumber converts between numeric kinds when the value fits the target type.
func convertNumber(rv reflect.Value, ft reflect.Type) (reflect.Value, bool) {
	src, dst := rv.Kind(), ft.Kind()
	target := reflect.New(ft).Elem()
	switch {
	case isInt(src) && isInt(dst):
		if target.OverflowInt(rv.Int()) {
			return reflect.Value{}, false
		}
	case isInt(src) && isUint(dst):
		if rv.Int() < 0 || target.OverflowUint(uint64(rv.Int())) {
			return reflect.Value{}, false
		}
	case isUint(src) && isUint(dst):
		if target.OverflowUint(rv.Uint()) {
			return reflect.Value{}, false
		}
	case isUint(src) && isInt(dst):
		if rv.Uint() > math.MaxInt64 || target.OverflowInt(int64(rv.Uint())) {
			return reflect.Value{}, false
		}
	case (isInt(src) || isUint(src)) && isFloat(dst):
	case isFloat(src) && isFloat(dst):
		if target.OverflowFloat(rv.Float()) {
			return reflect.Value{}, false
		}
	case isFloat(src) && isInt(dst):
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 || target.OverflowInt(int64(f)) {
			return reflect.Value{}, false
		}
	default:
		return reflect.Value{}, false
	}

	return rv.Convert(ft), true
}
