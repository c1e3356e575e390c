package container

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ClassKey is the definition element naming the binding to build.
const ClassKey = "__class"

// ErrInvalidConfig is matched by every *InvalidConfigError via errors.Is.
var ErrInvalidConfig = errors.New("container: invalid configuration")

// InvalidConfigError reports an object configuration CreateObject cannot use.
type InvalidConfigError struct {
	Message string
}

func (e *InvalidConfigError) Error() string { return e.Message }

func (e *InvalidConfigError) Is(target error) bool { return target == ErrInvalidConfig }

func invalidConfig(format string, args ...any) error {
	return &InvalidConfigError{Message: fmt.Sprintf(format, args...)}
}

// Definition describes an object: "__class" names a binding, every other key
// is written to the exported field of the same name (case-insensitive).
//
//	container.Definition{"__class": "singer", "firstName": "John"}
type Definition map[string]any

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// CreateObject builds an object from config.
//
//	// id of a binding
//	obj, err := c.CreateObject("singer")
//
//	// definition: a new value is built from the bound factory (never a
//	// cached singleton), then configured
//	obj, err := c.CreateObject(container.Definition{"__class": "singer", "firstName": "John"})
//
//	// callable: params fill arguments in order; arguments they cannot fill
//	// are resolved by type from the container
//	obj, err := c.CreateObject(func(s *Singer, a string) bool { return a == "a" }, "a")
func (c *Container) CreateObject(config any, params ...any) (any, error) {
	switch cfg := config.(type) {
	case string:
		return c.Get(cfg)
	case Definition:
		return c.createFromDefinition(cfg)
	case map[string]any:
		return c.createFromDefinition(Definition(cfg))
	case nil:
		return nil, invalidConfig("Unsupported configuration type: NULL")
	}

	if fn := reflect.ValueOf(config); fn.Kind() == reflect.Func {
		if fn.IsNil() {
			return nil, invalidConfig("Unsupported configuration type: nil %T", config)
		}
		return c.Invoke(config, params...)
	}
	return nil, invalidConfig("Unsupported configuration type: %T", config)
}

func (c *Container) createFromDefinition(def Definition) (any, error) {
	raw, ok := def[ClassKey]
	if !ok {
		return nil, invalidConfig(`Object configuration array must contain a "__class" element.`)
	}
	class, ok := raw.(string)
	if !ok || class == "" {
		return nil, invalidConfig("Object configuration %q element must be a non-empty string, got %T", ClassKey, raw)
	}

	obj, err := c.build(class)
	if err != nil {
		return nil, err
	}
	if err := Configure(obj, def); err != nil {
		return nil, err
	}
	return obj, nil
}

// Configure writes every non "__class" key of props into the exported field
// of obj with the same name. obj must be a pointer to a struct.
func Configure(obj any, props map[string]any) error {
	n := len(props)
	if _, ok := props[ClassKey]; ok {
		n--
	}
	if n == 0 {
		return nil
	}

	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return invalidConfig("Cannot configure %T: not a pointer to a struct", obj)
	}
	s := v.Elem()

	for name, value := range props {
		if name == ClassKey {
			continue
		}
		field := s.FieldByNameFunc(func(f string) bool { return strings.EqualFold(f, name) })
		if !field.IsValid() || !field.CanSet() {
			return invalidConfig("Setting unknown property: %s::%s", s.Type().Name(), name)
		}
		if err := assign(field, value); err != nil {
			return invalidConfig("Setting property %s::%s: %v", s.Type().Name(), name, err)
		}
	}
	return nil
}

func assign(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.Type().AssignableTo(field.Type()):
		field.Set(rv)
	case rv.Type().ConvertibleTo(field.Type()) && rv.Kind() != reflect.String && field.Kind() != reflect.String:
		field.Set(rv.Convert(field.Type()))
	case rv.Kind() == reflect.String && field.Kind() == reflect.String:
		field.SetString(rv.String())
	default:
		return fmt.Errorf("cannot use %T as %s", value, field.Type())
	}
	return nil
}

// Invoke calls fn, filling its arguments from params and the container.
//
// Arguments are filled left to right: the next param is used when it is
// assignable to the argument type, otherwise the argument is resolved by
// TypeKey. A variadic tail receives the params that are left. If fn returns
// a trailing error it is returned; the first result, if any, is the value.
func (c *Container) Invoke(fn any, params ...any) (any, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, invalidConfig("Invoke: %T is not a function", fn)
	}
	if fv.IsNil() {
		return nil, invalidConfig("Invoke: nil %T", fn)
	}
	ft := fv.Type()

	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
	}

	args := make([]reflect.Value, 0, ft.NumIn())
	next := 0
	for i := 0; i < fixed; i++ {
		in := ft.In(i)
		if next < len(params) && fits(params[next], in) {
			args = append(args, valueFor(params[next], in))
			next++
			continue
		}
		dep, err := c.resolveArg(in)
		if err != nil {
			return nil, fmt.Errorf("container: argument %d of %s: %w", i, ft, err)
		}
		args = append(args, dep)
	}

	if ft.IsVariadic() {
		elem := ft.In(fixed).Elem()
		for ; next < len(params); next++ {
			if !fits(params[next], elem) {
				return nil, invalidConfig("Invoke: parameter %d (%T) does not fit %s", next, params[next], elem)
			}
			args = append(args, valueFor(params[next], elem))
		}
	} else if next < len(params) {
		return nil, invalidConfig("Invoke: %d unused parameter(s) for %s", len(params)-next, ft)
	}

	out := fv.Call(args)
	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if errv := out[n-1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

func (c *Container) resolveArg(t reflect.Type) (reflect.Value, error) {
	inst, err := c.Get(typeKey(t))
	if err != nil {
		return reflect.Value{}, err
	}
	if fits(inst, t) {
		return valueFor(inst, t), nil
	}
	// *T bound, T wanted
	if rv := reflect.ValueOf(inst); rv.Kind() == reflect.Ptr && rv.Elem().Type() == t {
		return rv.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("%s resolved to %T", t, inst)
}

func fits(v any, t reflect.Type) bool {
	if v == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return true
		}
		return false
	}
	return reflect.TypeOf(v).AssignableTo(t)
}

func valueFor(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != t {
		nv := reflect.New(t).Elem()
		nv.Set(rv)
		return nv
	}
	return rv
}
