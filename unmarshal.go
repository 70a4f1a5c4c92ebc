package rencode

import (
	"fmt"
	"math/big"
	"reflect"
	"unicode/utf8"
)

// Interface converts v into plain Go values: nil, bool, int64, *big.Int,
// float32, float64, string (valid UTF-8 bytes) or []byte, []any, and
// map[string]any when every dict key is text, map[any]any otherwise.
// Dict keys that are not comparable in Go (lists, dicts, non-UTF-8 bytes)
// are keyed by their Diag-style text form.
func Interface(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case BigInt:
		return x.Int
	case Float32:
		return float32(x)
	case Float64:
		return float64(x)
	case Bytes:
		if utf8.Valid(x) {
			return string(x)
		}
		return []byte(x)
	case List:
		out := make([]any, len(x))
		for i, elem := range x {
			out[i] = Interface(elem)
		}
		return out
	case Dict:
		if textKeys(x) {
			out := make(map[string]any, len(x))
			for _, p := range x {
				out[string(p.Key.(Bytes))] = Interface(p.Value)
			}
			return out
		}
		out := make(map[any]any, len(x))
		for _, p := range x {
			out[hashableKey(p.Key)] = Interface(p.Value)
		}
		return out
	}
	return nil
}

func textKeys(d Dict) bool {
	for _, p := range d {
		b, ok := p.Key.(Bytes)
		if !ok || !utf8.Valid(b) {
			return false
		}
	}
	return true
}

func hashableKey(k Value) any {
	switch x := k.(type) {
	case Bytes:
		return string(x)
	case BigInt:
		return x.String()
	case List, Dict:
		return fmt.Sprint(Interface(k))
	}
	return Interface(k)
}

// Unmarshal decodes the first value in data and stores it in the value
// pointed to by out; see Convert.
func Unmarshal(data []byte, out any) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	return Convert(v, out)
}

// Convert stores v in the value pointed to by out. Destinations of type
// any receive Interface(v); destinations of type Value receive v itself.
// Null zeroes the destination. Integers must fit the destination width;
// Bytes fill strings and byte slices; Lists fill slices and arrays;
// Dicts fill maps and structs (matched by field name or `rencode` tag,
// unknown keys ignored).
func Convert(v Value, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrNotPointer
	}
	return setValue(rv.Elem(), v)
}

func mismatch(v Value, dst reflect.Value) error {
	kind := "null"
	if v != nil {
		kind = v.Kind().String()
	}
	return fmt.Errorf("%w: cannot store %s in %s", ErrTypeMismatch, kind, dst.Type())
}

func setValue(dst reflect.Value, v Value) error {
	if v == nil {
		v = Null{}
	}
	if dst.Type() == valueType {
		dst.Set(reflect.ValueOf(&v).Elem())
		return nil
	}
	if dst.Kind() == reflect.Interface && dst.NumMethod() == 0 {
		if iv := Interface(v); iv != nil {
			dst.Set(reflect.ValueOf(iv))
		} else {
			dst.Set(reflect.Zero(dst.Type()))
		}
		return nil
	}
	if _, ok := v.(Null); ok {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	switch dst.Kind() {
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return setValue(dst.Elem(), v)
	case reflect.Bool:
		b, ok := v.(Bool)
		if !ok {
			return mismatch(v, dst)
		}
		dst.SetBool(bool(b))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := v.(Int)
		if !ok || dst.OverflowInt(int64(n)) {
			return mismatch(v, dst)
		}
		dst.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var u uint64
		switch n := v.(type) {
		case Int:
			if n < 0 {
				return mismatch(v, dst)
			}
			u = uint64(n)
		case BigInt:
			if n.Int == nil || !n.IsUint64() {
				return mismatch(v, dst)
			}
			u = n.Uint64()
		default:
			return mismatch(v, dst)
		}
		if dst.OverflowUint(u) {
			return mismatch(v, dst)
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		switch f := v.(type) {
		case Float32:
			dst.SetFloat(float64(f))
		case Float64:
			dst.SetFloat(float64(f))
		case Int:
			dst.SetFloat(float64(f))
		default:
			return mismatch(v, dst)
		}
	case reflect.String:
		b, ok := v.(Bytes)
		if !ok {
			return mismatch(v, dst)
		}
		dst.SetString(string(b))
	case reflect.Slice:
		return setSlice(dst, v)
	case reflect.Array:
		return setArray(dst, v)
	case reflect.Map:
		return setMap(dst, v)
	case reflect.Struct:
		if dst.Type() == bigIntType {
			x, ok := bigOf(v)
			if !ok {
				return mismatch(v, dst)
			}
			dst.Addr().Interface().(*big.Int).Set(x)
			return nil
		}
		return setStruct(dst, v)
	default:
		return mismatch(v, dst)
	}
	return nil
}

func setSlice(dst reflect.Value, v Value) error {
	if dst.Type().Elem().Kind() == reflect.Uint8 {
		b, ok := v.(Bytes)
		if !ok {
			return mismatch(v, dst)
		}
		out := reflect.MakeSlice(dst.Type(), len(b), len(b))
		for i, c := range b {
			out.Index(i).SetUint(uint64(c))
		}
		dst.Set(out)
		return nil
	}
	l, ok := v.(List)
	if !ok {
		return mismatch(v, dst)
	}
	out := reflect.MakeSlice(dst.Type(), len(l), len(l))
	for i, elem := range l {
		if err := setValue(out.Index(i), elem); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	dst.Set(out)
	return nil
}

func setArray(dst reflect.Value, v Value) error {
	if dst.Type().Elem().Kind() == reflect.Uint8 {
		b, ok := v.(Bytes)
		if !ok || len(b) > dst.Len() {
			return mismatch(v, dst)
		}
		for i, c := range b {
			dst.Index(i).SetUint(uint64(c))
		}
		return nil
	}
	l, ok := v.(List)
	if !ok || len(l) > dst.Len() {
		return mismatch(v, dst)
	}
	for i, elem := range l {
		if err := setValue(dst.Index(i), elem); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return nil
}

func setMap(dst reflect.Value, v Value) error {
	d, ok := v.(Dict)
	if !ok {
		return mismatch(v, dst)
	}
	t := dst.Type()
	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(t, len(d)))
	}
	for _, p := range d {
		key := reflect.New(t.Key()).Elem()
		if err := setValue(key, p.Key); err != nil {
			return fmt.Errorf("map key: %w", err)
		}
		if !key.Comparable() {
			return fmt.Errorf("%w: map key of type %s", ErrTypeMismatch, t.Key())
		}
		elem := reflect.New(t.Elem()).Elem()
		if err := setValue(elem, p.Value); err != nil {
			return fmt.Errorf("map value: %w", err)
		}
		dst.SetMapIndex(key, elem)
	}
	return nil
}

func setStruct(dst reflect.Value, v Value) error {
	d, ok := v.(Dict)
	if !ok {
		return mismatch(v, dst)
	}
	plan := plans.get(dst.Type())
	for _, p := range d {
		name, ok := p.Key.(Bytes)
		if !ok {
			continue
		}
		i, ok := plan.byName[string(name)]
		if !ok {
			continue
		}
		f := plan.fields[i]
		if err := setValue(dst.Field(f.idx), p.Value); err != nil {
			return fmt.Errorf("field %s: %w", f.name, err)
		}
	}
	return nil
}
