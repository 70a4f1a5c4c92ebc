package rencode

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// maxAdaptDepth stops runaway recursion on cyclic graphs.
const maxAdaptDepth = 10000

var (
	valueType  = reflect.TypeOf((*Value)(nil)).Elem()
	bigIntType = reflect.TypeOf(big.Int{})
)

// Marshal converts x with ValueOf and encodes the result.
func Marshal(x any) ([]byte, error) {
	v, err := ValueOf(x)
	if err != nil {
		return nil, err
	}
	return Encode(v)
}

// ValueOf converts a Go value into a Value tree.
//
// nil, bool, every integer and float type, string, []byte and *big.Int map
// onto their obvious variants; Values pass through unchanged. Other
// slices and arrays become Lists, maps become Dicts with pairs sorted by
// encoded key, pointers are followed (nil becomes Null) and structs become
// Dicts keyed by field name. Struct fields honor a `rencode:"name"` tag
// with an optional ",omitempty"; the name "-" skips the field.
// Channels, functions and complex numbers fail with ErrUnsupportedType.
func ValueOf(x any) (Value, error) {
	return valueOf(x, 0)
}

func valueOf(x any, depth int) (Value, error) {
	if depth > maxAdaptDepth {
		return nil, fmt.Errorf("%w: while converting %T", ErrMaxDepth, x)
	}
	switch v := x.(type) {
	case nil:
		return Null{}, nil
	case Null, Bool, Int, BigInt, Float32, Float64, Bytes, List, Dict:
		return v.(Value), nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(v), nil
	case int8:
		return Int(v), nil
	case int16:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case uint8:
		return Int(v), nil
	case uint16:
		return Int(v), nil
	case uint32:
		return Int(v), nil
	case uint:
		return fromUint(uint64(v)), nil
	case uint64:
		return fromUint(v), nil
	case float32:
		return Float32(v), nil
	case float64:
		return Float64(v), nil
	case string:
		return Bytes(v), nil
	case []byte:
		return Bytes(v), nil
	case *big.Int:
		if v == nil {
			return Null{}, nil
		}
		return NewBigInt(v), nil
	case []any:
		out := make(List, len(v))
		for i, elem := range v {
			ev, err := valueOf(elem, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Dict, 0, len(v))
		for _, k := range keys {
			ev, err := valueOf(v[k], depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, Pair{Key: Bytes(k), Value: ev})
		}
		return out, nil
	}
	return valueOfReflect(reflect.ValueOf(x), depth)
}

func fromUint(n uint64) Value {
	if n > math.MaxInt64 {
		return BigInt{new(big.Int).SetUint64(n)}
	}
	return Int(n)
}

func valueOfReflect(rv reflect.Value, depth int) (Value, error) {
	if depth > maxAdaptDepth {
		return nil, fmt.Errorf("%w: while converting %s", ErrMaxDepth, rv.Type())
	}
	if !rv.IsValid() {
		return Null{}, nil
	}
	if k := rv.Kind(); k != reflect.Interface && k != reflect.Pointer && rv.Type().Implements(valueType) {
		return rv.Interface().(Value), nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		if rv.Type() == reflect.PointerTo(bigIntType) {
			return NewBigInt(rv.Interface().(*big.Int)), nil
		}
		return valueOfReflect(rv.Elem(), depth+1)
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fromUint(rv.Uint()), nil
	case reflect.Float32:
		return Float32(rv.Float()), nil
	case reflect.Float64:
		return Float64(rv.Float()), nil
	case reflect.String:
		return Bytes(rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(rv.Bytes()), nil
		}
		return listOfReflect(rv, depth)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			out := make(Bytes, rv.Len())
			for i := range out {
				out[i] = byte(rv.Index(i).Uint())
			}
			return out, nil
		}
		return listOfReflect(rv, depth)
	case reflect.Map:
		return dictOfMap(rv, depth)
	case reflect.Struct:
		if rv.Type() == bigIntType {
			x := new(big.Int)
			if rv.CanAddr() {
				x.Set(rv.Addr().Interface().(*big.Int))
			} else {
				cp := reflect.New(bigIntType)
				cp.Elem().Set(rv)
				x.Set(cp.Interface().(*big.Int))
			}
			return NewBigInt(x), nil
		}
		return dictOfStruct(rv, depth)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type())
}

func listOfReflect(rv reflect.Value, depth int) (Value, error) {
	out := make(List, rv.Len())
	for i := range out {
		ev, err := valueOfReflect(rv.Index(i), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}

// dictOfMap sorts pairs by encoded key so that equal maps encode to
// equal bytes.
func dictOfMap(rv reflect.Value, depth int) (Value, error) {
	type sortable struct {
		enc []byte
		p   Pair
	}
	items := make([]sortable, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := valueOfReflect(iter.Key(), depth+1)
		if err != nil {
			return nil, err
		}
		v, err := valueOfReflect(iter.Value(), depth+1)
		if err != nil {
			return nil, err
		}
		enc, err := Encode(k)
		if err != nil {
			return nil, err
		}
		items = append(items, sortable{enc: enc, p: Pair{Key: k, Value: v}})
	}
	sort.Slice(items, func(i, j int) bool { return bytes.Compare(items[i].enc, items[j].enc) < 0 })
	out := make(Dict, len(items))
	for i, it := range items {
		out[i] = it.p
	}
	return out, nil
}

func dictOfStruct(rv reflect.Value, depth int) (Value, error) {
	plan := plans.get(rv.Type())
	out := make(Dict, 0, len(plan.fields))
	for _, f := range plan.fields {
		fv := rv.Field(f.idx)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		v, err := valueOfReflect(fv, depth+1)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		out = append(out, Pair{Key: Bytes(f.name), Value: v})
	}
	return out, nil
}

// structPlan lists the exported fields of a struct type in declaration
// order along with their wire names.
type structPlan struct {
	fields []fieldInfo
	byName map[string]int
}

type fieldInfo struct {
	idx       int
	name      string
	omitEmpty bool
}

type planCache struct {
	mu   sync.RWMutex
	plan map[reflect.Type]*structPlan
}

var plans = &planCache{plan: make(map[reflect.Type]*structPlan)}

func (c *planCache) get(t reflect.Type) *structPlan {
	c.mu.RLock()
	if p, ok := c.plan[t]; ok {
		c.mu.RUnlock()
		return p
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check
	if p, ok := c.plan[t]; ok {
		return p
	}

	p := &structPlan{byName: make(map[string]int)}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue // skip unexported
		}
		name := sf.Name
		omit := false
		if tag, ok := sf.Tag.Lookup("rencode"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" && len(parts) == 1 {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omit = true
				}
			}
		}
		p.byName[name] = len(p.fields)
		p.fields = append(p.fields, fieldInfo{idx: i, name: name, omitEmpty: omit})
	}
	c.plan[t] = p
	return p
}
