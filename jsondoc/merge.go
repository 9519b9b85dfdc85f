/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package jsondoc

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Merge combines overlay into base without mutating either. Objects
// merge key by key, recursing into members present on both sides;
// arrays and scalars from the overlay replace the base wholesale.
// Base keys keep their positions; new overlay keys append in overlay
// order.
func Merge(base, overlay *Value) *Value {
	if overlay == nil {
		return base.Clone()
	}
	if base == nil {
		return overlay.Clone()
	}
	if base.Kind() != Object || overlay.Kind() != Object {
		return overlay.Clone()
	}
	out := base.Clone()
	for _, key := range overlay.keys {
		if existing := out.Get(key); existing != nil {
			out.Set(key, Merge(existing, overlay.vals[key]))
		} else {
			out.Set(key, overlay.vals[key].Clone())
		}
	}
	return out
}

// MapStrings returns a copy of the document with fn applied to every
// string value, including strings inside arrays and nested objects.
// Object keys are not transformed.
func (v *Value) MapStrings(fn func(string) string) *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case String:
		return NewString(fn(v.str))
	case Array:
		out := NewArray()
		for _, item := range v.arr {
			out.Append(item.MapStrings(fn))
		}
		return out
	case Object:
		out := NewObject()
		for _, key := range v.keys {
			out.Set(key, v.vals[key].MapStrings(fn))
		}
		return out
	}
	return v.Clone()
}

// FromAny converts decoded configuration data (as produced by viper
// and yaml unmarshalling) into a document value. Map keys are sorted
// so the result is deterministic regardless of map iteration order.
func FromAny(x any) (*Value, error) {
	switch t := x.(type) {
	case nil:
		return NewNull(), nil
	case *Value:
		return t.Clone(), nil
	case bool:
		return NewBool(t), nil
	case string:
		return NewString(t), nil
	case json.Number:
		return NewNumber(string(t)), nil
	case int:
		return NewNumber(strconv.Itoa(t)), nil
	case int64:
		return NewNumber(strconv.FormatInt(t, 10)), nil
	case uint64:
		return NewNumber(strconv.FormatUint(t, 10)), nil
	case float64:
		return NewNumber(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case []string:
		arr := NewArray()
		for _, item := range t {
			arr.Append(NewString(item))
		}
		return arr, nil
	case []any:
		arr := NewArray()
		for _, item := range t {
			val, err := FromAny(item)
			if err != nil {
				return nil, err
			}
			arr.Append(val)
		}
		return arr, nil
	case map[string]any:
		obj := NewObject()
		for _, key := range slices.Sorted(maps.Keys(t)) {
			val, err := FromAny(t[key])
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported template value type %T", x)
}
