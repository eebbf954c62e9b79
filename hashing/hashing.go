// Package hashing computes structural hashes of CSDL model values. Two values hash
// equal when their semantic content is equal, ignoring where they were declared.
package hashing

import (
	"fmt"
	"hash/fnv"
	"iter"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Hash returns a 16 character hex FNV-1a hash of the structural content of v.
func Hash(v any) string {
	hasher := fnv.New64a()
	hashableStr := toHashableString(v)
	_, _ = hasher.Write([]byte(hashableStr))
	return formatHash(hasher.Sum64())
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b any) bool {
	return toHashableString(a) == toHashableString(b)
}

// formatHash converts a uint64 hash to a zero-padded 16-character hex string
// without the allocation overhead of fmt.Sprintf.
func formatHash(h uint64) string {
	const hexDigits = "0123456789abcdef"
	var buf [16]byte
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[h&0xf]
		h >>= 4
	}
	return string(buf[:])
}

// sequencedMap is satisfied by sequencedmap.Map without importing it.
type sequencedMap interface {
	KeysAny() iter.Seq[any]
	GetAny(key any) (any, bool)
}

// ignoredFields carry declaration metadata rather than content.
var ignoredFields = map[string]struct{}{
	"Source": {},
}

func toHashableString(v any) string {
	if v == nil {
		return ""
	}

	var builder strings.Builder

	typ := reflect.TypeOf(v)
	switch typ.Kind() {
	case reflect.Slice, reflect.Array:
		sliceVal := reflect.ValueOf(v)

		if typ.Kind() == reflect.Slice && sliceVal.IsNil() {
			return ""
		}

		builder.WriteString("[")
		for i := 0; i < sliceVal.Len(); i++ {
			if i > 0 {
				builder.WriteString(",")
			}
			builder.WriteString(toHashableString(sliceVal.Index(i).Interface()))
		}
		builder.WriteString("]")
	case reflect.Map:
		mapVal := reflect.ValueOf(v)

		if mapVal.IsNil() {
			return ""
		}

		mapKeys := mapVal.MapKeys()
		// Sort keys for deterministic output
		slices.SortFunc(mapKeys, func(a, b reflect.Value) int {
			return strings.Compare(toHashableString(a.Interface()), toHashableString(b.Interface()))
		})

		builder.WriteString("{")
		for _, key := range mapKeys {
			builder.WriteString(toHashableString(key.Interface()))
			builder.WriteString(":")
			builder.WriteString(toHashableString(mapVal.MapIndex(key).Interface()))
			builder.WriteString(";")
		}
		builder.WriteString("}")
	case reflect.Struct:
		builder.WriteString(structToHashableString(v))
	case reflect.String:
		builder.WriteString(strconv.Quote(reflect.ValueOf(v).String()))
	case reflect.Ptr, reflect.Interface:
		val := reflect.ValueOf(v)
		if val.IsNil() {
			return ""
		}

		if sm, ok := v.(sequencedMap); ok {
			builder.WriteString(sequencedMapToHashableString(sm))
		} else {
			builder.WriteString(toHashableString(val.Elem().Interface()))
		}
	default:
		switch v := v.(type) {
		case int:
			builder.WriteString(strconv.Itoa(v))
		case int64:
			builder.WriteString(strconv.FormatInt(v, 10))
		case float64:
			builder.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			builder.WriteString(strconv.FormatBool(v))
		case uint64:
			builder.WriteString(strconv.FormatUint(v, 10))
		default:
			builder.WriteString(fmt.Sprintf("%v", v))
		}
	}

	return builder.String()
}

// structToHashableString renders exported fields as {Name=value;...}, leaving out
// zero values so that an absent field and an empty one hash alike.
func structToHashableString(v any) string {
	var builder strings.Builder
	builder.WriteString("{")

	structVal := reflect.ValueOf(v)
	structType := structVal.Type()

	for i := 0; i < structVal.NumField(); i++ {
		fieldType := structType.Field(i)
		fieldVal := structVal.Field(i)

		if !fieldType.IsExported() {
			continue
		}
		if _, ignored := ignoredFields[fieldType.Name]; ignored {
			continue
		}
		if fieldType.Tag.Get("hash") == "-" {
			continue
		}

		val := toHashableString(fieldVal.Interface())
		if val == "" || val == `""` || val == "false" || val == "[]" || val == "{}" {
			continue
		}

		builder.WriteString(fieldType.Name)
		builder.WriteString("=")
		builder.WriteString(val)
		builder.WriteString(";")
	}

	builder.WriteString("}")

	return builder.String()
}

// sequencedMapToHashableString hashes entries independent of insertion order.
func sequencedMapToHashableString(seqMap sequencedMap) string {
	var builder strings.Builder

	keys := slices.Collect(seqMap.KeysAny())
	slices.SortFunc(keys, func(a, b any) int {
		return strings.Compare(toHashableString(a), toHashableString(b))
	})

	builder.WriteString("{")
	for _, key := range keys {
		val, ok := seqMap.GetAny(key)
		if !ok {
			continue
		}
		builder.WriteString(toHashableString(key))
		builder.WriteString(":")
		builder.WriteString(toHashableString(val))
		builder.WriteString(";")
	}
	builder.WriteString("}")

	return builder.String()
}
