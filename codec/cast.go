package codec

import (
	"fmt"
	"reflect"
)

// The cast functions coerce caller supplied values to the scalar kind of a
// primitive before encoding. Value ranges are not checked.

func castBool(v interface{}) (bool, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	}
	return false, fmt.Errorf("Value %v (%T) can not be cast to bool", v, v)
}

// castInt returns the two's complement bit pattern of an integer value.
func castInt(v interface{}) (uint64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return uint64(int64(rv.Float())), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("Value %v (%T) can not be cast to int", v, v)
}

func castFloat(v interface{}) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	}
	return 0, fmt.Errorf("Value %v (%T) can not be cast to float", v, v)
}

func castBytes(v interface{}) ([]byte, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return []byte(rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), nil
		}
	}
	return nil, fmt.Errorf("Value %v (%T) can not be cast to bytes", v, v)
}

// castByte accepts a one byte string or slice, or a small integer.
func castByte(v interface{}) (byte, error) {
	if b, err := castBytes(v); err == nil {
		if len(b) != 1 {
			return 0, fmt.Errorf("Expected a single byte, got %d bytes", len(b))
		}
		return b[0], nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() >= 0 && rv.Int() <= 0xff {
			return byte(rv.Int()), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.Uint() <= 0xff {
			return byte(rv.Uint()), nil
		}
	}
	return 0, fmt.Errorf("Value %v (%T) can not be cast to a byte", v, v)
}

// castSlice returns the elements of a slice or array value.
func castSlice(v interface{}) ([]interface{}, error) {
	if vs, ok := v.([]interface{}); ok {
		return vs, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		vs := make([]interface{}, rv.Len())
		for i := range vs {
			vs[i] = rv.Index(i).Interface()
		}
		return vs, nil
	}
	return nil, fmt.Errorf("Value %v (%T) is not a sequence", v, v)
}
