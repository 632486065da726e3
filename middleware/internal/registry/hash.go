package registry

import (
	"reflect"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// hashToken hashes what makes two tokens equal under ==, so a token keeps its
// shard for as long as it stays equal to itself. Pointers and channels hash by
// address, never by what they point to, and String methods are ignored.
func hashToken(token any) uint64 {
	d := xxhash.New()
	writeToken(d, reflect.ValueOf(token))
	return d.Sum64()
}

func writeToken(d *xxhash.Digest, v reflect.Value) {
	if !v.IsValid() {
		_, _ = d.WriteString("<nil>;")
		return
	}
	_, _ = d.WriteString(v.Type().String())
	_, _ = d.WriteString(":")
	switch v.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		_, _ = d.WriteString(strconv.FormatUint(uint64(v.Pointer()), 16))
	case reflect.Interface:
		writeToken(d, v.Elem())
	case reflect.Struct:
		for i := range v.NumField() {
			writeToken(d, v.Field(i))
		}
	case reflect.Array:
		for i := range v.Len() {
			writeToken(d, v.Index(i))
		}
	case reflect.String:
		_, _ = d.WriteString(strconv.Quote(v.String()))
	case reflect.Bool:
		_, _ = d.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		_, _ = d.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		_, _ = d.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		_, _ = d.WriteString(formatFloat(v.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		_, _ = d.WriteString(formatFloat(real(c)) + "," + formatFloat(imag(c)))
	}
	_, _ = d.WriteString(";")
}

func formatFloat(f float64) string {
	if f == 0 {
		// -0 == +0
		f = 0
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func getIndexByHash(token any, numShards int) int {
	switch numShards {
	case 0:
		panic("number of shards cannot be 0")
	case 1:
		return 0
	default:
		return int(hashToken(token) % uint64(numShards))
	}
}
