package props

import (
	"encoding/binary"
	"math"
	"reflect"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a 64-bit content hash of a leaf value. Leaves compare by
// fingerprint only, so two distinct values that hash to the same fingerprint
// are indistinguishable and never make an entry dirty.
type Fingerprint uint64

// NoValue is the fingerprint of an absent value (nil interface or nil
// pointer). Every present value fingerprints to something other than NoValue.
const NoValue Fingerprint = 0

// Fingerprinter lets a value supply its own content hash. Implementations
// must return the same result for values they consider equal.
type Fingerprinter interface {
	Fingerprint() uint64
}

var (
	fingerprinterType = reflect.TypeOf((*Fingerprinter)(nil)).Elem()
	timeType          = reflect.TypeOf(time.Time{})
)

// FingerprintOf hashes value. Values implementing Fingerprinter are trusted
// to hash themselves; anything else is walked by reflection and fed to
// xxhash together with its dynamic type name, so int(1) and int64(1) differ.
func FingerprintOf(value any) Fingerprint {
	if value == nil {
		return NoValue
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return NoValue
	}
	enc := newFingerprintEncoder(nil)
	enc.str(rv.Type().String())
	enc.value(rv)
	return enc.sum()
}

const (
	tagNil byte = iota + 1
	tagCycle
	tagCustom
	tagTime
)

type fingerprintEncoder struct {
	digest *xxhash.Digest
	buf    [8]byte
	// pointers on the current walk path; guards self-referencing leaf values
	seen map[uintptr]struct{}
}

func newFingerprintEncoder(seen map[uintptr]struct{}) *fingerprintEncoder {
	if seen == nil {
		seen = map[uintptr]struct{}{}
	}
	return &fingerprintEncoder{digest: xxhash.New(), seen: seen}
}

func (e *fingerprintEncoder) write(p []byte) {
	// xxhash.Digest.Write never fails.
	_, _ = e.digest.Write(p)
}

func (e *fingerprintEncoder) u8(v byte) {
	e.buf[0] = v
	e.write(e.buf[:1])
}

func (e *fingerprintEncoder) u64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[:8], v)
	e.write(e.buf[:8])
}

func (e *fingerprintEncoder) str(s string) {
	e.u64(uint64(len(s)))
	_, _ = e.digest.WriteString(s)
}

func (e *fingerprintEncoder) sum() Fingerprint {
	sum := e.digest.Sum64()
	if sum == uint64(NoValue) {
		return 1
	}
	return Fingerprint(sum)
}

func (e *fingerprintEncoder) value(v reflect.Value) {
	if !v.IsValid() {
		e.u8(tagNil)
		return
	}
	if nilable(v.Kind()) && v.IsNil() {
		e.u8(tagNil)
		return
	}
	if v.CanInterface() {
		if v.Type() == timeType {
			t := v.Interface().(time.Time)
			e.u8(tagTime)
			e.u64(uint64(t.UnixNano()))
			e.str(t.Location().String())
			return
		}
		if v.Type().Implements(fingerprinterType) {
			e.u8(tagCustom)
			e.u64(v.Interface().(Fingerprinter).Fingerprint())
			return
		}
	}

	e.u8(byte(v.Kind()))
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			e.u8(1)
		} else {
			e.u8(0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.u64(uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.u64(v.Uint())
	case reflect.Float32, reflect.Float64:
		e.u64(math.Float64bits(v.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		e.u64(math.Float64bits(real(c)))
		e.u64(math.Float64bits(imag(c)))
	case reflect.String:
		e.str(v.String())
	case reflect.Slice, reflect.Array:
		e.u64(uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			e.value(v.Index(i))
		}
	case reflect.Struct:
		t := v.Type()
		e.u64(uint64(v.NumField()))
		for i := 0; i < v.NumField(); i++ {
			e.str(t.Field(i).Name)
			e.value(v.Field(i))
		}
	case reflect.Map:
		// Entries are hashed independently and summed so iteration order
		// does not leak into the fingerprint.
		e.u64(uint64(v.Len()))
		var acc uint64
		iter := v.MapRange()
		for iter.Next() {
			entry := newFingerprintEncoder(e.seen)
			entry.value(iter.Key())
			entry.value(iter.Value())
			acc += entry.digest.Sum64()
		}
		e.u64(acc)
	case reflect.Pointer:
		ptr := v.Pointer()
		if _, ok := e.seen[ptr]; ok {
			e.u8(tagCycle)
			return
		}
		e.seen[ptr] = struct{}{}
		e.value(v.Elem())
		delete(e.seen, ptr)
	case reflect.Interface:
		e.str(v.Elem().Type().String())
		e.value(v.Elem())
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		e.u64(uint64(v.Pointer()))
	}
}

func nilable(kind reflect.Kind) bool {
	switch kind {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
