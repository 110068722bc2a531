package dispatch

import (
	"reflect"
	"strconv"
	"sync"
)

// Converter turns one consumed token (or a joined run of tokens) into a
// typed argument value.
type Converter func(ctx *Context, token string) (any, error)

// ConverterRegistry maps a declared parameter type to its converter. Lookup
// is total: unknown or nil types fall back to the passthrough string
// converter, so a declared parameter always has a converter.
type ConverterRegistry struct {
	mu       sync.RWMutex
	byType   map[reflect.Type]Converter
	fallback Converter
}

// NewConverterRegistry returns a registry preloaded with converters for
// string, int, int64, float64 and bool.
func NewConverterRegistry() *ConverterRegistry {
	r := &ConverterRegistry{
		byType:   make(map[reflect.Type]Converter),
		fallback: func(_ *Context, token string) (any, error) { return token, nil },
	}
	r.Register(reflect.TypeOf(""), r.fallback)
	r.Register(reflect.TypeOf(int(0)), func(_ *Context, token string) (any, error) {
		return strconv.Atoi(token)
	})
	r.Register(reflect.TypeOf(int64(0)), func(_ *Context, token string) (any, error) {
		return strconv.ParseInt(token, 10, 64)
	})
	r.Register(reflect.TypeOf(float64(0)), func(_ *Context, token string) (any, error) {
		return strconv.ParseFloat(token, 64)
	})
	r.Register(reflect.TypeOf(false), func(_ *Context, token string) (any, error) {
		return strconv.ParseBool(token)
	})
	return r
}

// Register sets the converter for a declared type, replacing any previous
// one.
func (r *ConverterRegistry) Register(t reflect.Type, fn Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[t] = fn
}

// SetFallback replaces the converter used for unknown or undeclared types.
func (r *ConverterRegistry) SetFallback(fn Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fn
}

// Lookup returns the converter for t, or the fallback. Never returns nil.
func (r *ConverterRegistry) Lookup(t reflect.Type) Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t != nil {
		if fn, ok := r.byType[t]; ok {
			return fn
		}
	}
	return r.fallback
}
