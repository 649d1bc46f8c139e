package scripting

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/genie/internal/genie/loader"
	"github.com/cory-johannsen/genie/internal/genie/reader"
	"github.com/cory-johannsen/genie/internal/genie/value"
	"github.com/cory-johannsen/genie/internal/importer"
)

// Inspector runs inspection scripts. Sections are bound to the global table
// dat by section id; emit(...) records one tab-separated output line and
// log(msg) writes to the logger.
//
// Deferred records appear as tables that load on first field access, through
// the cache when one is set. pairs() over such a table sees nothing until a
// field has been read.
type Inspector struct {
	cache  *loader.Cache
	logger *zap.Logger
}

// NewInspector creates an Inspector. cache may be nil; a nil logger discards
// script log output.
func NewInspector(cache *loader.Cache, logger *zap.Logger) *Inspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inspector{cache: cache, logger: logger}
}

// Inspect runs script over sections with a fresh sandbox.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns the emitted lines in order. On a script error the
// lines emitted so far are returned with the error.
func (in *Inspector) Inspect(script string, sections []*importer.Section, limit int) ([]string, error) {
	L, cancel := NewSandboxedState(limit)
	defer L.Close()
	defer cancel()

	dat := L.NewTable()
	for _, s := range sections {
		v, err := in.toLua(L, s.Tree)
		if err != nil {
			return nil, fmt.Errorf("binding section %q: %w", s.ID, err)
		}
		L.SetField(dat, s.ID, v)
	}
	L.SetGlobal("dat", dat)

	var lines []string
	L.SetGlobal("emit", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		lines = append(lines, strings.Join(parts, "\t"))
		return 0
	}))
	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		in.logger.Info("inspection script", zap.String("msg", L.CheckString(1)))
		return 0
	}))

	if err := L.DoString(script); err != nil {
		return lines, fmt.Errorf("running inspection script: %w", err)
	}
	return lines, nil
}

// Inspect runs script without a loader cache.
func Inspect(script string, sections []*importer.Section, limit int) ([]string, error) {
	return NewInspector(nil, nil).Inspect(script, sections, limit)
}

// toLua converts m to Lua values. Arrays become sequences in element order.
func (in *Inspector) toLua(L *lua.LState, m value.Member) (lua.LValue, error) {
	switch x := m.(type) {
	case *value.Int:
		return lua.LNumber(x.Value), nil
	case *value.Float:
		return lua.LNumber(x.Value), nil
	case *value.Bool:
		return lua.LBool(x.Value), nil
	case *value.ID:
		if x.Symbol != "" {
			return lua.LString(x.Symbol), nil
		}
		return lua.LNumber(x.Value), nil
	case *value.Bitfield:
		return lua.LNumber(x.Value), nil
	case *value.String:
		return lua.LString(x.Value), nil
	case *value.Container:
		t := L.CreateTable(0, x.Len())
		for _, c := range x.Members() {
			v, err := in.toLua(L, c)
			if err != nil {
				return nil, err
			}
			t.RawSetString(c.Name(), v)
		}
		return t, nil
	case *value.Array:
		t := L.CreateTable(x.Len(), 0)
		for _, c := range x.Members() {
			v, err := in.toLua(L, c)
			if err != nil {
				return nil, err
			}
			t.Append(v)
		}
		return t, nil
	case value.Deferred:
		return in.proxy(L, x), nil
	}
	return nil, fmt.Errorf("unsupported member %q of kind %s", m.Name(), m.Kind())
}

// proxy returns a table that fills itself from d on first access.
func (in *Inspector) proxy(L *lua.LState, d value.Deferred) *lua.LTable {
	t := L.NewTable()
	mt := L.NewTable()
	loaded := false
	mt.RawSetString("__index", L.NewFunction(func(L *lua.LState) int {
		if !loaded {
			c, err := in.resolve(d)
			if err != nil {
				L.RaiseError("loading %s: %v", d.Name(), err)
				return 0
			}
			for _, m := range c.Members() {
				v, err := in.toLua(L, m)
				if err != nil {
					L.RaiseError("loading %s: %v", d.Name(), err)
					return 0
				}
				t.RawSetString(m.Name(), v)
			}
			loaded = true
		}
		L.Push(t.RawGet(L.Get(2)))
		return 1
	}))
	L.SetMetatable(t, mt)
	return t
}

func (in *Inspector) resolve(d value.Deferred) (*value.Container, error) {
	if l, ok := d.(*reader.DynamicLoader); ok && in.cache != nil {
		return in.cache.Get(l)
	}
	return d.Materialize()
}
