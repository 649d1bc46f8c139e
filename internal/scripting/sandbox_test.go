package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/genie/internal/scripting"
)

func sandbox(t *testing.T, limit int) *lua.LState {
	t.Helper()
	L, cancel := scripting.NewSandboxedState(limit)
	require.NotNil(t, L)
	t.Cleanup(func() {
		cancel()
		L.Close()
	})
	return L
}

func TestNewSandboxedState_UnsafeLibsNil(t *testing.T) {
	L := sandbox(t, 0)
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_SafeLibsAvailable(t *testing.T) {
	L := sandbox(t, 0)
	err := L.DoString(`
		assert(math.sqrt(4) == 2.0, "math.sqrt failed")
		assert(string.upper("hello") == "HELLO", "string.upper failed")
		local t = {}
		table.insert(t, 1)
		assert(#t == 1, "table.insert failed")
	`)
	assert.NoError(t, err)
}

func TestNewSandboxedState_InstructionLimitExceeded(t *testing.T) {
	L := sandbox(t, 10)
	assert.Error(t, L.DoString(`while true do end`))
}

func TestProperty_InstructionLimitAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(rt, "limit")
		L, cancel := scripting.NewSandboxedState(limit)
		defer L.Close()
		defer cancel()
		if err := L.DoString(`while true do end`); err == nil {
			rt.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
