package script

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_RegisterAndExecute(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Register(ctx, "testA", `
x = 64
y = 12
a = x / 2 - 6
b = 5 - x * 4 - 8
`))
	require.NoError(t, engine.Register(ctx, "testB", `
radius = 2
circumference = 2.0 * pi * radius
`))

	require.NoError(t, engine.Execute(ctx, "testB", nil))
	require.NoError(t, engine.Execute(ctx, "testA", nil))

	localsA, ok := engine.Locals("testA")
	require.True(t, ok)

	assert.Equal(t, int64(26), localsA.Get("a").AsInt())
	assert.Equal(t, int64(-259), localsA.Get("b").AsInt())
	assert.Equal(t, int64(64), localsA.Get("x").AsInt())
	assert.Equal(t, int64(12), localsA.Get("y").AsInt())

	localsB, ok := engine.Locals("testB")
	require.True(t, ok)

	assert.Equal(t, int64(2), localsB.Get("radius").AsInt())
	assert.InDelta(t, 12.566, localsB.Get("circumference").AsFloat(), 0.001)
}

func TestEngine_DuplicateRegistration(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Register(ctx, "block", "a = 1"))

	err := engine.Register(ctx, "block", "a = 2")
	require.ErrorIs(t, err, ErrDuplicateBlock)

	// Identical source is still a duplicate.
	err = engine.Register(ctx, "block", "a = 1")
	require.ErrorIs(t, err, ErrDuplicateBlock)
}

func TestEngine_Unregister(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Register(ctx, "testA", "a = 1"))
	require.NoError(t, engine.Register(ctx, "testB", "b = 2"))

	assert.Equal(t, []string{"testA", "testB"},
		slices.Collect(engine.Blocks()))

	engine.Unregister("testA")
	assert.Equal(t, []string{"testB"}, slices.Collect(engine.Blocks()))

	// Unregistering an unknown name is a no-op.
	engine.Unregister("testA")

	engine.Unregister("testB")
	assert.Empty(t, slices.Collect(engine.Blocks()))

	// The freed name is available again.
	require.NoError(t, engine.Register(ctx, "testA", "a = 3"))
}

func TestEngine_ExecuteUnknownBlock(t *testing.T) {
	engine := NewEngine()

	err := engine.Execute(context.Background(), "missing", nil)
	require.ErrorIs(t, err, ErrUnknownBlock)
}

func TestEngine_CompileErrorSurfacesFromRegister(t *testing.T) {
	engine := NewEngine()

	err := engine.Register(context.Background(), "bad", "x + 1 = 59")
	require.ErrorIs(t, err, ErrSyntax)

	_, ok := engine.Block("bad")
	assert.False(t, ok, "failed registration left a block behind")
}

func TestEngine_PersistentLocals(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Register(ctx, "accum", "x = x + 1"))

	require.NoError(t, engine.Execute(ctx, "accum", map[string]Value{
		"x": Int(4),
	}))

	locals, ok := engine.Locals("accum")
	require.True(t, ok)
	assert.Equal(t, int64(5), locals.Get("x").AsInt())

	// The table persists: a second run continues from the last value.
	require.NoError(t, engine.Execute(ctx, "accum", nil))
	assert.Equal(t, int64(6), locals.Get("x").AsInt())
}

func TestEngine_ConcurrentExecutions(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	engine.Globals().Set("a", Int(0))
	engine.Globals().Set("b", Int(0))

	require.NoError(t, engine.Register(ctx, "incA", "global a = a + 1"))
	require.NoError(t, engine.Register(ctx, "incB", "global b = b + 1"))

	const runs = 100

	var wg sync.WaitGroup

	for _, name := range []string{"incA", "incB"} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range runs {
				assert.NoError(t, engine.Execute(ctx, name, nil))
			}
		}()
	}

	wg.Wait()

	// Executions serialize on the engine mutex, so every increment of the
	// shared global table lands.
	assert.Equal(t, int64(runs), engine.Globals().Get("a").AsInt())
	assert.Equal(t, int64(runs), engine.Globals().Get("b").AsInt())
}

func TestEngine_GlobalsSharedAcrossBlocks(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Register(ctx, "producer", "global score = 10"))
	require.NoError(t, engine.Register(ctx, "consumer", "doubled = score * 2"))

	require.NoError(t, engine.Execute(ctx, "producer", nil))
	require.NoError(t, engine.Execute(ctx, "consumer", nil))

	locals, ok := engine.Locals("consumer")
	require.True(t, ok)
	assert.Equal(t, int64(20), locals.Get("doubled").AsInt())
}

func TestEngine_SymbolChangeCallback(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Register(ctx, "testA", `
sym1 = 24
sym3 = 25
global sym2 = 36
sym4 = 42
`))

	locals, ok := engine.Locals("testA")
	require.True(t, ok)

	var changes []string

	locals.OnChange(func(name string, value Value) {
		changes = append(changes, name+"="+value.String())
	})
	locals.SetConstant("sym2", Int(64))

	require.NoError(t, engine.Execute(ctx, "testA", nil))

	// The global write and the constant store fire no local callback.
	assert.Equal(t, []string{"sym1=24", "sym3=25", "sym4=42"}, changes)
}

func TestEngine_SetConstant(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	engine.SetConstant("screen_width", Int(640))

	require.NoError(t, engine.Register(ctx, "center", "x = screen_width / 2"))
	require.NoError(t, engine.Execute(ctx, "center", nil))

	locals, ok := engine.Locals("center")
	require.True(t, ok)
	assert.Equal(t, int64(320), locals.Get("x").AsInt())
}

func TestEngine_HostFunctions(t *testing.T) {
	double := &Function{
		Name:   "double",
		Params: []string{"n"},
		Builtin: func(args []Value) (Value, error) {
			return Int(args[0].AsInt() * 2), nil
		},
	}

	engine := NewEngine(WithEngineFunctions(double))
	ctx := context.Background()

	require.NoError(t, engine.Register(ctx, "use", "x = double(21)"))
	require.NoError(t, engine.Execute(ctx, "use", nil))

	locals, ok := engine.Locals("use")
	require.True(t, ok)
	assert.Equal(t, int64(42), locals.Get("x").AsInt())
}

func TestEngine_ConditionalWithBindings(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Register(ctx, "cmp", `
if (a > b) { c = 1 }
elseif (a == b) { c = 0 }
else { c = -1 }
`))

	tests := []struct {
		a, b, want int64
	}{
		{3, 2, 1},
		{2, 2, 0},
		{1, 2, -1},
	}

	locals, ok := engine.Locals("cmp")
	require.True(t, ok)

	for _, tt := range tests {
		require.NoError(t, engine.Execute(ctx, "cmp", map[string]Value{
			"a": Int(tt.a),
			"b": Int(tt.b),
		}))

		assert.Equal(t, tt.want, locals.Get("c").AsInt(),
			"a=%d b=%d", tt.a, tt.b)
	}
}

func TestEngine_FunctionsListsBuiltins(t *testing.T) {
	engine := NewEngine()

	names := slices.Collect(engine.Functions())

	for _, want := range []string{"distance", "randint", "time"} {
		assert.Contains(t, names, want)
	}
}
