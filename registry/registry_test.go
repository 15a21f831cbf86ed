package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(_ context.Context, p Params) (interface{}, error) {
	if v, ok := p.Get("s"); ok {
		return v, nil
	}
	return "pong", nil
}

type Calculator struct{}

func (Calculator) Methods() map[string]*Method {
	return map[string]*Method{
		"add": NewMethod(Positional("a", "b"), func(_ context.Context, p Params) (interface{}, error) {
			return p.Args()[0].(int) + p.Args()[1].(int), nil
		}),
		"_hidden": NewMethod(Any, echo),
	}
}

type namedProvider struct{}

func (*namedProvider) Namespace() string { return "Math" }

func (*namedProvider) Methods() map[string]*Method {
	return map[string]*Method{"echo": NewMethod(Any, echo)}
}

func TestRegisterReturnsMethod(t *testing.T) {
	reg := NewRegistry()
	m := NewMethod(Any, echo)
	assert.Same(t, m, reg.Register("echo", m))

	got, ok := reg.FindMethod("echo")
	require.True(t, ok)
	assert.Same(t, m, got)
}

func TestRegisterOverwrites(t *testing.T) {
	reg := NewRegistry()
	first := reg.RegisterFunc("m", Any, echo)
	second := reg.RegisterFunc("m", Any, echo)
	got, _ := reg.FindMethod("m")
	assert.NotSame(t, first, got)
	assert.Same(t, second, got)
	assert.Equal(t, 1, reg.Len())
}

func TestRegisterNilPanics(t *testing.T) {
	reg := NewRegistry()
	assert.Panics(t, func() { reg.Register("m", nil) })
}

func TestLookupIsExact(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFunc("Echo", Any, echo)
	_, ok := reg.FindMethod("echo")
	assert.False(t, ok)
	_, ok = reg.FindMethod("Ech*")
	assert.False(t, ok)
}

func TestRegisterBulkMap(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterBulk(map[string]*Method{
		"sum":  NewMethod(Any, echo),
		"echo": NewMethod(Any, echo),
	}))
	assert.Equal(t, []string{"echo", "sum"}, reg.Names())

	require.NoError(t, reg.RegisterBulk(map[string]*Method{"sum": NewMethod(Any, echo)}, "util."))
	_, ok := reg.FindMethod("util.sum")
	assert.True(t, ok)
}

func TestRegisterBulkProvider(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterBulk(Calculator{}))
	assert.Equal(t, []string{"calculator.add"}, reg.Names())

	_, ok := reg.FindMethod("add")
	assert.False(t, ok, "bulk registered methods are only exposed under their prefix")
}

func TestRegisterBulkProviderPrefix(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterBulk(&Calculator{}, "calc_"))
	assert.Equal(t, []string{"calc_add"}, reg.Names())

	require.NoError(t, reg.RegisterBulk(&namedProvider{}))
	_, ok := reg.FindMethod("math.echo")
	assert.True(t, ok)
}

func TestRegisterBulkShadows(t *testing.T) {
	reg := NewRegistry()
	first := reg.RegisterFunc("calculator.add", Any, echo)
	require.NoError(t, reg.RegisterBulk(Calculator{}))
	got, _ := reg.FindMethod("calculator.add")
	assert.NotSame(t, first, got)
}

func TestRegisterBulkInvalid(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.RegisterBulk(42))
	assert.Error(t, reg.RegisterBulk(map[string]*Method{"x": nil}))
	assert.Equal(t, 0, reg.Len())
}

func TestDelete(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFunc("m", Any, echo)
	reg.Delete("m")
	_, ok := reg.FindMethod("m")
	assert.False(t, ok)
}

func TestMethodCallRecoversPanic(t *testing.T) {
	m := NewMethod(Any, func(context.Context, Params) (interface{}, error) {
		panic("boom")
	})
	res, err := m.Call(context.Background(), nil, nil)
	assert.Nil(t, res)
	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "boom", pe.Value)
	assert.NotEmpty(t, pe.Stack)
}

func TestMethodCall(t *testing.T) {
	m := NewMethod(Signature{Optional: []string{"s"}}, echo)
	res, err := m.Call(context.Background(), []interface{}{"hi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", res)

	res, err = m.Call(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", res)
}
