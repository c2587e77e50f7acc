package aot_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-spring/framework/aot"
	"github.com/km-arc/go-spring/framework/bean"
)

func TestFactoriesIndex_RoundTrip(t *testing.T) {
	idx := aot.NewFactoriesIndex()
	require.NoError(t, idx.Add("default", "example.com/gen/beanreg.DefaultBeanRegistrations"))
	require.NoError(t, idx.Add("jobs", "example.com/gen/beanreg.JobsBeanRegistrations"))

	var buf bytes.Buffer
	require.NoError(t, idx.WriteTo(&buf))
	assert.Equal(t,
		"default=example.com/gen/beanreg.DefaultBeanRegistrations\njobs=example.com/gen/beanreg.JobsBeanRegistrations\n",
		buf.String())

	parsed, err := aot.ReadIndex(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "jobs"}, parsed.Keys(), "index order must survive the round trip")

	id, ok := parsed.Lookup("jobs")
	assert.True(t, ok)
	assert.Equal(t, "example.com/gen/beanreg.JobsBeanRegistrations", id)
}

func TestFactoriesIndex_DuplicateKey(t *testing.T) {
	idx := aot.NewFactoriesIndex()
	require.NoError(t, idx.Add("default", "a.A"))
	assert.Error(t, idx.Add("default", "b.B"))
}

func TestFactoriesIndex_MalformedLine(t *testing.T) {
	_, err := aot.ReadIndex(bytes.NewBufferString("no-separator-here\n"))
	assert.Error(t, err)
}

func TestFactoriesIndex_SkipsCommentsAndBlanks(t *testing.T) {
	idx, err := aot.ReadIndex(bytes.NewBufferString("# generated\n\ndefault=a.A\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestRegistryCache_Lifecycle(t *testing.T) {
	cache := aot.NewRegistryCache()
	init := aot.InitializerFunc(func(*bean.Container) error { return nil })

	cache.Add("a.A", init)
	_, ok := cache.Lookup("a.A")
	assert.True(t, ok)

	cache.Reset()
	_, ok = cache.Lookup("a.A")
	assert.False(t, ok, "Reset must clear all bindings for test isolation")
}
