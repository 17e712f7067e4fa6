package llm

import (
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapientpants/quorum-sub001/types"
)

func newTestRegistry() (*ClientRegistry, *int) {
	builds := 0
	var mu sync.Mutex
	r := NewClientRegistry(map[string]AdapterFactory{
		"fake": func() Adapter {
			mu.Lock()
			builds++
			mu.Unlock()
			return newFakeAdapter("http://unused")
		},
		" Other ": func() Adapter { return newFakeAdapter("http://other") },
	})
	return r, &builds
}

func TestClientRegistry_CachesPerID(t *testing.T) {
	r, builds := newTestRegistry()

	a, err := r.GetClient("fake")
	require.NoError(t, err)
	b, err := r.GetClient("FAKE")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, *builds)
	assert.Equal(t, 1, r.Cached())
}

func TestClientRegistry_ClearCache(t *testing.T) {
	r, builds := newTestRegistry()

	a, err := r.GetClient("fake")
	require.NoError(t, err)
	r.ClearCache()
	assert.Zero(t, r.Cached())

	b, err := r.GetClient("fake")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, *builds)
}

func TestClientRegistry_UnknownProvider(t *testing.T) {
	r, _ := newTestRegistry()

	c, err := r.GetClient("nope")
	assert.Nil(t, c)
	require.True(t, types.IsErrorCode(err, types.ErrUnsupportedOperation))
	assert.Contains(t, err.Error(), "fake")
}

func TestClientRegistry_Providers(t *testing.T) {
	r, _ := newTestRegistry()
	assert.Equal(t, []string{"fake", "other"}, r.Providers())
}

func TestClientRegistry_ConcurrentAccess(t *testing.T) {
	r, _ := newTestRegistry()

	var wg sync.WaitGroup
	clients := make([]*Client, 32)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%8 == 7 {
				r.ClearCache()
			}
			c, err := r.GetClient("fake")
			if err == nil {
				clients[i] = c
			}
		}(i)
	}
	wg.Wait()

	for _, c := range clients {
		require.NotNil(t, c)
		assert.Equal(t, "fake", c.GetProviderName())
	}
}

func TestModelDescriptor_DefaultIsAvailable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("Supports accepts exactly the listed models", prop.ForAll(
		func(models []string, probe string) bool {
			if len(models) == 0 {
				return !ModelDescriptor{}.Supports(probe)
			}
			d := ModelDescriptor{Models: models, DefaultModel: models[0]}
			if !d.Supports(d.DefaultModel) {
				return false
			}
			listed := false
			for _, m := range models {
				if m == probe {
					listed = true
				}
			}
			return d.Supports(probe) == listed
		},
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
