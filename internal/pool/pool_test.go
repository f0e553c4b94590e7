package pool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/fxpool/internal/scene"
)

func newTestPool(t *testing.T, initial int) (*Pool, *scene.Template, *scene.Node) {
	t.Helper()
	tmpl := scene.NewTemplate("assets/vfx/hit_spark")
	container := scene.NewNode("container", scene.Zero)
	p, err := New("hit_spark", TemplateFunc(func() (Handle, error) {
		return tmpl.New(), nil
	}), container, initial)
	require.NoError(t, err)
	return p, tmpl, container
}

func TestNew_Prewarm(t *testing.T) {
	p, tmpl, container := newTestPool(t, 3)

	assert.Equal(t, Stats{Available: 3, InUse: 0, Total: 3}, p.Stats())
	assert.Equal(t, int64(3), tmpl.Created())
	assert.Equal(t, 3, container.ChildCount(), "pre-warmed instances parked under container")
}

func TestNew_NilTemplate(t *testing.T) {
	_, err := New("x", nil, nil, 1)
	require.Error(t, err)
}

func TestNew_PrewarmFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := New("x", TemplateFunc(func() (Handle, error) { return nil, boom }), nil, 2)
	require.ErrorIs(t, err, boom)
}

func TestAcquire_ReusesFIFO(t *testing.T) {
	p, tmpl, _ := newTestPool(t, 2)

	h1, err := p.Acquire()
	require.NoError(t, err)
	h2, err := p.Acquire()
	require.NoError(t, err)
	require.NoError(t, p.Release(h2))
	require.NoError(t, p.Release(h1))

	// h2 was released first, so it comes back first.
	got, err := p.Acquire()
	require.NoError(t, err)
	assert.Same(t, h2, got)
	assert.Equal(t, int64(2), tmpl.Created(), "reuse must not instantiate")
}

func TestAcquire_GrowsWhenEmpty(t *testing.T) {
	p, tmpl, _ := newTestPool(t, 0)

	handles := make([]Handle, 0, 50)
	for range 50 {
		h, err := p.Acquire()
		require.NoError(t, err)
		handles = append(handles, h)
	}

	assert.Equal(t, Stats{Available: 0, InUse: 50, Total: 50}, p.Stats())
	assert.Equal(t, int64(50), tmpl.Created())

	for _, h := range handles {
		require.NoError(t, p.Release(h))
	}
	assert.Equal(t, Stats{Available: 50, InUse: 0, Total: 50}, p.Stats(), "pool never shrinks")
}

func TestAcquire_TemplateFailure(t *testing.T) {
	calls := 0
	p, err := New("flaky", TemplateFunc(func() (Handle, error) {
		calls++
		return nil, errors.New("gpu lost")
	}), nil, 0)
	require.NoError(t, err)

	_, err = p.Acquire()
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Stats{}, p.Stats())
}

func TestAcquireRelease_ActivationFlags(t *testing.T) {
	p, _, container := newTestPool(t, 4)
	host := scene.NewNode("mech", scene.Vec3{X: 5})

	for range 4 {
		h, err := p.Acquire()
		require.NoError(t, err)
		assert.True(t, h.Emitting(), "acquired instance must emit")
		assert.True(t, h.Visible(), "acquired instance must be visible")
		assert.True(t, p.IsInUse(h))

		h.Reparent(host)
		h.SetTransform(scene.At(scene.Vec3{X: 1, Y: 2, Z: 3}).WithScale(2))

		require.NoError(t, p.Release(h))
		assert.False(t, h.Emitting(), "released instance must not emit")
		assert.False(t, h.Visible(), "released instance must be hidden")
		assert.Equal(t, scene.Identity(), h.Transform())
		assert.Equal(t, scene.Host(container), h.Parent())
		assert.True(t, p.IsAvailable(h))
	}
	assert.Equal(t, 0, host.ChildCount())
}

func TestRelease_Conservation(t *testing.T) {
	p, _, _ := newTestPool(t, 2)

	total := func() int {
		s := p.Stats()
		return s.Available + s.InUse
	}

	ops := []bool{true, true, true, false, true, false, false, false, true}
	var held []Handle
	prev := total()
	for _, acquire := range ops {
		if acquire {
			h, err := p.Acquire()
			require.NoError(t, err)
			held = append(held, h)
		} else {
			h := held[len(held)-1]
			held = held[:len(held)-1]
			require.NoError(t, p.Release(h))
		}
		cur := total()
		assert.GreaterOrEqual(t, cur, prev)
		assert.Equal(t, p.Stats().Total, cur)
		prev = cur
	}
}

func TestRelease_ForeignHandle(t *testing.T) {
	p, _, _ := newTestPool(t, 2)
	other, _, _ := newTestPool(t, 1)

	foreign, err := other.Acquire()
	require.NoError(t, err)
	h, err := p.Acquire()
	require.NoError(t, err)
	before := p.Stats()

	err = p.Release(foreign)
	require.ErrorIs(t, err, ErrForeignRelease)
	assert.Equal(t, before, p.Stats())
	assert.True(t, foreign.Emitting(), "foreign handle left untouched")
	assert.True(t, p.IsInUse(h))
}

func TestRelease_Double(t *testing.T) {
	p, _, _ := newTestPool(t, 1)

	h, err := p.Acquire()
	require.NoError(t, err)
	require.NoError(t, p.Release(h))
	before := p.Stats()

	require.ErrorIs(t, p.Release(h), ErrForeignRelease)
	assert.Equal(t, before, p.Stats())

	// The queue holds h exactly once.
	h1, err := p.Acquire()
	require.NoError(t, err)
	h2, err := p.Acquire()
	require.NoError(t, err)
	assert.NotSame(t, h1, h2)
}

func TestClose_FreesInstances(t *testing.T) {
	p, _, container := newTestPool(t, 2)
	h, err := p.Acquire()
	require.NoError(t, err)

	p.Close()

	inst := h.(*scene.Instance)
	assert.False(t, inst.Valid())
	assert.False(t, inst.Emitting())
	assert.Equal(t, Stats{}, p.Stats())
	assert.Equal(t, 0, container.ChildCount())
}

func TestSceneLoader(t *testing.T) {
	lib := scene.NewLibrary("assets/vfx/spark")
	loader := SceneLoader(lib)

	tmpl, err := loader.Load("assets/vfx/spark")
	require.NoError(t, err)
	h, err := tmpl.Instantiate()
	require.NoError(t, err)
	assert.Equal(t, "assets/vfx/spark_Pool_0", h.(*scene.Instance).Name())

	_, err = loader.Load("assets/vfx/missing")
	require.ErrorIs(t, err, scene.ErrResourceNotFound)
}
