package effect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func def(name string, lifetime time.Duration, c Category) Definition {
	return Definition{Name: name, Resource: "assets/vfx/" + name, Lifetime: lifetime, Category: c}
}

func TestRegister_Lookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(def("hit_spark", 300*time.Millisecond, Impact)))

	got, err := r.Lookup("hit_spark")
	require.NoError(t, err)
	assert.Equal(t, "assets/vfx/hit_spark", got.Resource)
	assert.Equal(t, 300*time.Millisecond, got.Lifetime)
	assert.True(t, r.Has("hit_spark"))
	assert.Equal(t, 1, r.Len())
}

func TestLookup_NotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("nope")
	require.ErrorIs(t, err, ErrEffectNotFound)
	assert.False(t, r.Has("nope"))
}

func TestRegister_DuplicateKeepsFirst(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(def("muzzle_flash", 200*time.Millisecond, Weapon)))

	err := r.Register(def("muzzle_flash", 5*time.Second, Explosion))
	require.ErrorIs(t, err, ErrDuplicateEffect)

	got, err := r.Lookup("muzzle_flash")
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, got.Lifetime, "duplicate must not overwrite")
	assert.Equal(t, Weapon, got.Category)
}

func TestMustRegister_PanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(def("heal", time.Second, UI))
	assert.Panics(t, func() { r.MustRegister(def("heal", time.Second, UI)) })
}

func TestRegister_Invalid(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{"empty name", Definition{Resource: "r", Lifetime: time.Second}},
		{"empty resource", Definition{Name: "a", Lifetime: time.Second}},
		{"zero lifetime", Definition{Name: "a", Resource: "r"}},
		{"bad category", Definition{Name: "a", Resource: "r", Lifetime: time.Second, Category: Category(42)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			require.ErrorIs(t, r.Register(tt.def), ErrInvalidDefinition)
			assert.Equal(t, 0, r.Len())
		})
	}
}

func TestLoadRegistry_DuplicateAborts(t *testing.T) {
	_, err := LoadRegistry([]Definition{
		def("a", time.Second, UI),
		def("a", time.Second, UI),
	})
	require.ErrorIs(t, err, ErrDuplicateEffect)
}

func TestListByCategory(t *testing.T) {
	r, err := LoadRegistry([]Definition{
		def("explosion_small", time.Second, Explosion),
		def("burn_loop", ManualLifetime, StatusEffect),
		def("explosion_large", 2*time.Second, Explosion),
		def("freeze_loop", ManualLifetime, StatusEffect),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"explosion_large", "explosion_small"}, r.ListByCategory(Explosion))
	assert.Equal(t, []string{"burn_loop", "freeze_loop"}, r.ListByCategory(StatusEffect))
	assert.Empty(t, r.ListByCategory(UI))
	assert.Equal(t, []string{"burn_loop", "explosion_large", "explosion_small", "freeze_loop"}, r.Names())
}

func TestDefinition_Manual(t *testing.T) {
	assert.True(t, def("burn_loop", ManualLifetime, StatusEffect).Manual())
	assert.True(t, def("forever", 2*ManualLifetime, StatusEffect).Manual())
	assert.False(t, def("spark", 500*time.Millisecond, Impact).Manual())
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCategory("StatusEffect")
	require.NoError(t, err)
	assert.Equal(t, StatusEffect, got)

	_, err = ParseCategory("weather")
	require.Error(t, err)
	assert.Equal(t, "category(9)", Category(9).String())
}
