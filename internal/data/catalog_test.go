package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/fxpool/internal/effect"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	defs, err := c.Definitions()
	require.NoError(t, err)

	reg, err := effect.LoadRegistry(defs)
	require.NoError(t, err, "embedded catalog must register cleanly")
	assert.Equal(t, 27, reg.Len())

	flash, err := reg.Lookup("muzzle_flash")
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, flash.Lifetime)
	assert.Equal(t, effect.Weapon, flash.Category)

	for _, name := range []string{"burn_loop", "freeze_loop", "shock_loop", "poison_loop"} {
		d, err := reg.Lookup(name)
		require.NoError(t, err)
		assert.True(t, d.Manual(), "%s must be manually controlled", name)
	}

	assert.Equal(t, []string{"explosion_energy", "explosion_large", "explosion_medium", "explosion_small"},
		reg.ListByCategory(effect.Explosion))

	for _, ref := range c.Resources() {
		s, ok := c.Sprites[ref]
		assert.True(t, ok, "no sprite for %s", ref)
		assert.NotEmpty(t, s.Frames)
	}
}

func TestParseCatalog(t *testing.T) {
	raw := []byte(`
effects:
  - name: spark
    resource: fx/spark
    lifetime: 500ms
    category: impact
  - name: spark_big
    resource: fx/spark
    lifetime: 1.5s
    category: Impact
`)
	c, err := ParseCatalog(raw)
	require.NoError(t, err)
	assert.NotNil(t, c.Sprites)

	defs, err := c.Definitions()
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, effect.Definition{Name: "spark", Resource: "fx/spark", Lifetime: 500 * time.Millisecond, Category: effect.Impact}, defs[0])
	assert.Equal(t, 1500*time.Millisecond, defs[1].Lifetime)
	assert.Equal(t, []string{"fx/spark"}, c.Resources())
}

func TestDefinitions_BadCategory(t *testing.T) {
	c, err := ParseCatalog([]byte("effects:\n  - name: rain\n    resource: fx/rain\n    lifetime: 1s\n    category: weather\n"))
	require.NoError(t, err)
	_, err = c.Definitions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rain")
}

func TestParseCatalog_Malformed(t *testing.T) {
	_, err := ParseCatalog([]byte("effects: [name: x"))
	require.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultCatalog, 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, c.Effects, 27)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
