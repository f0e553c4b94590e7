// Package weaponfx picks and spawns weapon feedback effects (muzzle flashes,
// impacts, trails, explosions, beams) through the registry-backed manager.
package weaponfx

import (
	"github.com/udisondev/fxpool/internal/scene"
	"github.com/udisondev/fxpool/internal/status"
	"github.com/udisondev/fxpool/internal/vfx"
)

// laserBeamLength is the length of the beam template at scale 1.
const laserBeamLength = 10.0

// ExplosionSize selects the explosion variant.
type ExplosionSize uint8

const (
	Small ExplosionSize = iota
	Medium
	Large
)

// Spawner is the subset of vfx.Manager used here.
type Spawner interface {
	SpawnAt(name string, at scene.Transform, scale float64) (*vfx.Effect, error)
	SpawnAttached(name string, host scene.Host, offset scene.Vec3) (*vfx.Effect, error)
}

// Effects spawns weapon effects.
type Effects struct {
	spawner Spawner
}

// New creates weapon effects over spawner.
func New(spawner Spawner) *Effects {
	return &Effects{spawner: spawner}
}

// MuzzleFlashName returns the muzzle flash variant for element.
func MuzzleFlashName(element status.Kind) string {
	switch element {
	case status.Fire:
		return "muzzle_flash_plasma"
	case status.Electric, status.Ice, status.Toxic:
		return "muzzle_flash_energy"
	default:
		return "muzzle_flash"
	}
}

// ImpactName returns the impact variant for element.
func ImpactName(element status.Kind) string {
	if element == status.Physical {
		return "hit_spark"
	}
	return "hit_energy"
}

// ExplosionName returns the explosion variant for size and element.
// Any elemental damage uses the energy explosion.
func ExplosionName(size ExplosionSize, element status.Kind) string {
	if element != status.Physical {
		return "explosion_energy"
	}
	switch size {
	case Small:
		return "explosion_small"
	case Large:
		return "explosion_large"
	default:
		return "explosion_medium"
	}
}

// MuzzleFlash plays a flash at the muzzle's world position.
func (w *Effects) MuzzleFlash(muzzle scene.Host, rotation scene.Vec3, element status.Kind, scale float64) (*vfx.Effect, error) {
	if muzzle == nil || !muzzle.Valid() {
		return nil, vfx.ErrInvalidHost
	}
	at := scene.At(muzzle.WorldPosition())
	at.Rotation = rotation
	return w.spawner.SpawnAt(MuzzleFlashName(element), at, scale)
}

// Impact plays a hit effect aligned with the surface normal.
func (w *Effects) Impact(pos, normal scene.Vec3, element status.Kind, scale float64) (*vfx.Effect, error) {
	at := scene.At(pos)
	at.Rotation = scene.LookRotation(normal)
	return w.spawner.SpawnAt(ImpactName(element), at, scale)
}

// ProjectileTrail attaches a trail that follows the projectile.
func (w *Effects) ProjectileTrail(projectile scene.Host, offset scene.Vec3) (*vfx.Effect, error) {
	return w.spawner.SpawnAttached("projectile_trail", projectile, offset)
}

// Explosion plays an explosion at pos.
func (w *Effects) Explosion(pos scene.Vec3, size ExplosionSize, element status.Kind, scale float64) (*vfx.Effect, error) {
	return w.spawner.SpawnAt(ExplosionName(size, element), scene.At(pos), scale)
}

// LaserBeam stretches the beam from start to end. A zero-length beam is not
// spawned and returns a nil effect.
func (w *Effects) LaserBeam(start, end scene.Vec3) (*vfx.Effect, error) {
	dist := start.Distance(end)
	if dist == 0 {
		return nil, nil
	}
	at := scene.At(start)
	at.Rotation = scene.LookRotation(end.Sub(start))
	return w.spawner.SpawnAt("laser_beam", at, dist/laserBeamLength)
}
