package main

import (
	"log/slog"
	"time"

	"github.com/udisondev/fxpool/internal/scene"
	"github.com/udisondev/fxpool/internal/status"
	"github.com/udisondev/fxpool/internal/vfx"
	"github.com/udisondev/fxpool/internal/weaponfx"
)

const (
	actionInterval  = 400 * time.Millisecond
	projectileSpeed = 18.0 // units per second
	projectileTTL   = time.Second
	statusDuration  = 3 * time.Second
)

var elements = []status.Kind{status.Physical, status.Fire, status.Ice, status.Electric, status.Toxic}

type projectile struct {
	node    *scene.Node
	trail   *vfx.Effect
	vel     scene.Vec3
	ttl     time.Duration
	element status.Kind
}

// director plays a scripted firefight: a turret shoots at a target drone
// with every weapon effect and applies status overlays to it. Frame must
// run on the frame loop goroutine.
type director struct {
	mgr     *vfx.Manager
	weapons *weaponfx.Effects
	tracker *status.Tracker

	world  *scene.Node
	turret *scene.Node
	muzzle *scene.Node
	target *scene.Node

	projectiles []*projectile
	elapsed     time.Duration
	next        time.Duration
	step        int
}

func newDirector(mgr *vfx.Manager, tracker *status.Tracker) *director {
	world := scene.NewNode("world", scene.Zero)
	turret := scene.NewNode("turret", scene.Vec3{X: 4, Y: -8})
	muzzle := scene.NewNode("muzzle", scene.Vec3{X: 2, Y: 1})
	target := scene.NewNode("drone", scene.Vec3{X: 40, Y: -4})
	world.AddNode(turret)
	turret.AddNode(muzzle)
	world.AddNode(target)

	return &director{
		mgr:     mgr,
		weapons: weaponfx.New(mgr),
		tracker: tracker,
		world:   world,
		turret:  turret,
		muzzle:  muzzle,
		target:  target,
		next:    actionInterval,
	}
}

// Frame advances projectiles and runs every action that came due.
func (d *director) Frame(dt time.Duration) {
	d.moveProjectiles(dt)

	d.elapsed += dt
	for d.elapsed >= d.next {
		d.act(d.step)
		d.step++
		d.next += actionInterval
	}
}

// Projectiles returns the number of projectiles in flight.
func (d *director) Projectiles() int { return len(d.projectiles) }

func (d *director) act(step int) {
	element := elements[(step/5)%len(elements)]
	var err error
	switch step % 5 {
	case 0:
		_, err = d.weapons.MuzzleFlash(d.muzzle, scene.Zero, element, 1)
		if err == nil {
			err = d.fire(element)
		}
	case 1:
		_, err = d.weapons.LaserBeam(d.muzzle.WorldPosition(), d.target.WorldPosition())
	case 2:
		err = d.tracker.ApplyEffect(d.target, element, statusDuration, scene.Vec3{Y: 1})
	case 3:
		_, err = d.weapons.Explosion(d.target.WorldPosition().Add(scene.Vec3{X: -3}), weaponfx.ExplosionSize(step%3), element, 1.5)
	case 4:
		_, err = d.mgr.SpawnAt("heal", scene.At(d.target.WorldPosition().Add(scene.Vec3{Y: 2})), 1)
		if step%10 == 9 {
			d.tracker.RemoveAllEffects(d.target)
		}
	}
	if err != nil {
		slog.Warn("demo action failed", "step", step, "err", err)
	}
}

func (d *director) fire(element status.Kind) error {
	node := scene.NewNode("projectile", d.muzzle.WorldPosition())
	d.world.AddNode(node)
	trail, err := d.weapons.ProjectileTrail(node, scene.Zero)
	if err != nil {
		d.world.RemoveChild(node)
		node.Destroy()
		return err
	}
	dir := d.target.WorldPosition().Sub(node.WorldPosition()).Normalized()
	d.projectiles = append(d.projectiles, &projectile{
		node:    node,
		trail:   trail,
		vel:     dir.Scale(projectileSpeed),
		ttl:     projectileTTL,
		element: element,
	})
	return nil
}

func (d *director) moveProjectiles(dt time.Duration) {
	live := d.projectiles[:0]
	for _, p := range d.projectiles {
		p.ttl -= dt
		p.node.SetPosition(p.node.Position().Add(p.vel.Scale(dt.Seconds())))
		if p.ttl > 0 && p.node.WorldPosition().Distance(d.target.WorldPosition()) > 1 {
			live = append(live, p)
			continue
		}

		hit := p.node.WorldPosition()
		p.trail.Release()
		d.world.RemoveChild(p.node)
		p.node.Destroy()
		if _, err := d.weapons.Impact(hit, p.vel.Scale(-1).Normalized(), p.element, 1); err != nil {
			slog.Warn("impact effect failed", "err", err)
		}
	}
	clear(d.projectiles[len(live):])
	d.projectiles = live
}
