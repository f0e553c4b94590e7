package pool

import "github.com/udisondev/fxpool/internal/scene"

// Handle is the capability set the pool and orchestrator need from a
// renderable effect instance. Implementations own their transform and
// emission flag; the pool never inspects the concrete type.
type Handle interface {
	SetTransform(t scene.Transform)
	Transform() scene.Transform
	SetVisible(v bool)
	Visible() bool
	SetEmitting(e bool)
	Emitting() bool
	// Restart stops emission and starts it again from the first frame.
	Restart()
	Reparent(parent scene.Host)
	Parent() scene.Host
}

// Freer is implemented by handles that hold backend resources.
// Free is only called on pool shutdown.
type Freer interface {
	Free()
}

// Template creates new instances of one effect resource.
type Template interface {
	Instantiate() (Handle, error)
}

// Loader resolves an effect's resource ref into a Template.
type Loader interface {
	Load(ref string) (Template, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ref string) (Template, error)

func (f LoaderFunc) Load(ref string) (Template, error) { return f(ref) }

// TemplateFunc adapts a function to Template.
type TemplateFunc func() (Handle, error)

func (f TemplateFunc) Instantiate() (Handle, error) { return f() }

// SceneLoader serves in-memory scene instances for every ref known to lib.
func SceneLoader(lib *scene.Library) Loader {
	return LoaderFunc(func(ref string) (Template, error) {
		tmpl, err := lib.Resolve(ref)
		if err != nil {
			return nil, err
		}
		return TemplateFunc(func() (Handle, error) {
			return tmpl.New(), nil
		}), nil
	})
}
