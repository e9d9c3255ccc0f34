package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Catalog is the ordered list of scenes offered to the operator.
type Catalog struct {
	scenes []Descriptor
}

// DefaultCatalog builds the stock scenes for gravitational constant g.
func DefaultCatalog(g float64) *Catalog {
	return NewCatalog(
		Empty{},
		NewOrbits(g),
		NewFigure8(g),
		NewTernaryOrbit(g),
		NewDoubleOval(g),
	)
}

func NewCatalog(scenes ...Descriptor) *Catalog {
	return &Catalog{scenes: scenes}
}

func (c *Catalog) Add(d Descriptor) { c.scenes = append(c.scenes, d) }

func (c *Catalog) Len() int { return len(c.scenes) }

// At returns a fresh copy of the i-th scene.
func (c *Catalog) At(i int) Descriptor { return c.scenes[i].Clone() }

func (c *Catalog) Names() []string {
	names := make([]string, len(c.scenes))
	for i, s := range c.scenes {
		names[i] = s.Name()
	}
	return names
}

// Lookup finds a scene by name, ignoring case and separators, and returns a copy.
func (c *Catalog) Lookup(name string) (Descriptor, error) {
	key := normalize(name)
	for _, s := range c.scenes {
		if normalize(s.Name()) == key {
			return s.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownScene, name)
}

func normalize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToLower(name))
}

// Apply sets the named parameters on d in the order d lists them, so that
// bounds depending on earlier parameters see their new values.
func Apply(d dynamo.Configurable, params map[string]float64) error {
	known := make(map[string]bool, len(params))
	for _, p := range d.Params() {
		known[p.Name] = true
		v, ok := params[p.Name]
		if !ok {
			continue
		}
		if err := d.SetParam(p.Name, v); err != nil {
			return err
		}
	}
	names := make([]string, 0, len(params))
	for name := range params {
		if !known[name] {
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		sort.Strings(names)
		return &dynamo.ParamError{Name: names[0], Value: params[names[0]], Wrapped: dynamo.ErrUnknownParameter}
	}
	return nil
}
