package engine

import (
	"github.com/maloquacious/vista/internal/props"
)

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// MapLookup adapts a map to a LookupFunc.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// Source says where a resolved value came from.
type Source int

const (
	SourceDefault Source = iota
	SourceFile
	SourceEnv
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceEnv:
		return "env"
	}
	return "default"
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Resolved is the effective value of one component.
type Resolved struct {
	Component Component `json:"component" yaml:"component"`
	Value     int       `json:"value" yaml:"value"`
	Source    Source    `json:"source" yaml:"source"`
	// Origin is the variable or key the value was read from, empty for defaults.
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// ResolveComponent picks the value of c from the environment, then the
// snapshot, then zero. Unparsable values at either layer fall through.
// A value outside the four components always resolves to the default.
func ResolveComponent(s *props.Snapshot, lookup LookupFunc, c Component) Resolved {
	if !c.valid() {
		return Resolved{Component: c, Source: SourceDefault}
	}
	if lookup != nil {
		if raw, ok := lookup(c.EnvVar()); ok {
			if n, ok := props.ParseInt(raw); ok {
				return Resolved{Component: c, Value: n, Source: SourceEnv, Origin: c.EnvVar()}
			}
		}
	}
	if raw, ok := s.Get(c.Key()); ok {
		if n, ok := props.ParseInt(raw); ok {
			return Resolved{Component: c, Value: n, Source: SourceFile, Origin: c.Key()}
		}
	}
	return Resolved{Component: c, Source: SourceDefault}
}

// ResolveSnapshot resolves all four components in precedence order.
func ResolveSnapshot(s *props.Snapshot, lookup LookupFunc) []Resolved {
	out := make([]Resolved, 0, len(All))
	for _, c := range All {
		out = append(out, ResolveComponent(s, lookup, c))
	}
	return out
}

// Collapse folds resolved values back into Components.
func Collapse(resolved []Resolved) Components {
	var v Components
	for _, r := range resolved {
		v.set(r.Component, r.Value)
	}
	return v
}

// EffectiveComponents resolves every component against s and lookup.
func EffectiveComponents(s *props.Snapshot, lookup LookupFunc) Components {
	return Collapse(ResolveSnapshot(s, lookup))
}

// EffectiveVersion formats the effective MAJOR.MINOR.PATCH.BUILD string.
// It reads s and lookup only.
func EffectiveVersion(s *props.Snapshot, lookup LookupFunc) string {
	return EffectiveComponents(s, lookup).String()
}
