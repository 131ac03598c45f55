package engine

import (
	"fmt"
	"strings"

	"github.com/maloquacious/vista/internal/props"
)

// Component names one of the four version counters, coarsest first.
type Component int

const (
	Major Component = iota
	Minor
	Patch
	Build
)

// All lists the components in precedence order.
var All = []Component{Major, Minor, Patch, Build}

var componentNames = [...]string{"major", "minor", "patch", "build"}

var componentKeys = [...]string{"VERSION_MAJOR", "VERSION_MINOR", "VERSION_PATCH", "BUILD_NUMBER"}

// EnvPrefix is prepended to a component's file key to form its override variable.
const EnvPrefix = "VISTA_"

// ParseComponent accepts a component name, case-insensitively.
func ParseComponent(s string) (Component, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range componentNames {
		if n == name {
			return Component(i), nil
		}
	}
	return 0, fmt.Errorf("unknown component %q: want one of %s", s, strings.Join(componentNames[:], ", "))
}

func (c Component) valid() bool {
	return c >= Major && c <= Build
}

func (c Component) String() string {
	if !c.valid() {
		return fmt.Sprintf("component(%d)", int(c))
	}
	return componentNames[c]
}

// Key is the version file key holding c, or "" if c is not a component.
func (c Component) Key() string {
	if !c.valid() {
		return ""
	}
	return componentKeys[c]
}

// EnvVar is the environment variable that overrides c in the effective
// version, or "" if c is not a component.
func (c Component) EnvVar() string {
	if !c.valid() {
		return ""
	}
	return EnvPrefix + componentKeys[c]
}

// Operation is the bump operation for c.
func (c Component) Operation() Operation {
	return Operation("bump-" + c.String())
}

func (c Component) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Component) UnmarshalText(b []byte) error {
	parsed, err := ParseComponent(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Operation names an engine operation for reporting and history.
type Operation string

const (
	OpBumpMajor Operation = "bump-major"
	OpBumpMinor Operation = "bump-minor"
	OpBumpPatch Operation = "bump-patch"
	OpBumpBuild Operation = "bump-build"
	OpEffective Operation = "effective-version"
)

// Components is a full version. Values are never negative.
type Components struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Patch int `json:"patch" yaml:"patch"`
	Build int `json:"build" yaml:"build"`
}

// FromSnapshot projects a snapshot onto Components. Missing or unparsable
// keys read as 0.
func FromSnapshot(s *props.Snapshot) Components {
	return Components{
		Major: s.Int(Major.Key(), 0),
		Minor: s.Int(Minor.Key(), 0),
		Patch: s.Int(Patch.Key(), 0),
		Build: s.Int(Build.Key(), 0),
	}
}

// Get returns the value of one component.
func (v Components) Get(c Component) int {
	switch c {
	case Major:
		return v.Major
	case Minor:
		return v.Minor
	case Patch:
		return v.Patch
	case Build:
		return v.Build
	}
	return 0
}

func (v *Components) set(c Component, n int) {
	switch c {
	case Major:
		v.Major = n
	case Minor:
		v.Minor = n
	case Patch:
		v.Patch = n
	case Build:
		v.Build = n
	}
}

// Bump increments c and zeroes every finer component.
func (v Components) Bump(c Component) Components {
	next := v
	next.set(c, v.Get(c)+1)
	for f := c + 1; f <= Build; f++ {
		next.set(f, 0)
	}
	return next
}

// applyBump writes the keys a bump of c touches: c itself and every finer
// component. Coarser keys and unrecognized keys are left as they were.
func (v Components) applyBump(s *props.Snapshot, c Component) {
	for f := c; f <= Build; f++ {
		s.Set(f.Key(), fmt.Sprint(v.Get(f)))
	}
}

// String formats MAJOR.MINOR.PATCH.BUILD.
func (v Components) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
}

// Tag formats the release tag vMAJOR.MINOR.PATCH.
func (v Components) Tag() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}
