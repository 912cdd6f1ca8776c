// Package model defines the typed RenewDSL document produced by the parser.
// Consumers (simulation, reporting) read these values; nothing here parses text.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate is a signed position in degrees. South and West are negative.
type Coordinate struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

func (c Coordinate) String() string {
	ns, ew := "N", "E"
	if c.Latitude < 0 {
		ns = "S"
	}
	if c.Longitude < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%s°%s, %s°%s", FormatNumber(math.Abs(c.Latitude)), ns, FormatNumber(math.Abs(c.Longitude)), ew)
}

// Quantity is a magnitude with its literal unit. Units are never converted.
type Quantity struct {
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit"`
}

func (q Quantity) String() string { return FormatNumber(q.Value) + q.Unit }

// Site describes where the installation is.
type Site struct {
	Name       string      `yaml:"name"`
	Location   *Coordinate `yaml:"location,omitempty"`
	Area       *Quantity   `yaml:"area,omitempty"`
	Terrain    string      `yaml:"terrain,omitempty"`
	Irradiance *Quantity   `yaml:"irradiance,omitempty"`
	Elevation  *Quantity   `yaml:"elevation,omitempty"`
}

// SpecValue is one equipment attribute value: a Quantity, a Number or a Text.
type SpecValue interface {
	isSpecValue()
	String() string
}

// Number is a bare numeric spec value.
type Number float64

// Text is a quoted string spec value.
type Text string

func (Quantity) isSpecValue() {}
func (Number) isSpecValue()   {}
func (Text) isSpecValue()     {}

func (n Number) String() string { return FormatNumber(float64(n)) }
func (t Text) String() string   { return strconv.Quote(string(t)) }

// Equipment is one catalog entry. Specs are free-form; no schema is tied to Kind.
type Equipment struct {
	Kind  EquipmentKind        `yaml:"type"`
	Name  string               `yaml:"name"`
	Specs map[string]SpecValue `yaml:"specs"`
}

// EquipmentRef points from a layout to equipment by name. It is not checked
// against the catalog.
type EquipmentRef struct {
	Name  string `yaml:"name"`
	Count *int   `yaml:"count,omitempty"`
}

func (r EquipmentRef) String() string {
	if r.Count != nil {
		return fmt.Sprintf("%s * %d", r.Name, *r.Count)
	}
	return r.Name
}

// Layout describes how a block of equipment is mounted.
type Layout struct {
	Name        string        `yaml:"name"`
	Panels      *EquipmentRef `yaml:"panels,omitempty"`
	Inverters   *EquipmentRef `yaml:"inverters,omitempty"`
	Turbines    *EquipmentRef `yaml:"turbines,omitempty"`
	Orientation Orientation   `yaml:"orientation,omitempty"`
	Tilt        *float64      `yaml:"tilt,omitempty"` // degrees
	RowSpacing  *Quantity     `yaml:"row_spacing,omitempty"`
	Tracking    TrackingMode  `yaml:"tracking,omitempty"`
}

// WeatherSource names a weather provider and its arguments.
type WeatherSource struct {
	Provider string   `yaml:"provider"`
	Args     []string `yaml:"args"`
}

func (w WeatherSource) String() string {
	args := make([]string, len(w.Args))
	for i, a := range w.Args {
		args[i] = strconv.Quote(a)
	}
	return fmt.Sprintf("%s(%s)", w.Provider, strings.Join(args, ", "))
}

// DefaultOutputs is used when a simulate block does not list outputs.
var DefaultOutputs = []string{"generation", "capacity_factor"}

// Simulation is the requested simulation run.
type Simulation struct {
	Weather  *WeatherSource `yaml:"weather,omitempty"`
	Duration string         `yaml:"duration,omitempty"`
	Timestep string         `yaml:"timestep,omitempty"`
	Outputs  []string       `yaml:"outputs"`
}

// Objective is the optimization target.
type Objective struct {
	Mode   ObjectiveMode `yaml:"mode"`
	Target string        `yaml:"target"`
}

func (o Objective) String() string { return fmt.Sprintf("%s(%s)", o.Mode, o.Target) }

// Constraint bounds an optimization variable. The grammar has no production
// for it yet, so parsed documents always carry an empty list.
type Constraint struct {
	Variable string  `yaml:"variable"`
	Operator string  `yaml:"operator"`
	Value    float64 `yaml:"value"`
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s %s %s", c.Variable, c.Operator, FormatNumber(c.Value))
}

// DefaultAlgorithm is used when an optimize block names no algorithm.
const DefaultAlgorithm = "gradient"

// Optimization is the requested optimization run.
type Optimization struct {
	Objective   *Objective   `yaml:"objective,omitempty"`
	Variables   []string     `yaml:"variables"`
	Constraints []Constraint `yaml:"constraints"`
	Algorithm   string       `yaml:"algorithm"`
}

// Model is the complete parsed document.
type Model struct {
	Site         *Site         `yaml:"site,omitempty"`
	Equipment    []*Equipment  `yaml:"equipment"`
	Layouts      []*Layout     `yaml:"layouts"`
	Simulation   *Simulation   `yaml:"simulation,omitempty"`
	Optimization *Optimization `yaml:"optimization,omitempty"`
}

// FindEquipment returns the first equipment entry with the given name.
func (m *Model) FindEquipment(name string) (*Equipment, bool) {
	for _, e := range m.Equipment {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

func (m *Model) String() string {
	var parts []string
	if m.Site != nil {
		parts = append(parts, "site="+m.Site.Name)
	}
	if len(m.Equipment) > 0 {
		parts = append(parts, fmt.Sprintf("equipment=%d", len(m.Equipment)))
	}
	if len(m.Layouts) > 0 {
		parts = append(parts, fmt.Sprintf("layouts=%d", len(m.Layouts)))
	}
	if m.Simulation != nil {
		parts = append(parts, "simulation")
	}
	if m.Optimization != nil {
		parts = append(parts, "optimization")
	}
	return "Model(" + strings.Join(parts, ", ") + ")"
}

// FormatNumber renders v in its shortest form, always keeping a decimal point
// for finite values ("1.0", "0.25", "1e+21").
func FormatNumber(v float64) string {
	format := byte('f')
	if a := math.Abs(v); a != 0 && (a < 1e-4 || a >= 1e16) {
		format = 'g'
	}
	s := strconv.FormatFloat(v, format, -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}
