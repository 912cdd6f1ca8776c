package parser

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daveroberts0321/renewdsl/model"
)

func intPtr(n int) *int { return &n }

func TestParseSiteLocation(t *testing.T) {
	m, err := Parse(`site "Solar One":
    location: 10.0°N, 20.0°E
`)
	require.NoError(t, err)
	require.NotNil(t, m.Site)
	assert.Equal(t, "Solar One", m.Site.Name)
	require.NotNil(t, m.Site.Location)
	assert.Equal(t, 10.0, m.Site.Location.Latitude)
	assert.Equal(t, 20.0, m.Site.Location.Longitude)
}

func TestParseHemisphereSign(t *testing.T) {
	tests := []struct {
		coord   string
		lat     float64
		lon     float64
		display string
	}{
		{"10°N, 10°E", 10, 10, "10.0°N, 10.0°E"},
		{"10°S, 10°E", -10, 10, "10.0°S, 10.0°E"},
		{"10°N, 10°W", 10, -10, "10.0°N, 10.0°W"},
		{"10.5°S, 120.25°W", -10.5, -120.25, "10.5°S, 120.25°W"},
	}
	for _, tt := range tests {
		t.Run(tt.coord, func(t *testing.T) {
			m, err := Parse("site \"S\":\n    location: " + tt.coord + "\n")
			require.NoError(t, err)
			assert.Equal(t, model.Coordinate{Latitude: tt.lat, Longitude: tt.lon}, *m.Site.Location)
			assert.Equal(t, tt.display, m.Site.Location.String())
		})
	}
}

func TestParseSpecLastOneWins(t *testing.T) {
	m, err := Parse(`equipment:
    panel "P1":
        capacity: 400kW
        capacity: 500kW
`)
	require.NoError(t, err)
	require.Len(t, m.Equipment, 1)
	assert.Equal(t, model.Quantity{Value: 500, Unit: "kW"}, m.Equipment[0].Specs["capacity"])
	assert.Len(t, m.Equipment[0].Specs, 1)
}

func TestParseLayoutMultiplier(t *testing.T) {
	m, err := Parse(`layout "L1":
    panels: P1 * 200
    tracking: fixed
`)
	require.NoError(t, err)
	require.Len(t, m.Layouts, 1)
	assert.Equal(t, &model.EquipmentRef{Name: "P1", Count: intPtr(200)}, m.Layouts[0].Panels)
	assert.Equal(t, model.Fixed, m.Layouts[0].Tracking)
	assert.Equal(t, "P1 * 200", m.Layouts[0].Panels.String())
}

func TestParseLayoutRefWithoutCount(t *testing.T) {
	m, err := Parse("layout \"L1\":\n    turbines: V150\n    inverters: INV * 2.9\n")
	require.NoError(t, err)
	assert.Equal(t, &model.EquipmentRef{Name: "V150"}, m.Layouts[0].Turbines)
	assert.Equal(t, &model.EquipmentRef{Name: "INV", Count: intPtr(2)}, m.Layouts[0].Inverters)
}

func TestParseUnknownLayoutAttribute(t *testing.T) {
	_, err := Parse(`layout "L1":
    panels: P1 * 200
    colour: blue
`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
	assert.False(t, errors.Is(err, ErrLiteral))

	var serr *SyntaxError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "colour", serr.Token)
	assert.Equal(t, 3, serr.Pos.Line)
	assert.Equal(t, 5, serr.Pos.Column)
	assert.Contains(t, serr.Error(), "line 3, column 5")
}

func TestParseUnknownFirstAttributeNamesToken(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		token string
		line  int
	}{
		{"site", "site \"S\":\n    colour: blue\n", "colour", 2},
		{"layout", "layout \"L\":\n    colour: blue\n", "colour", 2},
		{"simulate", "simulate:\n    speed: 2 h\n", "speed", 2},
		{"optimize", "optimize:\n    constraints: [tilt]\n", "constraints", 2},
		{"equipment", "equipment:\n    pump \"P\"\n", "pump", 2},
		{"spec block", "equipment:\n    panel \"P\":\n        \"capacity\": 1\n", `"capacity"`, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)

			var serr *SyntaxError
			require.True(t, errors.As(err, &serr), "got %T: %v", err, err)
			assert.Equal(t, tt.token, serr.Token)
			assert.Equal(t, tt.line, serr.Pos.Line)
			assert.Equal(t, 5+4*(tt.line-2), serr.Pos.Column)
			assert.Contains(t, serr.Error(), strings.Trim(tt.token, `"`))
		})
	}
}

func TestParseCountOutOfRange(t *testing.T) {
	_, err := Parse("layout \"L\":\n    panels: P1 * 99999999999999999999\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLiteral))

	var lerr *LiteralCoercionError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "count", lerr.Target)
	assert.Equal(t, "99999999999999999999", lerr.Literal)
	assert.Equal(t, 2, lerr.Pos.Line)

	m, err := Parse("layout \"L\":\n    panels: P1 * 9007199254740992\n")
	require.NoError(t, err)
	assert.Equal(t, 1<<53, *m.Layouts[0].Panels.Count)
}

func TestParseNumberBeyondFloatRange(t *testing.T) {
	huge := "1" + strings.Repeat("0", 400)
	_, err := Parse("site \"S\":\n    area: " + huge + " m\n")
	require.Error(t, err)

	var lerr *LiteralCoercionError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "number", lerr.Target)
	assert.Equal(t, huge, lerr.Literal)
}

func TestParseSimulationDefaults(t *testing.T) {
	m, err := Parse("simulate:\n    duration: 1 year\n    timestep: 0.5 h\n")
	require.NoError(t, err)
	require.NotNil(t, m.Simulation)
	assert.Equal(t, []string{"generation", "capacity_factor"}, m.Simulation.Outputs)
	assert.Equal(t, "1.0year", m.Simulation.Duration)
	assert.Equal(t, "0.5h", m.Simulation.Timestep)
	assert.Nil(t, m.Simulation.Weather)

	// The default must not alias the package-level slice.
	m.Simulation.Outputs[0] = "changed"
	assert.Equal(t, "generation", model.DefaultOutputs[0])
}

func TestParseOptimizationDefaults(t *testing.T) {
	m, err := Parse("optimize:\n    objective: maximize(energy)\n")
	require.NoError(t, err)
	require.NotNil(t, m.Optimization)
	assert.Equal(t, &model.Objective{Mode: model.Maximize, Target: "energy"}, m.Optimization.Objective)
	assert.Equal(t, []string{}, m.Optimization.Variables)
	assert.Equal(t, []model.Constraint{}, m.Optimization.Constraints)
	assert.Equal(t, model.DefaultAlgorithm, m.Optimization.Algorithm)
}

func TestParseFile(t *testing.T) {
	m, err := ParseFile("testdata/solar_farm.renew")
	require.NoError(t, err)

	require.NotNil(t, m.Site)
	assert.Equal(t, "Mojave Flats", m.Site.Name)
	assert.Equal(t, &model.Coordinate{Latitude: 35, Longitude: -115}, m.Site.Location)
	assert.Equal(t, &model.Quantity{Value: 50, Unit: "hectares"}, m.Site.Area)
	assert.Equal(t, "flat", m.Site.Terrain)
	assert.Equal(t, &model.Quantity{Value: 6.2, Unit: "kWh/m²/day"}, m.Site.Irradiance)
	assert.Equal(t, &model.Quantity{Value: 900, Unit: "m"}, m.Site.Elevation)

	require.Len(t, m.Equipment, 3)
	panel := m.Equipment[0]
	assert.Equal(t, model.Panel, panel.Kind)
	assert.Equal(t, "SunPower400", panel.Name)
	assert.Equal(t, map[string]model.SpecValue{
		"capacity":   model.Quantity{Value: 400, Unit: "kW"},
		"efficiency": model.Number(22.5),
		"vendor":     model.Text("SunPower"),
	}, panel.Specs)
	assert.Equal(t, model.Inverter, m.Equipment[1].Kind)
	assert.Equal(t, model.Battery, m.Equipment[2].Kind)
	assert.Empty(t, m.Equipment[2].Specs)

	require.Len(t, m.Layouts, 1)
	tilt := 30.0
	assert.Equal(t, &model.Layout{
		Name:        "main",
		Panels:      &model.EquipmentRef{Name: "SunPower400", Count: intPtr(1000)},
		Inverters:   &model.EquipmentRef{Name: "SMA2500", Count: intPtr(2)},
		Orientation: model.South,
		Tilt:        &tilt,
		RowSpacing:  &model.Quantity{Value: 5.5, Unit: "m"},
		Tracking:    model.SingleAxis,
	}, m.Layouts[0])

	assert.Equal(t, &model.Simulation{
		Weather:  &model.WeatherSource{Provider: "tmy", Args: []string{"35.0", "-115.0"}},
		Duration: "1.0year",
		Timestep: "1.0hour",
		Outputs:  []string{"generation", "capacity_factor"},
	}, m.Simulation)

	assert.Equal(t, &model.Optimization{
		Objective:   &model.Objective{Mode: model.Maximize, Target: "energy"},
		Variables:   []string{"tilt", "row_spacing"},
		Constraints: []model.Constraint{},
		Algorithm:   "genetic",
	}, m.Optimization)
}

func TestParseDeterministic(t *testing.T) {
	src, err := os.ReadFile("testdata/solar_farm.renew")
	require.NoError(t, err)

	first, err := Parse(string(src))
	require.NoError(t, err)
	second, err := Parse(string(src))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("parses differ (-first +second):\n%s", diff)
	}
}

func TestParseConcurrentCallsAreIsolated(t *testing.T) {
	src, err := os.ReadFile("testdata/solar_farm.renew")
	require.NoError(t, err)

	want, err := Parse(string(src))
	require.NoError(t, err)

	var wg sync.WaitGroup
	models := make([]*model.Model, 8)
	for i := range models {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := Parse(string(src))
			if err == nil {
				models[i] = m
			}
		}(i)
	}
	wg.Wait()

	for i, m := range models {
		require.NotNil(t, m, "parse %d failed", i)
		assert.Empty(t, cmp.Diff(want, m))
	}
	assert.NotSame(t, models[0], models[1])
	assert.NotSame(t, models[0].Equipment[0], models[1].Equipment[0])
}

func TestParseAttributeOrderIndependent(t *testing.T) {
	a, err := Parse(`layout "L":
    panels: P1 * 10
    orientation: east
    tilt: 15°
    row_spacing: 4 m
    tracking: dual_axis
`)
	require.NoError(t, err)
	b, err := Parse(`layout "L":
    tracking: dual_axis
    row_spacing: 4 m
    tilt: 15°
    orientation: east
    panels: P1 * 10
`)
	require.NoError(t, err)
	assert.Equal(t, a.Layouts[0], b.Layouts[0])

	c, err := Parse("site \"S\":\n    elevation: 10 m\n    location: 1°S, 2°W\n    terrain: \"hill\"\n")
	require.NoError(t, err)
	d, err := Parse("site \"S\":\n    terrain: \"hill\"\n    location: 1°S, 2°W\n    elevation: 10 m\n")
	require.NoError(t, err)
	assert.Equal(t, c.Site, d.Site)
}

func TestParseSectionMergeRules(t *testing.T) {
	m, err := Parse(`site "First":
    location: 1°N, 1°E

equipment:
    panel "P":
        capacity: 1 kW

layout "A":
    tilt: 10°

simulate:
    outputs: [generation]

site "Second":
    location: 2°N, 2°E

equipment:
    panel "P":
        capacity: 2 kW
    turbine "T"

layout "B":
    tilt: 20°

simulate:
    duration: 1 day
`)
	require.NoError(t, err)

	assert.Equal(t, "Second", m.Site.Name)

	require.Len(t, m.Equipment, 3)
	assert.Equal(t, "P", m.Equipment[0].Name)
	assert.Equal(t, "P", m.Equipment[1].Name)
	assert.Equal(t, model.Quantity{Value: 2, Unit: "kW"}, m.Equipment[1].Specs["capacity"])
	assert.Equal(t, model.Turbine, m.Equipment[2].Kind)

	first, ok := m.FindEquipment("P")
	require.True(t, ok)
	assert.Same(t, m.Equipment[0], first)

	require.Len(t, m.Layouts, 2)
	assert.Equal(t, "A", m.Layouts[0].Name)
	assert.Equal(t, "B", m.Layouts[1].Name)

	// The second simulate block replaces the first entirely.
	assert.Equal(t, "1.0day", m.Simulation.Duration)
	assert.Equal(t, model.DefaultOutputs, m.Simulation.Outputs)
}

func TestParseStringEscapes(t *testing.T) {
	m, err := Parse("site \"Caf\\u00e9 \\\"One\\\"\":\n    terrain: \"a\\tb\"\n")
	require.NoError(t, err)
	assert.Equal(t, `Café "One"`, m.Site.Name)
	assert.Equal(t, "a\tb", m.Site.Terrain)
}

func TestParseInvalidEscape(t *testing.T) {
	_, err := Parse("site \"S\":\n    terrain: \"bad \\q\"\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLiteral))

	var lerr *LiteralCoercionError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "string", lerr.Target)
	assert.Equal(t, `"bad \q"`, lerr.Literal)
	assert.Equal(t, 2, lerr.Pos.Line)
}

func TestParseCommentsTabsAndCRLF(t *testing.T) {
	src := "# header\r\nsite \"S\": # trailing\r\n\tlocation: 1°N, 2°E\r\n\r\n\t# inside\r\n\tarea: 3 km\r\n"
	m, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, &model.Coordinate{Latitude: 1, Longitude: 2}, m.Site.Location)
	assert.Equal(t, &model.Quantity{Value: 3, Unit: "km"}, m.Site.Area)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unknown orientation", "layout \"L\":\n    orientation: southwest\n", 2},
		{"unknown unit", "site \"S\":\n    area: 50 acres\n", 2},
		{"unknown spec unit", "equipment:\n    panel \"P\":\n        capacity: 400 kWp\n", 3},
		{"empty block", "simulate:\n\noptimize:\n    algorithm: \"x\"\n", 3},
		{"indented first line", "    site \"S\":\n        location: 1°N, 1°E\n", 1},
		{"constraints are not in the grammar", "optimize:\n    constraints: [tilt]\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseString("site.renew", tt.src)
			require.Error(t, err)
			assert.Nil(t, m)

			var serr *SyntaxError
			require.True(t, errors.As(err, &serr), "got %T: %v", err, err)
			assert.Equal(t, tt.line, serr.Pos.Line)
			assert.Equal(t, "site.renew", serr.Pos.File)
			assert.True(t, strings.HasPrefix(err.Error(), "site.renew:"))
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
}

func TestParseReaderAndMissingFile(t *testing.T) {
	m, err := ParseReader("inline", strings.NewReader("optimize:\n    variables: [tilt]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"tilt"}, m.Optimization.Variables)

	_, err = ParseFile("testdata/does-not-exist.renew")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
