package parser

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/daveroberts0321/renewdsl/model"
	"github.com/daveroberts0321/renewdsl/parser/grammar"
)

// maxCount is the largest multiplier a float64 literal holds exactly.
const maxCount = 1 << 53

// knownUnit reports whether u is in the unit vocabulary. The grammar already
// restricts units to this set; the check keeps the transformer honest if the
// two drift.
func knownUnit(u string) bool {
	switch u {
	case "m", "km", "hectares", "kW", "MW", "kWh/m²/day", "°", "h", "hour", "day", "year":
		return true
	}
	return false
}

// transformer turns one parse tree into one Model. A transformer is created
// per Parse call and never shared.
type transformer struct {
	lines *lineMap
}

// document is the only reduction that builds the Model; every section
// reduction returns its own record.
func (t *transformer) document(doc *grammar.Document) (*model.Model, error) {
	m := &model.Model{
		Equipment: []*model.Equipment{},
		Layouts:   []*model.Layout{},
	}

	for _, st := range doc.Statements {
		switch {
		case st.Site != nil:
			site, err := t.site(st.Site)
			if err != nil {
				return nil, err
			}
			m.Site = site
		case st.Equipment != nil:
			items, err := t.equipment(st.Equipment)
			if err != nil {
				return nil, err
			}
			m.Equipment = append(m.Equipment, items...)
		case st.Layout != nil:
			layout, err := t.layout(st.Layout)
			if err != nil {
				return nil, err
			}
			m.Layouts = append(m.Layouts, layout)
		case st.Simulate != nil:
			sim, err := t.simulation(st.Simulate)
			if err != nil {
				return nil, err
			}
			m.Simulation = sim
		case st.Optimize != nil:
			opt, err := t.optimization(st.Optimize)
			if err != nil {
				return nil, err
			}
			m.Optimization = opt
		default:
			return nil, t.malformed(st.Pos, "statement")
		}
	}

	return m, nil
}

func (t *transformer) site(b *grammar.SiteBlock) (*model.Site, error) {
	name, err := t.text(b.Pos, b.Name)
	if err != nil {
		return nil, err
	}

	site := &model.Site{Name: name}
	for _, a := range b.Attrs {
		switch {
		case a.Location != nil:
			c, err := t.coordinate(a.Location)
			if err != nil {
				return nil, err
			}
			site.Location = &c
		case a.Area != nil:
			q, err := t.quantity(a.Area)
			if err != nil {
				return nil, err
			}
			site.Area = &q
		case a.Terrain != nil:
			terrain, err := t.text(a.Pos, *a.Terrain)
			if err != nil {
				return nil, err
			}
			site.Terrain = terrain
		case a.Irradiance != nil:
			q, err := t.quantity(a.Irradiance)
			if err != nil {
				return nil, err
			}
			site.Irradiance = &q
		case a.Elevation != nil:
			q, err := t.quantity(a.Elevation)
			if err != nil {
				return nil, err
			}
			site.Elevation = &q
		default:
			return nil, t.malformed(a.Pos, "site attribute")
		}
	}
	return site, nil
}

func (t *transformer) equipment(b *grammar.EquipmentBlock) ([]*model.Equipment, error) {
	items := make([]*model.Equipment, 0, len(b.Items))
	for _, item := range b.Items {
		kind, err := model.ParseEquipmentKind(item.Kind)
		if err != nil {
			return nil, t.coercion(item.Pos, item.Kind, "equipment type", err)
		}
		name, err := t.text(item.Pos, item.Name)
		if err != nil {
			return nil, err
		}

		specs := make(map[string]model.SpecValue, len(item.Specs))
		for _, spec := range item.Specs {
			v, err := t.specValue(spec.Value)
			if err != nil {
				return nil, err
			}
			specs[spec.Name] = v
		}

		items = append(items, &model.Equipment{Kind: kind, Name: name, Specs: specs})
	}
	return items, nil
}

func (t *transformer) specValue(v *grammar.SpecValue) (model.SpecValue, error) {
	switch {
	case v.Number != nil:
		n, err := t.number(v.Pos, *v.Number)
		if err != nil {
			return nil, err
		}
		if v.Unit == nil {
			return model.Number(n), nil
		}
		unit, err := t.unit(v.Unit)
		if err != nil {
			return nil, err
		}
		return model.Quantity{Value: n, Unit: unit}, nil
	case v.Text != nil:
		s, err := t.text(v.Pos, *v.Text)
		if err != nil {
			return nil, err
		}
		return model.Text(s), nil
	}
	return nil, t.malformed(v.Pos, "spec value")
}

func (t *transformer) layout(b *grammar.LayoutBlock) (*model.Layout, error) {
	name, err := t.text(b.Pos, b.Name)
	if err != nil {
		return nil, err
	}

	layout := &model.Layout{Name: name}
	for _, a := range b.Attrs {
		switch {
		case a.Panels != nil:
			layout.Panels, err = t.ref(a.Panels)
		case a.Inverters != nil:
			layout.Inverters, err = t.ref(a.Inverters)
		case a.Turbines != nil:
			layout.Turbines, err = t.ref(a.Turbines)
		case a.Orientation != nil:
			layout.Orientation, err = model.ParseOrientation(*a.Orientation)
			if err != nil {
				err = t.coercion(a.Pos, *a.Orientation, "orientation", err)
			}
		case a.Tilt != nil:
			var tilt float64
			tilt, err = t.number(a.Pos, *a.Tilt)
			layout.Tilt = &tilt
		case a.RowSpacing != nil:
			var q model.Quantity
			q, err = t.quantity(a.RowSpacing)
			layout.RowSpacing = &q
		case a.Tracking != nil:
			layout.Tracking, err = model.ParseTrackingMode(*a.Tracking)
			if err != nil {
				err = t.coercion(a.Pos, *a.Tracking, "tracking mode", err)
			}
		default:
			err = t.malformed(a.Pos, "layout attribute")
		}
		if err != nil {
			return nil, err
		}
	}
	return layout, nil
}

func (t *transformer) ref(r *grammar.Ref) (*model.EquipmentRef, error) {
	ref := &model.EquipmentRef{Name: r.Name}
	if r.Count != nil {
		n, err := t.number(r.Pos, *r.Count)
		if err != nil {
			return nil, err
		}
		if n > maxCount {
			return nil, t.coercion(r.Pos, *r.Count, "count", fmt.Errorf("exceeds %d", int64(maxCount)))
		}
		count := int(n)
		ref.Count = &count
	}
	return ref, nil
}

func (t *transformer) simulation(b *grammar.SimulateBlock) (*model.Simulation, error) {
	sim := &model.Simulation{}
	for _, a := range b.Attrs {
		var err error
		switch {
		case a.Weather != nil:
			sim.Weather, err = t.weather(a.Weather)
		case a.Duration != nil:
			sim.Duration, err = t.duration(a.Duration)
		case a.Timestep != nil:
			sim.Timestep, err = t.duration(a.Timestep)
		case a.Outputs != nil:
			sim.Outputs = append([]string{}, a.Outputs.Names...)
		default:
			err = t.malformed(a.Pos, "simulate attribute")
		}
		if err != nil {
			return nil, err
		}
	}

	if sim.Outputs == nil {
		sim.Outputs = append([]string{}, model.DefaultOutputs...)
	}
	return sim, nil
}

func (t *transformer) weather(w *grammar.Weather) (*model.WeatherSource, error) {
	src := &model.WeatherSource{Provider: w.Provider, Args: make([]string, 0, len(w.Args))}
	for _, arg := range w.Args {
		s, err := t.text(w.Pos, arg)
		if err != nil {
			return nil, err
		}
		src.Args = append(src.Args, s)
	}
	return src, nil
}

func (t *transformer) optimization(b *grammar.OptimizeBlock) (*model.Optimization, error) {
	opt := &model.Optimization{
		Variables:   []string{},
		Constraints: []model.Constraint{},
		Algorithm:   model.DefaultAlgorithm,
	}

	for _, a := range b.Attrs {
		switch {
		case a.Objective != nil:
			mode, err := model.ParseObjectiveMode(a.Objective.Mode)
			if err != nil {
				return nil, t.coercion(a.Objective.Pos, a.Objective.Mode, "objective mode", err)
			}
			opt.Objective = &model.Objective{Mode: mode, Target: a.Objective.Target}
		case a.Variables != nil:
			opt.Variables = append([]string{}, a.Variables.Names...)
		case a.Algorithm != nil:
			algo, err := t.text(a.Pos, *a.Algorithm)
			if err != nil {
				return nil, err
			}
			opt.Algorithm = algo
		default:
			return nil, t.malformed(a.Pos, "optimize attribute")
		}
	}
	return opt, nil
}

func (t *transformer) coordinate(c *grammar.Coordinate) (model.Coordinate, error) {
	lat, err := t.hemisphere(c.Pos, c.Latitude, c.NorthSouth, "N", "S")
	if err != nil {
		return model.Coordinate{}, err
	}
	lon, err := t.hemisphere(c.Pos, c.Longitude, c.EastWest, "E", "W")
	if err != nil {
		return model.Coordinate{}, err
	}
	return model.Coordinate{Latitude: lat, Longitude: lon}, nil
}

// hemisphere signs a magnitude: positive keeps it, negative negates it.
func (t *transformer) hemisphere(pos lexer.Position, magnitude, dir, positive, negative string) (float64, error) {
	v, err := t.number(pos, magnitude)
	if err != nil {
		return 0, err
	}
	switch dir {
	case positive:
		return v, nil
	case negative:
		return -v, nil
	}
	return 0, t.coercion(pos, dir, "hemisphere", fmt.Errorf("want %s or %s", positive, negative))
}

func (t *transformer) quantity(q *grammar.Quantity) (model.Quantity, error) {
	v, err := t.number(q.Pos, q.Value)
	if err != nil {
		return model.Quantity{}, err
	}
	unit, err := t.unit(q.Unit)
	if err != nil {
		return model.Quantity{}, err
	}
	return model.Quantity{Value: v, Unit: unit}, nil
}

// duration renders a quantity as "<number><unit>", e.g. "1.0year".
func (t *transformer) duration(q *grammar.Quantity) (string, error) {
	v, err := t.quantity(q)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (t *transformer) unit(u *grammar.Unit) (string, error) {
	if u == nil {
		return "", t.malformed(lexer.Position{}, "unit")
	}
	if !knownUnit(u.Name) {
		return "", t.coercion(u.Pos, u.Name, "unit", fmt.Errorf("not in unit vocabulary"))
	}
	return u.Name, nil
}

func (t *transformer) number(pos lexer.Position, lit string) (float64, error) {
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, t.coercion(pos, lit, "number", err)
	}
	return v, nil
}

// text strips the quotes from a string literal and decodes Go-style escapes.
func (t *transformer) text(pos lexer.Position, lit string) (string, error) {
	s, err := strconv.Unquote(lit)
	if err != nil {
		return "", t.coercion(pos, lit, "string", err)
	}
	return s, nil
}

func (t *transformer) coercion(pos lexer.Position, lit, target string, err error) error {
	return &LiteralCoercionError{Pos: t.lines.position(pos), Literal: lit, Target: target, Err: err}
}

func (t *transformer) malformed(pos lexer.Position, what string) error {
	return &SyntaxError{Pos: t.lines.position(pos), Msg: "malformed " + what}
}
