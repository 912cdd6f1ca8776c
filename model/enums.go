package model

import "fmt"

// EquipmentKind is the closed set of equipment types.
type EquipmentKind string

const (
	Panel    EquipmentKind = "panel"
	Inverter EquipmentKind = "inverter"
	Turbine  EquipmentKind = "turbine"
	Battery  EquipmentKind = "battery"
)

// Orientation is the compass direction a layout faces.
type Orientation string

const (
	South Orientation = "south"
	North Orientation = "north"
	East  Orientation = "east"
	West  Orientation = "west"
)

// TrackingMode is how panels follow the sun.
type TrackingMode string

const (
	Fixed      TrackingMode = "fixed"
	SingleAxis TrackingMode = "single_axis"
	DualAxis   TrackingMode = "dual_axis"
)

// ObjectiveMode is the direction of an optimization objective.
type ObjectiveMode string

const (
	Maximize ObjectiveMode = "maximize"
	Minimize ObjectiveMode = "minimize"
)

// ParseEquipmentKind validates s against the equipment types.
func ParseEquipmentKind(s string) (EquipmentKind, error) {
	switch k := EquipmentKind(s); k {
	case Panel, Inverter, Turbine, Battery:
		return k, nil
	}
	return "", fmt.Errorf("unknown equipment type %q", s)
}

// ParseOrientation validates s against the compass points.
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(s); o {
	case South, North, East, West:
		return o, nil
	}
	return "", fmt.Errorf("unknown orientation %q", s)
}

// ParseTrackingMode validates s against the tracking modes.
func ParseTrackingMode(s string) (TrackingMode, error) {
	switch m := TrackingMode(s); m {
	case Fixed, SingleAxis, DualAxis:
		return m, nil
	}
	return "", fmt.Errorf("unknown tracking mode %q", s)
}

// ParseObjectiveMode validates s against maximize and minimize.
func ParseObjectiveMode(s string) (ObjectiveMode, error) {
	switch m := ObjectiveMode(s); m {
	case Maximize, Minimize:
		return m, nil
	}
	return "", fmt.Errorf("unknown objective mode %q", s)
}
