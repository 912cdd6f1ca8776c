// Package grammar implements the RenewDSL lexer and grammar.
// grammar.go defines the tokens and the parse tree; parser.go drives it.
package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// RenewDSL Grammar (over text already passed through indent.Preprocess):
//   Document    := Newline* Statement { Newline* Statement } Newline*
//   Statement   := Site | Equipment | Layout | Simulate | Optimize
//   Site        := 'site' STRING ':' Block(SiteAttr)
//   Equipment   := 'equipment' ':' Newline+ INDENT Item { Item } DEDENT
//   Item        := Kind STRING ( ':' Block(Spec) | Newline+ )
//   Spec        := IDENT ':' ( NUMBER [ Unit ] | STRING )
//   Layout      := 'layout' STRING ':' Block(LayoutAttr)
//   Simulate    := 'simulate' ':' Block(SimulateAttr)
//   Optimize    := 'optimize' ':' Block(OptimizeAttr)
//   Block(A)    := Newline+ INDENT A Newline+ { A Newline+ } DEDENT
//   Coordinate  := NUMBER '°' ('N'|'S') ',' NUMBER '°' ('E'|'W')
//   Quantity    := NUMBER Unit
//   Unit        := 'm' | 'km' | 'hectares' | 'kW' | 'MW' | 'kWh/m²/day'
//                | '°' | 'h' | 'hour' | 'day' | 'year'
//
// Every attribute starts with its own keyword, so attributes may appear in
// any order and one token of lookahead picks the production. The first
// attribute of a block sits outside the repetition so that an unknown keyword
// there fails as an unexpected token, not as an empty repetition.

// Lexer tokenizes preprocessed RenewDSL text. Rule order matters: earlier
// rules win, so markers and the compound unit come before identifiers.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "BlockStart", Pattern: `<INDENT>`},
	{Name: "BlockEnd", Pattern: `<DEDENT>`},
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\\n])*"`},
	{Name: "EnergyDensity", Pattern: `kWh/m²/day`},
	{Name: "Number", Pattern: `[0-9]+(?:\.[0-9]*)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Degree", Pattern: `°`},
	{Name: "Punct", Pattern: `[:,*()\[\]]`},
	{Name: "Newline", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

// Document is the root of the parse tree.
type Document struct {
	Pos        lexer.Position
	Statements []*Statement `Newline* ( @@ Newline* )+`
}

// Statement is exactly one top-level section.
type Statement struct {
	Pos       lexer.Position
	Site      *SiteBlock      `  @@`
	Equipment *EquipmentBlock `| @@`
	Layout    *LayoutBlock    `| @@`
	Simulate  *SimulateBlock  `| @@`
	Optimize  *OptimizeBlock  `| @@`
}

type SiteBlock struct {
	Pos   lexer.Position
	Name  string      `"site" @String ":" Newline+ BlockStart`
	Attrs []*SiteAttr `@@ Newline+ ( @@ Newline+ )* BlockEnd`
}

type SiteAttr struct {
	Pos        lexer.Position
	Location   *Coordinate `  "location" ":" @@`
	Area       *Quantity   `| "area" ":" @@`
	Terrain    *string     `| "terrain" ":" @String`
	Irradiance *Quantity   `| "irradiance" ":" @@`
	Elevation  *Quantity   `| "elevation" ":" @@`
}

type Coordinate struct {
	Pos        lexer.Position
	Latitude   string `@Number Degree`
	NorthSouth string `@( "N" | "S" ) ","`
	Longitude  string `@Number Degree`
	EastWest   string `@( "E" | "W" )`
}

type Quantity struct {
	Pos   lexer.Position
	Value string `@Number`
	Unit  *Unit  `@@`
}

// Unit is one entry of the closed unit vocabulary.
type Unit struct {
	Pos  lexer.Position
	Name string `@( "km" | "m" | "hectares" | "kW" | "MW" | EnergyDensity | Degree | "hour" | "h" | "day" | "year" )`
}

type EquipmentBlock struct {
	Pos   lexer.Position
	Items []*EquipmentItem `"equipment" ":" Newline+ BlockStart @@ @@* BlockEnd`
}

type EquipmentItem struct {
	Pos   lexer.Position
	Kind  string  `@( "panel" | "inverter" | "turbine" | "battery" )`
	Name  string  `@String`
	Specs []*Spec `( ":" Newline+ BlockStart @@ Newline+ ( @@ Newline+ )* BlockEnd | Newline+ )`
}

type Spec struct {
	Pos   lexer.Position
	Name  string     `@Ident ":"`
	Value *SpecValue `@@`
}

// SpecValue is a quantity (Number and Unit), a bare Number, or a Text.
type SpecValue struct {
	Pos    lexer.Position
	Number *string `  @Number`
	Unit   *Unit   `  @@?`
	Text   *string `| @String`
}

type LayoutBlock struct {
	Pos   lexer.Position
	Name  string        `"layout" @String ":" Newline+ BlockStart`
	Attrs []*LayoutAttr `@@ Newline+ ( @@ Newline+ )* BlockEnd`
}

type LayoutAttr struct {
	Pos         lexer.Position
	Panels      *Ref      `  "panels" ":" @@`
	Inverters   *Ref      `| "inverters" ":" @@`
	Turbines    *Ref      `| "turbines" ":" @@`
	Orientation *string   `| "orientation" ":" @( "south" | "north" | "east" | "west" )`
	Tilt        *string   `| "tilt" ":" @Number Degree`
	RowSpacing  *Quantity `| "row_spacing" ":" @@`
	Tracking    *string   `| "tracking" ":" @( "fixed" | "single_axis" | "dual_axis" )`
}

// Ref is an equipment name with an optional multiplier: P1 * 200.
type Ref struct {
	Pos   lexer.Position
	Name  string  `@Ident`
	Count *string `( "*" @Number )?`
}

type SimulateBlock struct {
	Pos   lexer.Position
	Attrs []*SimulateAttr `"simulate" ":" Newline+ BlockStart @@ Newline+ ( @@ Newline+ )* BlockEnd`
}

type SimulateAttr struct {
	Pos      lexer.Position
	Weather  *Weather  `  "weather" ":" @@`
	Duration *Quantity `| "duration" ":" @@`
	Timestep *Quantity `| "timestep" ":" @@`
	Outputs  *NameList `| "outputs" ":" @@`
}

type Weather struct {
	Pos      lexer.Position
	Provider string   `@Ident "("`
	Args     []string `@String ( "," @String )* ")"`
}

type NameList struct {
	Pos   lexer.Position
	Names []string `"[" @Ident ( "," @Ident )* "]"`
}

type OptimizeBlock struct {
	Pos   lexer.Position
	Attrs []*OptimizeAttr `"optimize" ":" Newline+ BlockStart @@ Newline+ ( @@ Newline+ )* BlockEnd`
}

type OptimizeAttr struct {
	Pos       lexer.Position
	Objective *Objective `  "objective" ":" @@`
	Variables *NameList  `| "variables" ":" @@`
	Algorithm *string    `| "algorithm" ":" @String`
}

type Objective struct {
	Pos    lexer.Position
	Mode   string `@( "maximize" | "minimize" )`
	Target string `"(" @Ident ")"`
}
