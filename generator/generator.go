// Package generator writes starter RenewDSL documents. Everything it writes
// is parsed first, so generated files always load.
package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/daveroberts0321/renewdsl/model"
	"github.com/daveroberts0321/renewdsl/parser"
)

const siteTemplate = `site %[1]s:
    location: 35.0°N, 115.0°W
    area: 50 hectares
    terrain: "flat"
    irradiance: 6.2 kWh/m²/day

equipment:
    panel "Panel400":
        capacity: 400 kW
        efficiency: 21.5
    inverter "Inverter2500":
        capacity: 2.5 MW

layout "main":
    panels: Panel400 * 1000
    inverters: Inverter2500 * 2
    orientation: south
    tilt: 30°
    row_spacing: 5 m
    tracking: fixed

simulate:
    duration: 1 year
    timestep: 1 hour
    outputs: [generation, capacity_factor]
`

// Site returns a starter document for a site called name.
func Site(name string) string {
	return fmt.Sprintf(siteTemplate, strconv.Quote(name))
}

// FileName turns a site name into a file name: "Solar One" -> "solar_one.renew".
func FileName(name, ext string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			sep = false
		case !sep:
			b.WriteRune('_')
			sep = true
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		slug = "site"
	}
	return slug + ext
}

// WriteSite writes a starter document for name into dir and returns its path.
// An existing file is left untouched.
func WriteSite(dir, name, ext string) (string, error) {
	path := filepath.Join(dir, FileName(name, ext))
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}

	content := Site(name)
	if _, err := parser.ParseString(path, content); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// AddEquipment appends an equipment section declaring one item to the
// document at path. Equipment sections accumulate, so the new item joins the
// existing catalog.
func AddEquipment(path string, kind model.EquipmentKind, name string) error {
	if _, err := model.ParseEquipmentKind(string(kind)); err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	content := string(existing)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += fmt.Sprintf("\nequipment:\n    %s %s\n", kind, strconv.Quote(name))

	if _, err := parser.ParseString(path, content); err != nil {
		return fmt.Errorf("document would not parse after adding %s %q: %w", kind, name, err)
	}
	return os.WriteFile(path, []byte(content), 0644)
}
