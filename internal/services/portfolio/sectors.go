package portfolio

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/vire-tracker/internal/models"
)

// OtherSector groups symbols missing from the sector table.
const OtherSector = "Other"

//go:embed sectors.yaml
var defaultSectors []byte

// SectorTable maps a symbol to its sector.
type SectorTable map[string]string

// Lookup returns the sector for symbol, or OtherSector.
func (t SectorTable) Lookup(symbol string) string {
	if s, ok := t[models.NormalizeSymbol(symbol)]; ok {
		return s
	}
	return OtherSector
}

// parse reads a sector -> symbols YAML document into t.
func (t SectorTable) parse(data []byte) error {
	var doc map[string][]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for sector, symbols := range doc {
		for _, sym := range symbols {
			if n := models.NormalizeSymbol(sym); n != "" {
				t[n] = sector
			}
		}
	}
	return nil
}

// DefaultSectors returns the embedded sector table.
func DefaultSectors() SectorTable {
	t := make(SectorTable)
	if err := t.parse(defaultSectors); err != nil {
		panic(fmt.Sprintf("embedded sectors.yaml: %v", err))
	}
	return t
}

// LoadSectors returns the embedded table with entries from path layered on top.
// An empty path returns the embedded table.
func LoadSectors(path string) (SectorTable, error) {
	t := DefaultSectors()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sectors file %s: %w", path, err)
	}
	if err := t.parse(data); err != nil {
		return nil, fmt.Errorf("failed to parse sectors file %s: %w", path, err)
	}
	return t, nil
}
