package cleaner

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-yaml"
)

// Rule is one normalization step applied to a column's cells before typed
// record construction.
type Rule string

const (
	// RuleTrim removes surrounding whitespace.
	RuleTrim Rule = "trim"
	// RuleUpper upper-cases the cell (NOAA categorical columns are nominally
	// upper case but arrive mixed).
	RuleUpper Rule = "upper"
	// RuleLower lower-cases the cell.
	RuleLower Rule = "lower"
	// RuleCollapseSpace collapses internal runs of whitespace to one space.
	RuleCollapseSpace Rule = "collapse_space"
)

var knownRules = map[Rule]bool{
	RuleTrim:          true,
	RuleUpper:         true,
	RuleLower:         true,
	RuleCollapseSpace: true,
}

// Column describes how one column is normalized.
type Column struct {
	Rules    []Rule `yaml:"rules"`
	Required bool   `yaml:"required"`
	Default  string `yaml:"default"`
	Drop     bool   `yaml:"drop"`
}

// TableSpec maps column names to their normalization behavior. Columns not
// listed are passed through trimmed only.
type TableSpec struct {
	Columns map[string]Column `yaml:"columns"`
}

// Spec is the full field-normalization specification for the three tables.
type Spec struct {
	Details    TableSpec `yaml:"details"`
	Fatalities TableSpec `yaml:"fatalities"`
	Locations  TableSpec `yaml:"locations"`
}

// DefaultSpec returns the embedded normalization spec matching the NOAA bulk
// file conventions. LoadSpec can override it from a YAML file.
func DefaultSpec() Spec {
	return Spec{
		Details: TableSpec{Columns: map[string]Column{
			"EVENT_ID":        {Rules: []Rule{RuleTrim}, Required: true},
			"EVENT_TYPE":      {Rules: []Rule{RuleTrim, RuleCollapseSpace}},
			"BEGIN_YEARMONTH": {Rules: []Rule{RuleTrim}, Required: true},
			"BEGIN_DAY":       {Rules: []Rule{RuleTrim}, Required: true},
			"BEGIN_TIME":      {Rules: []Rule{RuleTrim}},
			"END_YEARMONTH":   {Rules: []Rule{RuleTrim}},
			"END_DAY":         {Rules: []Rule{RuleTrim}},
			"END_TIME":        {Rules: []Rule{RuleTrim}},
			"MAGNITUDE":       {Rules: []Rule{RuleTrim}},
			"DAMAGE_PROPERTY": {Rules: []Rule{RuleTrim, RuleUpper}, Default: "0"},
			"DAMAGE_CROPS":    {Rules: []Rule{RuleTrim, RuleUpper}, Default: "0"},
		}},
		Fatalities: TableSpec{Columns: map[string]Column{
			"EVENT_ID":          {Rules: []Rule{RuleTrim}, Required: true},
			"FATALITY_ID":       {Rules: []Rule{RuleTrim}},
			"FATALITY_TYPE":     {Rules: []Rule{RuleTrim, RuleUpper}},
			"FATALITY_AGE":      {Rules: []Rule{RuleTrim}},
			"FATALITY_SEX":      {Rules: []Rule{RuleTrim, RuleUpper}},
			"FATALITY_LOCATION": {Rules: []Rule{RuleTrim, RuleLower, RuleCollapseSpace}},
		}},
		Locations: TableSpec{Columns: map[string]Column{
			"EVENT_ID":  {Rules: []Rule{RuleTrim}, Required: true},
			"STATE":     {Rules: []Rule{RuleTrim, RuleUpper}},
			"CZ_NAME":   {Rules: []Rule{RuleTrim, RuleUpper}},
			"LOCATION":  {Rules: []Rule{RuleTrim, RuleCollapseSpace}},
			"RANGE":     {Rules: []Rule{RuleTrim}},
			"AZIMUTH":   {Rules: []Rule{RuleTrim, RuleUpper}},
			"LATITUDE":  {Rules: []Rule{RuleTrim}},
			"LONGITUDE": {Rules: []Rule{RuleTrim}},
			// Legacy duplicate coordinate columns, never carried forward.
			"LAT2": {Drop: true},
			"LON2": {Drop: true},
		}},
	}
}

// LoadSpec reads a normalization spec from a YAML file and validates that
// every rule is known.
func LoadSpec(path string) (Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("load spec: %w", err)
	}

	var s Spec
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Spec{}, fmt.Errorf("parse spec %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return Spec{}, fmt.Errorf("spec %s: %w", path, err)
	}
	return s, nil
}

func (s Spec) validate() error {
	for _, t := range []struct {
		name string
		spec TableSpec
	}{
		{"details", s.Details},
		{"fatalities", s.Fatalities},
		{"locations", s.Locations},
	} {
		names := make([]string, 0, len(t.spec.Columns))
		for col := range t.spec.Columns {
			names = append(names, col)
		}
		sort.Strings(names)
		for _, col := range names {
			for _, r := range t.spec.Columns[col].Rules {
				if !knownRules[r] {
					return fmt.Errorf("%s.%s: unknown rule %q", t.name, col, r)
				}
			}
		}
	}
	return nil
}
