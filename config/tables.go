package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Tables names every source and target table. Names are spliced into SQL, so
// LoadTables only accepts plain (optionally schema-qualified) identifiers.
type Tables struct {
	Trees                string `yaml:"trees"`
	TreeAttributes       string `yaml:"tree_attributes"`
	TreeTags             string `yaml:"tree_tags"`
	Tags                 string `yaml:"tags"`
	Planters             string `yaml:"planters"`
	PlanterRegistrations string `yaml:"planter_registrations"`
	Devices              string `yaml:"devices"`
	Entities             string `yaml:"entities"`
	RawCaptures          string `yaml:"raw_captures"`
	Sessions             string `yaml:"sessions"`
	WalletRegistrations  string `yaml:"wallet_registrations"`
	DeviceConfigurations string `yaml:"device_configurations"`
	Captures             string `yaml:"captures"`
	CaptureTags          string `yaml:"capture_tags"`
	GrowerAccounts       string `yaml:"grower_accounts"`
}

func DefaultTables() Tables {
	return Tables{
		Trees:                "public.trees",
		TreeAttributes:       "public.tree_attributes",
		TreeTags:             "public.tree_tag",
		Tags:                 "public.tag",
		Planters:             "public.planter",
		PlanterRegistrations: "public.planter_registrations",
		Devices:              "public.devices",
		Entities:             "public.entity",
		RawCaptures:          "field_data.raw_capture",
		Sessions:             "field_data.session",
		WalletRegistrations:  "field_data.wallet_registration",
		DeviceConfigurations: "field_data.device_configuration",
		Captures:             "treetracker.capture",
		CaptureTags:          "treetracker.capture_tag",
		GrowerAccounts:       "treetracker.grower_account",
	}
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// LoadTables overlays the YAML file at path onto DefaultTables. An empty path
// returns the defaults.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return tables, fmt.Errorf("failed to read tables file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &tables); err != nil {
		return tables, fmt.Errorf("failed to parse tables file %s: %w", path, err)
	}

	return tables, tables.Validate()
}

func (t Tables) Validate() error {
	v := reflect.ValueOf(t)
	for i := 0; i < v.NumField(); i++ {
		name := v.Field(i).String()
		if !identifierRegex.MatchString(name) {
			return fmt.Errorf("table %s: %q is not a valid identifier", v.Type().Field(i).Tag.Get("yaml"), name)
		}
	}
	return nil
}
