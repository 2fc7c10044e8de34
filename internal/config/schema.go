package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"travelsearch/internal/model"
)

// LoadSchema returns the built-in inventory alias table, with categories
// overridden by the YAML file at path when one is given.
//
// File layout:
//
//	yachts:
//	  table: charter_yachts
//	  fields:
//	    location: [marina, home_port]
//	    price: [weekly_rate]
//
// Fields listed for a category replace the built-in aliases of that field;
// unlisted fields keep their defaults.
func LoadSchema(path string) (model.Schema, error) {
	schema := model.DefaultSchema()
	if path == "" {
		return schema, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return MergeSchema(schema, data)
}

// MergeSchema applies a YAML override document on top of base
func MergeSchema(base model.Schema, data []byte) (model.Schema, error) {
	var overrides map[model.ServiceType]model.CategorySchema
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	for category, override := range overrides {
		if !category.Known() {
			return nil, fmt.Errorf("schema file: unknown category %q", category)
		}
		current := base[category]
		if override.Table != "" {
			current.Table = override.Table
		}
		if current.Fields == nil {
			current.Fields = map[model.Field][]string{}
		}
		for field, columns := range override.Fields {
			if len(columns) == 0 {
				return nil, fmt.Errorf("schema file: %s.%s has no columns", category, field)
			}
			current.Fields[field] = columns
		}
		base[category] = current
	}
	return base, nil
}
