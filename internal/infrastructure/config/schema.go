package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/bnema/webhub/internal/domain/entity"
)

// GenerateSchema returns the JSON schema of webhub.toml.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag:               "toml",
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&entity.AppConfig{})

	schema.ID = "https://github.com/bnema/webhub/webhub.schema.json"
	schema.Title = "webhub configuration"
	schema.Description = "Webapps, proxy and window limits of webhub"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// WriteSchema writes the schema next to the config file and returns its path.
func (s *Store) WriteSchema() (string, error) {
	data, err := GenerateSchema()
	if err != nil {
		return "", err
	}
	path := s.SchemaPath()
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to write schema file: %w", err)
	}
	return path, nil
}
