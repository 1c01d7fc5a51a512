package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func LoadEntitiesFromDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no entity descriptors (*.yml) found in %s", dir)
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		// 1. Parse into yaml.Node for structural validation
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("YAML parse error in %s: %w", path, err)
		}

		if len(root.Content) == 0 {
			return fmt.Errorf("empty YAML in %s", path)
		}

		if err := validateYAMLNode(root.Content[0], "entity"); err != nil {
			return fmt.Errorf("validation error in %s: %w", path, err)
		}

		// 2. Decode into the entity
		var entity Entity
		if err := root.Decode(&entity); err != nil {
			return fmt.Errorf("unmarshal error in %s: %w", path, err)
		}

		// 3. Register under the file name
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		entity.Name = strings.ToLower(name)
		if entity.Table == "" {
			return fmt.Errorf("entity '%s' has no table in %s", name, path)
		}
		if len(entity.Fields.Order) == 0 {
			return fmt.Errorf("entity '%s' declares no fields in %s", name, path)
		}
		Registry[entity.Name] = &entity
	}
	return nil
}
