package schema

import "fmt"

// Registry holds every loaded entity by logical name. It is built once at
// startup and read-only afterwards, so concurrent reads need no locking.
var Registry = map[string]*Entity{}

func InitRegistry(dir string) error {
	if err := LoadEntitiesFromDir(dir); err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	if err := LinkRelations(); err != nil {
		return fmt.Errorf("link error: %w", err)
	}
	if err := ValidateWhitelists(); err != nil {
		return fmt.Errorf("whitelist error: %w", err)
	}
	return nil
}

// ByResource finds the entity registered under a URL resource segment
// (e.g. "order-items"). Falls back to the logical name.
func ByResource(resource string) *Entity {
	for _, e := range Registry {
		if e.Resource == resource {
			return e
		}
	}
	if e, ok := Registry[resource]; ok {
		return e
	}
	return nil
}
