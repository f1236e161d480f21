package prepare

import (
	"fmt"
	"sort"
)

// Registry selects recipes by name.
type Registry struct {
	recipes map[string]Recipe
}

// NewRegistry returns a registry holding the given recipes.
func NewRegistry(recipes ...Recipe) (*Registry, error) {
	r := &Registry{recipes: make(map[string]Recipe, len(recipes))}
	for _, rc := range recipes {
		if err := r.Register(rc); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultConfigs returns fresh configurations of every compiled-in recipe.
func DefaultConfigs() []RecipeConfig {
	return []RecipeConfig{HoomanConfig()}
}

// DefaultRegistry returns a registry with every compiled-in recipe.
func DefaultRegistry() *Registry {
	r, err := RegistryFromConfigs(DefaultConfigs()...)
	if err != nil {
		panic(fmt.Sprintf("compiled-in recipe config: %v", err))
	}
	return r
}

// RegistryFromConfigs builds one TimecourseRecipe per config.
func RegistryFromConfigs(cfgs ...RecipeConfig) (*Registry, error) {
	recipes := make([]Recipe, 0, len(cfgs))
	for _, c := range cfgs {
		rc, err := NewTimecourseRecipe(c)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, rc)
	}
	return NewRegistry(recipes...)
}

// Register adds rc; names must be unique.
func (r *Registry) Register(rc Recipe) error {
	if rc == nil || rc.Name() == "" {
		return fmt.Errorf("%w: recipe without a name", ErrInvalidRecipe)
	}
	if _, dup := r.recipes[rc.Name()]; dup {
		return fmt.Errorf("%w: recipe %q registered twice", ErrInvalidRecipe, rc.Name())
	}
	r.recipes[rc.Name()] = rc
	return nil
}

// Get returns the recipe called name.
func (r *Registry) Get(name string) (Recipe, error) {
	rc, ok := r.recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownRecipe, name, r.Names())
	}
	return rc, nil
}

// Names returns the registered recipe names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.recipes))
	for n := range r.recipes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
