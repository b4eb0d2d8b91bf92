package activities

import (
	"github.com/speaklexi/lesson-service/internal/models"
)

// Definition describes one registered activity type: its canonical backend
// key, the alternate names it resolves under, and the minimum item count its
// content must carry.
type Definition struct {
	Key      models.ActivityType
	Aliases  []string
	MinItems int
	Manager  Manager
}

// Registry is the single lookup table for activity types. It is populated at
// construction and never mutated afterwards, so one instance can be shared
// across sessions and parallel test fixtures. Adding a new activity type
// means one Definition plus one Manager; nothing else hardcodes the type set.
type Registry struct {
	byName      map[string]*Definition
	definitions []*Definition
}

// NewRegistry builds a registry with the five built-in activity types.
// Every type resolves under both its canonical key and its editor-local
// (Spanish) alias, so the adapter and the editor share one lookup.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Definition)}

	r.register(&Definition{
		Key:      models.TypeMultipleChoice,
		Aliases:  []string{"seleccion_multiple"},
		MinItems: 2,
		Manager:  MultipleChoice{},
	})
	r.register(&Definition{
		Key:      models.TypeTrueFalse,
		Aliases:  []string{"verdadero_falso"},
		MinItems: 1,
		Manager:  TrueFalse{},
	})
	r.register(&Definition{
		Key:      models.TypeFillBlank,
		Aliases:  []string{"completar_espacios"},
		MinItems: 1,
		Manager:  FillBlank{},
	})
	r.register(&Definition{
		Key:      models.TypeMatching,
		Aliases:  []string{"emparejamiento"},
		MinItems: 2,
		Manager:  Matching{},
	})
	r.register(&Definition{
		Key:      models.TypeWriting,
		Aliases:  []string{"escritura"},
		MinItems: 1,
		Manager:  Writing{},
	})

	return r
}

func (r *Registry) register(def *Definition) {
	r.definitions = append(r.definitions, def)
	r.byName[string(def.Key)] = def
	for _, alias := range def.Aliases {
		r.byName[alias] = def
	}
}

// Resolve looks up a type by canonical key or alias.
func (r *Registry) Resolve(nameOrAlias string) (*Definition, bool) {
	def, ok := r.byName[nameOrAlias]
	return def, ok
}

// Definitions returns the registered types in registration order.
func (r *Registry) Definitions() []*Definition {
	return r.definitions
}

// ManagerFor returns the manager for an activity's type, resolving through
// the alias set.
func (r *Registry) ManagerFor(a *models.Activity) (Manager, bool) {
	def, ok := r.Resolve(string(a.Type))
	if !ok {
		return nil, false
	}
	return def.Manager, true
}
