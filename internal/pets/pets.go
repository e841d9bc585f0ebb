// Package pets is a small demo schema with an interface and a union over
// dogs and cats. It is used by the CLI and in end-to-end tests.
package pets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hanpama/gqlexec/internal/future"
	schema "github.com/hanpama/gqlexec/internal/schema"
)

// SDL is the schema served by NewSchema.
const SDL = `"Something waiting for a home."
interface Pet {
  id: ID!
  name: String!
  species: Species!
}

type Dog implements Pet {
  id: ID!
  name: String!
  species: Species!
  barks: Boolean!
}

type Cat implements Pet {
  id: ID!
  name: String!
  species: Species!
  meows: Boolean!
  lives: Int
}

union CatOrDog = Cat | Dog

enum Species {
  DOG
  CAT
}

type Query {
  pets: [Pet!]!
  pet(name: String!): Pet
  search(species: Species): [CatOrDog!]!
}

type Mutation {
  adopt(species: Species!, name: String!): Pet!
}
`

type Species string

const (
	SpeciesDog Species = "DOG"
	SpeciesCat Species = "CAT"
)

type Dog struct {
	ID    string
	Name  string
	Barks bool
}

func (Dog) Species() Species { return SpeciesDog }

type Cat struct {
	ID    string
	Name  string
	Meows bool
	Lives int
}

func (Cat) Species() Species { return SpeciesCat }

var ErrEmptyName = errors.New("name must not be empty")

// Store holds the pets in adoption order.
type Store struct {
	mu     sync.RWMutex
	pets   []any
	nextID int
}

// NewStore returns a store seeded with a couple of pets.
func NewStore() *Store {
	s := &Store{}
	s.add(&Dog{Name: "Odie", Barks: true})
	s.add(&Cat{Name: "Garfield", Meows: true, Lives: 9})
	s.add(&Dog{Name: "Snoopy"})
	return s
}

func (s *Store) add(p any) {
	s.nextID++
	id := strconv.Itoa(s.nextID)
	switch p := p.(type) {
	case *Dog:
		p.ID = id
	case *Cat:
		p.ID = id
	}
	s.pets = append(s.pets, p)
}

func (s *Store) All() []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]any(nil), s.pets...)
}

// Find returns the first pet with the given name, ignoring case, or nil.
func (s *Store) Find(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pets {
		if strings.EqualFold(petName(p), name) {
			return p
		}
	}
	return nil
}

// Search returns the pets of one species, or all of them when species is
// empty.
func (s *Store) Search(species Species) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []any{}
	for _, p := range s.pets {
		if species == "" || petSpecies(p) == species {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) Adopt(species Species, name string) (any, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	var p any
	switch species {
	case SpeciesDog:
		p = &Dog{Name: name}
	case SpeciesCat:
		p = &Cat{Name: name, Lives: 9}
	default:
		return nil, fmt.Errorf("unknown species %q", species)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(p)
	return p, nil
}

func petName(p any) string {
	switch p := p.(type) {
	case *Dog:
		return p.Name
	case *Cat:
		return p.Name
	}
	return ""
}

func petSpecies(p any) Species {
	switch p.(type) {
	case *Dog:
		return SpeciesDog
	case *Cat:
		return SpeciesCat
	}
	return ""
}

// Strategy selects how abstract pet values are mapped to Dog or Cat.
type Strategy int

const (
	// IsTypeOf attaches a predicate to Dog and Cat.
	IsTypeOf Strategy = iota
	// ResolveType attaches a type resolver to Pet and CatOrDog.
	ResolveType
)

type options struct {
	latency  time.Duration
	strategy Strategy
}

type Option func(*options)

// WithLatency makes every resolver and hook answer with a future completed
// after d on its own goroutine. Such a schema can only be executed
// asynchronously.
func WithLatency(d time.Duration) Option { return func(o *options) { o.latency = d } }

func WithStrategy(s Strategy) Option { return func(o *options) { o.strategy = s } }

// NewSchema builds the pets schema backed by store.
func NewSchema(store *Store, opts ...Option) (*schema.Schema, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	sch, err := schema.BuildFromSDL("pets.graphql", SDL)
	if err != nil {
		return nil, err
	}

	resolvers := map[string]schema.FieldResolveFunc{
		"Query.pets": func(p schema.ResolveParams) (any, error) {
			return answer(o.latency, store.All()), nil
		},
		"Query.pet": func(p schema.ResolveParams) (any, error) {
			return answer(o.latency, store.Find(p.Args["name"].(string))), nil
		},
		"Query.search": func(p schema.ResolveParams) (any, error) {
			species, _ := p.Args["species"].(string)
			return answer(o.latency, store.Search(Species(species))), nil
		},
		"Mutation.adopt": func(p schema.ResolveParams) (any, error) {
			pet, err := store.Adopt(Species(p.Args["species"].(string)), p.Args["name"].(string))
			if err != nil {
				return nil, err
			}
			return answer(o.latency, pet), nil
		},
	}
	for coord, fn := range resolvers {
		typeName, fieldName, _ := strings.Cut(coord, ".")
		if err := sch.SetResolver(typeName, fieldName, fn); err != nil {
			return nil, err
		}
	}

	switch o.strategy {
	case ResolveType:
		resolve := func(p schema.ResolveTypeParams) *future.Future[any] {
			var name any
			switch p.Value.(type) {
			case *Dog:
				name = "Dog"
			case *Cat:
				name = "Cat"
			}
			return answer(o.latency, name)
		}
		for _, abstract := range []string{"Pet", "CatOrDog"} {
			if err := sch.SetResolveType(abstract, resolve); err != nil {
				return nil, err
			}
		}
	default:
		if err := sch.SetIsTypeOf("Dog", func(p schema.IsTypeOfParams) *future.Future[bool] {
			_, ok := p.Value.(*Dog)
			return answer(o.latency, ok)
		}); err != nil {
			return nil, err
		}
		if err := sch.SetIsTypeOf("Cat", func(p schema.IsTypeOfParams) *future.Future[bool] {
			_, ok := p.Value.(*Cat)
			return answer(o.latency, ok)
		}); err != nil {
			return nil, err
		}
	}
	return sch, nil
}

func answer[T any](latency time.Duration, v T) *future.Future[T] {
	if latency <= 0 {
		return future.Ready(v)
	}
	return future.Go(func() (T, error) {
		time.Sleep(latency)
		return v, nil
	})
}
