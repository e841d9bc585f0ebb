package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dolmen-go/jsonmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlexec/internal/future"
	schema "github.com/hanpama/gqlexec/internal/schema"
)

const petsSDL = `
type Query {
  pets: [Pet]
  pet(name: String!): Pet
  favorite: CatOrDog
}

type Mutation {
  adopt(name: String!): Pet
}

interface Pet {
  name: String
}

type Dog implements Pet {
  name: String
  woofs: Boolean
}

type Cat implements Pet {
  name: String
  meows: Boolean
}

union CatOrDog = Cat | Dog
`

func petsSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch := mustBuildSchema(t, petsSDL)
	pets := []any{
		map[string]any{"__typename": "Dog", "name": "Odie", "woofs": true},
		map[string]any{"__typename": "Cat", "name": "Garfield", "meows": false},
	}
	require.NoError(t, sch.SetResolver("Query", "pets", resolveWith(pets)))
	require.NoError(t, sch.SetResolver("Query", "favorite", resolveWith(pets[1])))
	require.NoError(t, sch.SetResolver("Query", "pet", func(p schema.ResolveParams) (any, error) {
		for _, pet := range pets {
			if pet.(map[string]any)["name"] == p.Args["name"] {
				return pet, nil
			}
		}
		return nil, nil
	}))
	return sch
}

func TestExecuteSelectionSet_Fragments(t *testing.T) {
	query := `
query {
  pets { ...PetFields }
  favorite {
    __typename
    ... on Pet { name }
    ...CatFields
  }
}

fragment PetFields on Pet {
  name
  ... on Dog { woofs }
  ...CatFields
}

fragment CatFields on Cat { meows }
`
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			res := run(t, NewExecutor(petsSchema(t)), m.sync, query, nil)
			assert.JSONEq(t, `{"data": {
				"pets": [{"name": "Odie", "woofs": true}, {"name": "Garfield", "meows": false}],
				"favorite": {"__typename": "Cat", "name": "Garfield", "meows": false}
			}}`, toJSON(t, res))
		})
	}
}

func TestExecuteSelectionSet_ResponseKeyOrder(t *testing.T) {
	query := `{ favorite { ... on Cat { meows } name __typename ... on Cat { kind: __typename name } } }`
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			res := run(t, NewExecutor(petsSchema(t)), m.sync, query, nil)
			assert.Equal(t,
				`{"data":{"favorite":{"meows":false,"name":"Garfield","__typename":"Cat","kind":"Cat"}}}`,
				toJSON(t, res))
		})
	}
}

func TestExecuteSelectionSet_AliasesAndArguments(t *testing.T) {
	query := `{
  odie: pet(name: "Odie") { name }
  garfield: pet(name: "Garfield") { name }
  nobody: pet(name: "Nermal") { name }
}`
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			res := run(t, NewExecutor(petsSchema(t)), m.sync, query, nil)
			assert.Equal(t,
				`{"data":{"odie":{"name":"Odie"},"garfield":{"name":"Garfield"},"nobody":null}}`,
				toJSON(t, res))
		})
	}
}

func TestExecuteSelectionSet_MergesSameResponseName(t *testing.T) {
	var calls atomic.Int32
	sch := petsSchema(t)
	require.NoError(t, sch.SetResolver("Query", "favorite", func(schema.ResolveParams) (any, error) {
		calls.Add(1)
		return map[string]any{"__typename": "Dog", "name": "Odie", "woofs": true}, nil
	}))

	res := run(t, NewExecutor(sch), false, `{ favorite { name } favorite { ... on Dog { woofs } } }`, nil)
	assert.Equal(t, `{"data":{"favorite":{"name":"Odie","woofs":true}}}`, toJSON(t, res))
	assert.EqualValues(t, 1, calls.Load())
}

func TestExecuteSelectionSet_SkipAndInclude(t *testing.T) {
	query := `query ($yes: Boolean!, $no: Boolean!) {
  favorite {
    a: name @include(if: $yes)
    b: name @include(if: $no)
    c: name @skip(if: $yes)
    d: name @skip(if: $no)
    ... on Cat @skip(if: true) { meows }
    ...Kind @include(if: false)
    e: name @skip(if: false) @include(if: false)
  }
}

fragment Kind on Pet { __typename }`
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			res := runParams(t, NewExecutor(petsSchema(t)), m.sync, Params{
				Document:       mustParseQuery(t, query),
				VariableValues: map[string]any{"yes": true, "no": false},
			})
			assert.Equal(t, `{"data":{"favorite":{"a":"Garfield","d":"Garfield"}}}`, toJSON(t, res))
		})
	}
}

func TestExecuteSelectionSet_UnknownFieldIsOmitted(t *testing.T) {
	res := run(t, NewExecutor(petsSchema(t)), true, `{ favorite { name color } }`, nil)
	assert.Equal(t, `{"data":{"favorite":{"name":"Garfield"}}}`, toJSON(t, res))
}

func TestExecuteFieldsSerially_Mutation(t *testing.T) {
	sch := petsSchema(t)
	sch.SetMutationType("Mutation")

	var (
		mu      sync.Mutex
		order   []string
		running atomic.Int32
	)
	require.NoError(t, sch.SetResolver("Mutation", "adopt", func(p schema.ResolveParams) (any, error) {
		name := p.Args["name"].(string)
		return future.Go(func() (any, error) {
			if running.Add(1) > 1 {
				t.Errorf("mutation %s overlapped another one", name)
			}
			defer running.Add(-1)
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return map[string]any{"__typename": "Dog", "name": name}, nil
		}), nil
	}))

	query := `mutation { first: adopt(name: "A") { name } second: adopt(name: "B") { name } third: adopt(name: "C") { name } }`
	res := run(t, NewExecutor(sch), false, query, nil)

	assert.Equal(t, `{"data":{"first":{"name":"A"},"second":{"name":"B"},"third":{"name":"C"}}}`, toJSON(t, res))
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestExecuteFields_AsyncSiblingsRunConcurrently(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String b: String c: String }`)
	var started sync.WaitGroup
	started.Add(3)
	resolver := func(p schema.ResolveParams) (any, error) {
		started.Done()
		started.Wait()
		return p.Info.FieldName, nil
	}
	for _, f := range []string{"a", "b", "c"} {
		require.NoError(t, sch.SetResolver("Query", f, resolver))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := NewExecutor(sch).ExecuteRequest(ctx, Params{Document: mustParseQuery(t, `{ c b a }`)})
	assert.Equal(t, `{"data":{"c":"c","b":"b","a":"a"}}`, toJSON(t, res))
}

func TestWithMaxConcurrency(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { items: [Int] }`)
	var (
		active  atomic.Int32
		maxSeen atomic.Int32
	)
	items := make([]any, 20)
	for i := range items {
		items[i] = i
	}
	require.NoError(t, sch.SetResolver("Query", "items", resolveWith(items)))
	require.NoError(t, sch.SetSerializer("Int", func(v any) (any, error) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			seen := maxSeen.Load()
			if n <= seen || maxSeen.CompareAndSwap(seen, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return schema.SerializeInt(v)
	}))

	res := run(t, NewExecutor(sch, WithMaxConcurrency(2)), false, `{ items }`, nil)
	require.Nil(t, res.Errors)
	assert.LessOrEqual(t, maxSeen.Load(), int32(2))
	assert.Len(t, res.Data.(jsonmap.Ordered).Data["items"], 20)
}
