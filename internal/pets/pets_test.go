package pets

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	executor "github.com/hanpama/gqlexec/internal/executor"
	language "github.com/hanpama/gqlexec/internal/language"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const everything = `{
  pets { __typename id name species ... on Cat { lives } }
  odie: pet(name: "odie") { name ... on Dog { barks } }
  nobody: pet(name: "Nobody") { name }
  cats: search(species: CAT) { ... on Cat { name meows } }
  all: search { __typename ... on Dog { name } ... on Cat { name } }
}`

const everythingWant = `{"data":{
  "pets":[
    {"__typename":"Dog","id":"1","name":"Odie","species":"DOG"},
    {"__typename":"Cat","id":"2","name":"Garfield","species":"CAT","lives":9},
    {"__typename":"Dog","id":"3","name":"Snoopy","species":"DOG"}
  ],
  "odie":{"name":"Odie","barks":true},
  "nobody":null,
  "cats":[{"name":"Garfield","meows":true}],
  "all":[
    {"__typename":"Dog","name":"Odie"},
    {"__typename":"Cat","name":"Garfield"},
    {"__typename":"Dog","name":"Snoopy"}
  ]
}}`

func execute(t *testing.T, sync bool, query string, opts ...Option) string {
	t.Helper()
	sch, err := NewSchema(NewStore(), opts...)
	require.NoError(t, err)
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)

	params := executor.Params{Document: doc}
	var res *executor.ExecutionResult
	if sync {
		res, err = executor.NewExecutor(sch).ExecuteRequestSync(context.Background(), params)
		require.NoError(t, err)
	} else {
		res = executor.NewExecutor(sch).ExecuteRequest(context.Background(), params)
	}
	b, err := json.Marshal(res)
	require.NoError(t, err)
	return string(b)
}

func TestSchema_Strategies(t *testing.T) {
	cases := []struct {
		name string
		sync bool
		opts []Option
	}{
		{"is type of/sync", true, nil},
		{"is type of/async", false, nil},
		{"resolve type/sync", true, []Option{WithStrategy(ResolveType)}},
		{"resolve type/async", false, []Option{WithStrategy(ResolveType)}},
		{"is type of/latency", false, []Option{WithLatency(time.Millisecond)}},
		{"resolve type/latency", false, []Option{WithStrategy(ResolveType), WithLatency(time.Millisecond)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.JSONEq(t, everythingWant, execute(t, c.sync, everything, c.opts...))
		})
	}
}

func TestSchema_LatencyRequiresAsync(t *testing.T) {
	sch, err := NewSchema(NewStore(), WithLatency(time.Millisecond))
	require.NoError(t, err)
	doc, err := language.ParseQuery(`{ pets { name } }`)
	require.NoError(t, err)

	_, err = executor.NewExecutor(sch).ExecuteRequestSync(context.Background(), executor.Params{Document: doc})
	var inv *executor.InvariantError
	require.ErrorAs(t, err, &inv)
	// let the pending resolver finish before the leak check
	time.Sleep(5 * time.Millisecond)
}

func TestSchema_Adopt(t *testing.T) {
	store := NewStore()
	sch, err := NewSchema(store)
	require.NoError(t, err)
	ex := executor.NewExecutor(sch)

	doc, err := language.ParseQuery(`mutation {
  a: adopt(species: CAT, name: "Tom") { id ... on Cat { lives } }
  b: adopt(species: DOG, name: " ") { id }
}`)
	require.NoError(t, err)
	res, err := ex.ExecuteRequestSync(context.Background(), executor.Params{Document: doc})
	require.NoError(t, err)

	// b is non-null, so its error nulls the whole mutation result
	assert.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrEmptyName.Error(), res.Errors[0].Message)
	assert.ErrorIs(t, res.Errors[0], ErrEmptyName)

	require.Len(t, store.All(), 4)
	assert.Equal(t, &Cat{ID: "4", Name: "Tom", Lives: 9}, store.Find("tom"))
}

func TestStore(t *testing.T) {
	s := NewStore()
	assert.Len(t, s.Search(SpeciesDog), 2)
	assert.Len(t, s.Search(""), 3)
	assert.Nil(t, s.Find("nobody"))

	_, err := s.Adopt("HAMSTER", "Rex")
	assert.EqualError(t, err, `unknown species "HAMSTER"`)
	_, err = s.Adopt(SpeciesDog, "")
	assert.ErrorIs(t, err, ErrEmptyName)

	p, err := s.Adopt(SpeciesDog, "Rex")
	require.NoError(t, err)
	assert.Equal(t, &Dog{ID: "4", Name: "Rex"}, p)
}
