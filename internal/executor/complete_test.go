package executor

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlexec/internal/future"
	schema "github.com/hanpama/gqlexec/internal/schema"
)

const heroSDL = `
type Query {
  hero: Hero
  strictHero: Hero!
}

type Hero {
  name: String!
  nickname: String
  friends: [Hero]
}
`

func TestCompleteValue_NonNullFieldNullsParent(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			sch := mustBuildSchema(t, heroSDL)
			require.NoError(t, sch.SetResolver("Query", "hero", resolveWith(map[string]any{"name": nil, "nickname": "Kid"})))

			res := run(t, NewExecutor(sch), m.sync, `{ hero { nickname name } }`, nil)
			assert.JSONEq(t, `{
				"data": {"hero": null},
				"errors": [{
					"message": "Cannot return null for non-nullable field 'Hero.name'.",
					"locations": [{"line": 1, "column": 19}],
					"path": ["hero", "name"]
				}]
			}`, toJSON(t, res))
		})
	}
}

func TestCompleteValue_NullBubblesToData(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			sch := mustBuildSchema(t, heroSDL)
			require.NoError(t, sch.SetResolver("Query", "strictHero", resolveWith(map[string]any{"name": nil})))
			require.NoError(t, sch.SetResolver("Query", "hero", resolveWith(map[string]any{"name": "Kid"})))

			res := run(t, NewExecutor(sch), m.sync, `{ hero { name } strictHero { name } }`, nil)
			assert.JSONEq(t, `null`, toJSON(t, res.Data))
			require.Len(t, res.Errors, 1)
			assert.Equal(t, "Cannot return null for non-nullable field 'Hero.name'.", res.Errors[0].Message)
			assert.JSONEq(t, `["strictHero", "name"]`, toJSON(t, res.Errors[0].Path))
		})
	}
}

func TestCompleteValue_NestedNullPropagationStopsAtNullableList(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			sch := mustBuildSchema(t, heroSDL)
			require.NoError(t, sch.SetResolver("Query", "hero", resolveWith(map[string]any{
				"name": "Luke",
				"friends": []any{
					map[string]any{"name": "Han"},
					map[string]any{"name": nil},
					map[string]any{"name": "Leia"},
				},
			})))

			res := run(t, NewExecutor(sch), m.sync, `{ hero { name friends { name } } }`, nil)
			assert.JSONEq(t, `{"hero": {"name": "Luke", "friends": [{"name": "Han"}, null, {"name": "Leia"}]}}`, toJSON(t, res.Data))
			require.Len(t, res.Errors, 1)
			assert.JSONEq(t, `["hero", "friends", 1, "name"]`, toJSON(t, res.Errors[0].Path))
		})
	}
}

func TestCompleteListValue_ItemNullability(t *testing.T) {
	items := []any{1, "x", 3}
	cases := []struct {
		name string
		typ  string
		data string
	}{
		{"nullable items", "[Int]", `{"nums": [1, null, 3]}`},
		{"non-null items", "[Int!]", `{"nums": null}`},
		{"non-null list of non-null items", "[Int!]!", `null`},
	}
	for _, c := range cases {
		for _, m := range modes {
			t.Run(c.name+"/"+m.name, func(t *testing.T) {
				sch := mustBuildSchema(t, `type Query { nums: `+c.typ+` }`)
				require.NoError(t, sch.SetResolver("Query", "nums", resolveWith(items)))

				res := run(t, NewExecutor(sch), m.sync, `{ nums }`, nil)
				assert.JSONEq(t, c.data, toJSON(t, res.Data))
				require.Len(t, res.Errors, 1)
				assert.Equal(t, `Int cannot represent non-integer value: "x"`, res.Errors[0].Message)
				assert.JSONEq(t, `["nums", 1]`, toJSON(t, res.Errors[0].Path))
				assert.JSONEq(t, `[{"line": 1, "column": 3}]`, toJSON(t, res.Errors[0].Locations))
			})
		}
	}
}

func TestCompleteListValue_AllItemErrorsReported(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			sch := mustBuildSchema(t, `type Query { nums: [Int!] }`)
			require.NoError(t, sch.SetResolver("Query", "nums", resolveWith([]any{"a", 2, "c", nil})))

			res := run(t, NewExecutor(sch), m.sync, `{ nums }`, nil)
			assert.JSONEq(t, `{"nums": null}`, toJSON(t, res.Data))
			assert.JSONEq(t, `[
				{"message": "Int cannot represent non-integer value: \"a\"", "locations": [{"line": 1, "column": 3}], "path": ["nums", 0]},
				{"message": "Int cannot represent non-integer value: \"c\"", "locations": [{"line": 1, "column": 3}], "path": ["nums", 2]},
				{"message": "Cannot return null for non-nullable field 'Query.nums'.", "locations": [{"line": 1, "column": 3}], "path": ["nums", 3]}
			]`, toJSON(t, res.Errors))
		})
	}
}

func TestCompleteListValue_NotIterable(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			sch := mustBuildSchema(t, `type Query { names: [String] }`)
			require.NoError(t, sch.SetResolver("Query", "names", resolveWith("Luke")))

			res := run(t, NewExecutor(sch), m.sync, `{ names }`, nil)
			assert.JSONEq(t, `{
				"data": {"names": null},
				"errors": [{
					"message": "Expected Iterable, but did not find one for field 'Query.names'.",
					"locations": [{"line": 1, "column": 3}],
					"path": ["names"]
				}]
			}`, toJSON(t, res))
		})
	}
}

func TestCompleteListValue_AcceptedShapes(t *testing.T) {
	cases := []struct {
		name  string
		value any
	}{
		{"any slice", []any{"a", "b"}},
		{"typed slice", []string{"a", "b"}},
		{"array", [2]string{"a", "b"}},
		{"sequence", slices.Values([]any{"a", "b"})},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sch := mustBuildSchema(t, `type Query { names: [String] }`)
			require.NoError(t, sch.SetResolver("Query", "names", resolveWith(c.value)))
			res := run(t, NewExecutor(sch), true, `{ names }`, nil)
			assert.JSONEq(t, `{"data": {"names": ["a", "b"]}}`, toJSON(t, res))
		})
	}
}

func TestCompleteListValue_FutureItems(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			sch := mustBuildSchema(t, `type Query { names: [String] }`)
			require.NoError(t, sch.SetResolver("Query", "names", resolveWith([]any{
				answer[any](m.sync, "a", nil),
				"b",
				answer[any](m.sync, nil, errors.New("gone")),
			})))

			res := run(t, NewExecutor(sch), m.sync, `{ names }`, nil)
			assert.JSONEq(t, `{"names": ["a", "b", null]}`, toJSON(t, res.Data))
			require.Len(t, res.Errors, 1)
			assert.Equal(t, "gone", res.Errors[0].Message)
			assert.JSONEq(t, `["names", 2]`, toJSON(t, res.Errors[0].Path))
		})
	}
}

func TestCompleteValue_FutureOfFuture(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			sch := mustBuildSchema(t, `type Query { greeting: String }`)
			require.NoError(t, sch.SetResolver("Query", "greeting", func(schema.ResolveParams) (any, error) {
				return answer[any](m.sync, answer[any](m.sync, "hello", nil), nil), nil
			}))
			res := run(t, NewExecutor(sch), m.sync, `{ greeting }`, nil)
			assert.JSONEq(t, `{"data": {"greeting": "hello"}}`, toJSON(t, res))
		})
	}
}

func TestCompleteLeafValue(t *testing.T) {
	sdl := `
type Query {
  mood: Mood
  moods: [Mood]
  big: Int
  when: Time
  raw: JSON
}
enum Mood { HAPPY SAD }
scalar Time
scalar JSON
`
	type mood string

	sch := mustBuildSchema(t, sdl)
	require.NoError(t, sch.SetResolver("Query", "mood", resolveWith(mood("HAPPY"))))
	require.NoError(t, sch.SetResolver("Query", "moods", resolveWith([]any{"SAD", "ANGRY"})))
	require.NoError(t, sch.SetResolver("Query", "big", resolveWith(int64(1)<<40)))
	require.NoError(t, sch.SetResolver("Query", "when", resolveWith(3)))
	require.NoError(t, sch.SetResolver("Query", "raw", resolveWith(map[string]any{"k": []any{1}})))
	require.NoError(t, sch.SetSerializer("Time", func(v any) (any, error) {
		if v == 3 {
			return "03:00", nil
		}
		return nil, nil
	}))

	res := run(t, NewExecutor(sch), true, `{ mood moods big when raw }`, nil)
	assert.JSONEq(t, `{
		"data": {"mood": "HAPPY", "moods": ["SAD", null], "big": null, "when": "03:00", "raw": {"k": [1]}},
		"errors": [
			{"message": "Enum 'Mood' cannot represent value: \"ANGRY\"", "locations": [{"line": 1, "column": 8}], "path": ["moods", 1]},
			{"message": "Int cannot represent non 32-bit signed integer value: 1099511627776", "locations": [{"line": 1, "column": 14}], "path": ["big"]}
		]
	}`, toJSON(t, res))
}

func TestCompleteLeafValue_SerializerReturnsNull(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { when: Time } scalar Time`)
	require.NoError(t, sch.SetResolver("Query", "when", resolveWith(4)))
	require.NoError(t, sch.SetSerializer("Time", func(any) (any, error) { return nil, nil }))

	res := run(t, NewExecutor(sch), true, `{ when }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "expected serializer of 'Time' to return a non-null value for 4", res.Errors[0].Message)
}

func TestCompleteObjectValue_IsTypeOfMismatch(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			sch := newSchemaWithQueryType(
				newObjectType("Query",
					schema.NewField("dog", "", schema.NamedType("Dog")).SetResolve(resolveWith(cat{"Garfield", false})),
				),
				dogType().SetIsTypeOf(isTypeOf[dog](m.sync)),
			)
			res := run(t, NewExecutor(sch), m.sync, `{ dog { name } }`, nil)
			assert.JSONEq(t, `{
				"data": {"dog": null},
				"errors": [{
					"message": "Expected value of type 'Dog' but got: {Garfield false}.",
					"locations": [{"line": 1, "column": 3}],
					"path": ["dog"]
				}]
			}`, toJSON(t, res))
		})
	}
}

func TestCompleteValue_TypedNilIsNull(t *testing.T) {
	var missing *dog
	sch := newSchemaWithQueryType(
		newObjectType("Query",
			schema.NewField("dog", "", schema.NamedType("Dog")).SetResolve(resolveWith(missing)),
			schema.NewField("names", "", schema.ListType(schema.NamedType("String"))).SetResolve(resolveWith([]string(nil))),
		),
		dogType(),
	)
	res := run(t, NewExecutor(sch), true, `{ dog { name } names }`, nil)
	assert.JSONEq(t, `{"data": {"dog": null, "names": null}}`, toJSON(t, res))
}

func TestCompleteValue_PointerSource(t *testing.T) {
	sch := newSchemaWithQueryType(
		newObjectType("Query",
			schema.NewField("dog", "", schema.NamedType("Dog")).SetResolve(resolveWith(&dog{"Odie", true})),
		),
		dogType(),
	)
	res := run(t, NewExecutor(sch), true, `{ dog { name woofs } }`, nil)
	assert.JSONEq(t, `{"data": {"dog": {"name": "Odie", "woofs": true}}}`, toJSON(t, res))
}

func TestListItems(t *testing.T) {
	_, ok := listItems("abc")
	assert.False(t, ok)
	_, ok = listItems(map[string]any{})
	assert.False(t, ok)

	items, ok := listItems([]int{1, 2})
	require.True(t, ok)
	assert.Equal(t, []any{1, 2}, items)
}

func TestIsNullish(t *testing.T) {
	var (
		nilMap   map[string]any
		nilSlice []any
		nilPtr   *dog
		nilFut   *future.Future[int]
	)
	for _, v := range []any{nil, nilMap, nilSlice, nilPtr, nilFut} {
		assert.True(t, isNullish(v), "%T", v)
	}
	for _, v := range []any{0, "", false, dog{}, []any{}} {
		assert.False(t, isNullish(v), "%T", v)
	}
}
