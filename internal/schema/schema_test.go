package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlexec/internal/future"
)

const petsSDL = `
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

type Human {
  name: String
}

union CatOrDog = Cat | Dog

enum Mood {
  HAPPY
  GRUMPY @deprecated(reason: "use HAPPY")
}

type Query {
  pets(limit: Int = 10): [Pet]
  catOrDog: CatOrDog
  mood: Mood
}
`

func mustBuild(t *testing.T) *Schema {
	t.Helper()
	s, err := BuildFromSDL("pets.graphql", petsSDL)
	require.NoError(t, err)
	return s
}

func typeNames(types []*Type) []string {
	var out []string
	for _, t := range types {
		out = append(out, t.Name)
	}
	return out
}

func TestBuildFromSDL_DeclarationOrder(t *testing.T) {
	s := mustBuild(t)

	want := []string{"String", "Int", "Float", "Boolean", "ID", "Pet", "Dog", "Cat", "Human", "CatOrDog", "Mood", "Query"}
	if diff := cmp.Diff(want, s.TypeNames()); diff != "" {
		t.Fatalf("type order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Query", s.GetQueryType().Name)
	assert.Nil(t, s.GetMutationType())

	pets := s.Type("Query").Field("pets")
	require.NotNil(t, pets)
	assert.Equal(t, "[Pet]", pets.Type.String())
	assert.Equal(t, int64(10), pets.Argument("limit").DefaultValue)
	assert.Nil(t, s.Type("Query").Field("__schema"))

	mood := s.Type("Mood")
	assert.True(t, mood.EnumValue("GRUMPY").IsDeprecated)
	assert.Equal(t, "use HAPPY", mood.EnumValue("GRUMPY").DeprecationReason)
}

func TestBuildFromSDL_Invalid(t *testing.T) {
	_, err := BuildFromSDL("bad.graphql", `type Query { a: Missing }`)
	assert.Error(t, err)
}

func TestPossibleTypes(t *testing.T) {
	s := mustBuild(t)

	assert.Equal(t, []string{"Dog", "Cat"}, typeNames(s.PossibleTypes(s.Type("Pet"))))
	assert.Equal(t, []string{"Cat", "Dog"}, typeNames(s.PossibleTypes(s.Type("CatOrDog"))))
	assert.Nil(t, s.PossibleTypes(s.Type("Dog")))

	assert.True(t, s.IsPossibleType(s.Type("Pet"), s.Type("Cat")))
	assert.False(t, s.IsPossibleType(s.Type("Pet"), s.Type("Human")))

	impostor := NewType("Cat", TypeKindObject, "").AddInterface("Pet")
	assert.False(t, s.IsPossibleType(s.Type("Pet"), impostor), "membership is by identity")
}

func TestPossibleTypes_InvalidatedByAddType(t *testing.T) {
	s := mustBuild(t)
	pet := s.Type("Pet")
	require.Len(t, s.PossibleTypes(pet), 2)

	s.AddType(NewType("Bird", TypeKindObject, "").AddInterface("Pet").
		AddField(NewField("name", "", NamedType("String"))))
	assert.Equal(t, []string{"Dog", "Cat", "Bird"}, typeNames(s.PossibleTypes(pet)))
}

func TestBinders(t *testing.T) {
	s := mustBuild(t)

	require.NoError(t, s.SetResolver("Query", "pets", func(p ResolveParams) (any, error) { return nil, nil }))
	assert.NotNil(t, s.Type("Query").Field("pets").Resolve)
	assert.Error(t, s.SetResolver("Query", "nope", nil))
	assert.Error(t, s.SetResolver("Mood", "x", nil))

	require.NoError(t, s.SetIsTypeOf("Dog", func(p IsTypeOfParams) *future.Future[bool] { return future.Ready(true) }))
	assert.Error(t, s.SetIsTypeOf("Pet", nil))

	require.NoError(t, s.SetResolveType("CatOrDog", func(p ResolveTypeParams) *future.Future[any] { return future.Ready[any]("Cat") }))
	assert.Error(t, s.SetResolveType("Dog", nil))
	assert.Error(t, s.SetResolveType("Unknown", nil))

	require.NoError(t, s.SetSerializer("Mood", SerializeString))
	assert.Error(t, s.SetSerializer("Query", SerializeString))
}

func TestBuiltinScalarsAreNotShared(t *testing.T) {
	a, b := NewSchema(""), NewSchema("")
	require.NoError(t, a.SetSerializer("String", func(any) (any, error) { return "x", nil }))
	v, err := b.Type("String").Serialize("y")
	require.NoError(t, err)
	assert.Equal(t, "y", v)
}

func TestNonNullOfNonNullPanics(t *testing.T) {
	ref := NonNullType(NamedType("String"))
	assert.Panics(t, func() { NonNullType(ref) })
	assert.Equal(t, "[String!]!", NonNullType(ListType(ref)).String())
}

func TestClassify(t *testing.T) {
	s := mustBuild(t)
	cases := []struct {
		ref  *TypeRef
		want Category
	}{
		{NamedType("String"), CategoryScalar},
		{NamedType("Mood"), CategoryEnum},
		{NamedType("Dog"), CategoryObject},
		{NamedType("Pet"), CategoryInterface},
		{NamedType("CatOrDog"), CategoryUnion},
		{ListType(NamedType("Pet")), CategoryList},
		{NonNullType(NamedType("Pet")), CategoryNonNull},
		{NamedType("Missing"), CategoryUnknown},
		{nil, CategoryUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, s.Classify(c.ref), "%v", c.ref)
	}

	nn := NonNullType(ListType(NamedType("Pet")))
	assert.Equal(t, CategoryList, s.Classify(NullableType(nn)))
	assert.Same(t, s.Type("Pet"), s.NamedTypeOf(nn))
	assert.True(t, s.Type("Pet").IsAbstract())
	assert.False(t, s.Type("Dog").IsAbstract())
	assert.True(t, s.Type("Mood").IsLeaf())
}

func TestToConcreteTypeRef(t *testing.T) {
	dog := NewType("Dog", TypeKindObject, "")

	ref, ok := ToConcreteTypeRef("Dog")
	require.True(t, ok)
	assert.Equal(t, "Dog", ref.Name())
	_, direct := ref.Direct()
	assert.False(t, direct)

	ref, ok = ToConcreteTypeRef(dog)
	require.True(t, ok)
	got, direct := ref.Direct()
	assert.True(t, direct)
	assert.Same(t, dog, got)

	ref, ok = ToConcreteTypeRef(nil)
	require.True(t, ok)
	assert.True(t, ref.IsZero())

	ref, ok = ToConcreteTypeRef((*Type)(nil))
	require.True(t, ok)
	assert.True(t, ref.IsZero())

	_, ok = ToConcreteTypeRef([]any{})
	assert.False(t, ok)
}

func TestRenderRoundTrip(t *testing.T) {
	s := mustBuild(t)
	sdl := Render(s)
	assert.Contains(t, sdl, "union CatOrDog = Cat | Dog")
	assert.Contains(t, sdl, "type Dog implements Pet {")
	assert.NotContains(t, sdl, "scalar String")

	again, err := BuildFromSDL("rendered.graphql", sdl)
	require.NoError(t, err)
	if diff := cmp.Diff(sdl, Render(again)); diff != "" {
		t.Errorf("rendered schema mismatch (-want +got):\n%s", diff)
	}

	loaded, err := ToAST(s)
	require.NoError(t, err)
	assert.Equal(t, "Query", loaded.Query.Name)
}

func TestRender_CustomRootNames(t *testing.T) {
	s := NewSchema("").SetQueryType("Root")
	s.AddType(NewType("Root", TypeKindObject, "").AddField(NewField("ok", "", NamedType("Boolean"))))
	loaded, err := ToAST(s)
	require.NoError(t, err)
	assert.Equal(t, "Root", loaded.Query.Name)
}

func TestValidate(t *testing.T) {
	require.NoError(t, mustBuild(t).Validate())

	s := NewSchema("")
	s.AddType(NewType("Query", TypeKindObject, "").AddField(NewField("a", "", NamedType("Missing"))))
	assert.Error(t, s.Validate())

	s = NewSchema("")
	s.AddType(NewType("Query", TypeKindObject, "").AddInterface("Nope").
		AddField(NewField("a", "", NamedType("Int"))))
	assert.Error(t, s.Validate())
}

func TestRender_InputsAndDefaults(t *testing.T) {
	const sdl = `"""
Search filters.
Multi-line.
"""
input Filter {
  mood: Mood = HAPPY
  tags: [String!] = ["a", "b"]
  limit: Int = 3 @deprecated(reason: "use page")
}

enum Mood {
  HAPPY
  SAD
}

type Query {
  """
  Finds things.
  """
  search(filter: Filter = {mood: SAD, tags: ["x"]}, moods: [Mood] = [HAPPY]): [String]
}

directive @cached(ttl: Int = 60) repeatable on FIELD_DEFINITION | OBJECT
`
	s, err := BuildFromSDL("search.graphql", sdl)
	require.NoError(t, err)

	out := Render(s)
	if diff := cmp.Diff(sdl, out); diff != "" {
		t.Errorf("rendered schema mismatch (-want +got):\n%s", diff)
	}
	_, err = ToAST(s)
	require.NoError(t, err)
}
