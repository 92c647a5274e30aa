package inliner

import (
	"fmt"
	"strings"
	"testing"

	"github.com/erraggy/oasmerge/internal/testutil"
	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/refs"
	"github.com/erraggy/oasmerge/tree"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInliner(t *testing.T, namespace string, opts ...Option) *Inliner {
	t.Helper()
	return New(testutil.MustMapping(t, namespace), refs.NewCanonicalizer("#/components/schemas/"), opts...)
}

// countPointers returns the number of pointer-shaped mappings in n.
func countPointers(t *testing.T, n tree.Node) int {
	t.Helper()
	count := 0
	err := tree.Walk(n, func(_ fmt.Stringer, node tree.Node) error {
		if refs.IsPointer(node, refs.DefaultPointerKey) {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestInline_EndToEnd(t *testing.T) {
	in := newInliner(t, testutil.EndToEndSchemas)
	routes := testutil.MustParse(t, testutil.EndToEndRoutes)

	out, err := in.Inline(routes)
	require.NoError(t, err)

	want := map[string]any{
		"/login": map[string]any{
			"responses": map[string]any{
				"400": map[string]any{"type": "object"},
			},
		},
	}
	if diff := cmp.Diff(want, tree.ToAny(out)); diff != "" {
		t.Errorf("inlined routes mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, countPointers(t, out))
	assert.Equal(t, 1, in.Inlined)
}

func TestInline_PackageFunction(t *testing.T) {
	ns := testutil.MustMapping(t, testutil.EndToEndSchemas)
	out, err := Inline(testutil.MustParse(t, testutil.EndToEndRoutes), ns)
	require.NoError(t, err)
	assert.Zero(t, countPointers(t, out))
}

func TestInline_RemovesAllPointers(t *testing.T) {
	frags := testutil.Fragments(t, testutil.VaultHubFiles())
	ns := tree.NewMapping()
	for _, name := range []string{"common", "auth", "user", "vault", "audit", "api-key"} {
		for k, v := range frags["schemas/"+name+".yaml"].(*tree.Mapping).All() {
			ns.Set(k, v)
		}
	}
	in := New(ns, refs.NewCanonicalizer("#/components/schemas/"))

	inlinedNS, err := in.InlineNamespace()
	require.NoError(t, err)
	assert.Zero(t, countPointers(t, inlinedNS))
	assert.Equal(t, ns.Keys(), inlinedNS.Keys())

	for _, name := range []string{"health", "auth", "user", "vault", "audit", "api-key"} {
		t.Run(name, func(t *testing.T) {
			out, err := in.Inline(frags["paths/"+name+".yaml"])
			require.NoError(t, err)
			assert.Zero(t, countPointers(t, out))

			again, err := in.Inline(out)
			require.NoError(t, err)
			assert.True(t, tree.Equal(out, again), "inlining pointer-free output must be a no-op")
		})
	}
}

func TestInline_NoOpOnPointerFreeInput(t *testing.T) {
	inputs := []string{
		"type: object\nproperties:\n  id: {type: integer}\n",
		"- 1\n- [a, b]\n- {x: null}\n",
		"$ref: \"#/X\"\ndescription: siblings make this ordinary\n",
		"scalar",
	}
	in := newInliner(t, "X: {type: string}\n")
	for _, src := range inputs {
		n := testutil.MustParse(t, src)
		out, err := in.Inline(n)
		require.NoError(t, err)
		assert.True(t, tree.Equal(n, out), "inline changed pointer-free input %q", src)
	}
	assert.Zero(t, in.Inlined)
}

func TestInline_CycleDetection(t *testing.T) {
	in := newInliner(t, "A:\n  $ref: \"#/B\"\nB:\n  $ref: \"#/A\"\n")

	_, err := in.InlineNamespace()
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrCircularReference)
	assert.Equal(t, "CircularReference", oaserrors.Kind(err))

	var re *oaserrors.ReferenceError
	require.ErrorAs(t, err, &re)
	assert.True(t, re.IsCircular)
	assert.Equal(t, []string{"A", "B"}, re.Cycle)
	assert.Contains(t, err.Error(), "A -> B -> A")
}

func TestInline_CycleFromRoute(t *testing.T) {
	in := newInliner(t, `
Node:
  type: object
  properties:
    next:
      $ref: "#/components/schemas/Node"
`)
	routes := testutil.MustParse(t, "/nodes:\n  get:\n    schema:\n      $ref: \"nodes.yaml#/Node\"\n")

	_, err := in.Inline(routes)
	var re *oaserrors.ReferenceError
	require.ErrorAs(t, err, &re)
	assert.True(t, re.IsCircular)
	assert.Equal(t, []string{"Node"}, re.Cycle)
	assert.Equal(t, "components.schemas.Node.properties.next", re.Path)
}

func TestInline_SameDefinitionInUnrelatedBranches(t *testing.T) {
	in := newInliner(t, "Error: {type: object}\nPair:\n  left: {$ref: \"#/Error\"}\n  right: {$ref: \"#/Error\"}\n")
	routes := testutil.MustParse(t, "a: {$ref: \"#/Pair\"}\nb: [{$ref: \"#/Error\"}, {$ref: \"#/Error\"}]\n")

	out, err := in.Inline(routes)
	require.NoError(t, err)
	assert.Zero(t, countPointers(t, out))

	// Substituted copies must not share containers.
	b, _ := out.(*tree.Mapping).Get("b")
	first := b.(*tree.Sequence).At(0).(*tree.Mapping)
	first.Set("type", tree.String("mutated"))
	second := b.(*tree.Sequence).At(1).(*tree.Mapping)
	typ, _ := second.Get("type")
	assert.Equal(t, tree.String("object"), typ)

	again, err := in.Inline(testutil.MustParse(t, "x: {$ref: \"#/Error\"}\n"))
	require.NoError(t, err)
	x, _ := again.(*tree.Mapping).Get("x")
	typ, _ = x.(*tree.Mapping).Get("type")
	assert.Equal(t, tree.String("object"), typ, "cached definitions must not be affected by output edits")
}

func TestInline_UnresolvedReference(t *testing.T) {
	in := newInliner(t, "User: {type: object}\n")
	routes := testutil.MustParse(t, "/users:\n  get:\n    responses:\n      \"404\":\n        $ref: \"#/definitions/Ghost\"\n")

	_, err := in.Inline(routes)
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrUnresolvedReference)
	assert.Equal(t, "UnresolvedReference", oaserrors.Kind(err))

	var re *oaserrors.ReferenceError
	require.ErrorAs(t, err, &re)
	assert.False(t, re.IsCircular)
	assert.Equal(t, "#/definitions/Ghost", re.Ref)
	assert.Equal(t, "/users.get.responses.404", re.Path)
}

func TestInline_SubPathReference(t *testing.T) {
	in := newInliner(t, `
User:
  type: object
  properties:
    id: {type: integer, format: int64}
  required: [id]
`)
	n := testutil.MustParse(t, `
id: {$ref: "#/components/schemas/User/properties/id"}
first: {$ref: "#/User/required/0"}
`)
	out, err := in.Inline(n)
	require.NoError(t, err)

	want := map[string]any{
		"id":    map[string]any{"type": "integer", "format": "int64"},
		"first": "id",
	}
	if diff := cmp.Diff(want, tree.ToAny(out)); diff != "" {
		t.Errorf("sub-path inlining mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"#/User/properties/missing", "#/User/required/5", "#/User/type/x"} {
		_, err := in.Inline(refs.NewPointer("$ref", bad))
		assert.ErrorIs(t, err, oaserrors.ErrUnresolvedReference, bad)
	}
}

func TestInline_MalformedPointer(t *testing.T) {
	in := newInliner(t, "A: {}\n")
	_, err := in.InlineAt(testutil.MustParse(t, "schema:\n  $ref: A\n"), "paths", "/a")

	var mpe *oaserrors.MalformedPointerError
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, "A", mpe.Raw)
	assert.Equal(t, "paths./a.schema", mpe.Path)
}

func TestInline_MaxDepth(t *testing.T) {
	var b strings.Builder
	for i := range 10 {
		fmt.Fprintf(&b, "D%d:\n  $ref: \"#/D%d\"\n", i, i+1)
	}
	b.WriteString("D10: {type: string}\n")

	in := newInliner(t, b.String(), WithMaxDepth(5))
	_, err := in.Inline(refs.NewPointer("$ref", "#/D0"))
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrResourceLimit)

	in = newInliner(t, b.String())
	out, err := in.Inline(refs.NewPointer("$ref", "#/D0"))
	require.NoError(t, err)
	assert.True(t, tree.Equal(testutil.MustParse(t, "type: string\n"), out))
}

func TestInline_CustomPointerKey(t *testing.T) {
	in := newInliner(t, "Error: {type: object}\n", WithPointerKey("ref"))
	out, err := in.Inline(testutil.MustParse(t, "a: {ref: \"#/Error\"}\nb: {$ref: \"#/Error\"}\n"))
	require.NoError(t, err)

	a, _ := out.(*tree.Mapping).Get("a")
	assert.True(t, tree.Equal(testutil.MustParse(t, "type: object\n"), a))
	b, _ := out.(*tree.Mapping).Get("b")
	assert.True(t, refs.IsPointer(b, "$ref"), "only the configured key marks pointers")
}

func TestInline_DoesNotModifyInputs(t *testing.T) {
	ns := testutil.MustMapping(t, testutil.EndToEndSchemas)
	routes := testutil.MustParse(t, testutil.EndToEndRoutes)
	nsBefore, routesBefore := tree.DeepCopy(ns), tree.DeepCopy(routes)

	in := New(ns, refs.NewCanonicalizer("#/components/schemas/"))
	_, err := in.InlineNamespace()
	require.NoError(t, err)
	_, err = in.Inline(routes)
	require.NoError(t, err)

	assert.True(t, tree.Equal(nsBefore, ns))
	assert.True(t, tree.Equal(routesBefore, routes))
}
