package assembler

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/erraggy/oasmerge/internal/severity"
	"github.com/erraggy/oasmerge/internal/testutil"
	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietOptions(strategy CollisionStrategy) Options {
	return Options{
		Strategy: strategy,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func userFragments(t *testing.T) []Fragment {
	return []Fragment{
		{Name: "schemas/user.yaml", Root: testutil.MustParse(t, "User:\n  type: object\nProfile:\n  type: object\n")},
		{Name: "schemas/admin.yaml", Root: testutil.MustParse(t, "User:\n  type: string\nAdmin:\n  type: object\n")},
	}
}

func TestAssembleNamespace_OrderAndProvenance(t *testing.T) {
	frags := []Fragment{
		{Name: "a.yaml", Root: testutil.MustParse(t, "B: {}\nA: {}\n")},
		{Name: "b.yaml", Root: testutil.MustParse(t, "C: {}\n")},
	}

	res, err := AssembleNamespace(frags, quietOptions(""))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, res.Table.Keys())
	assert.Equal(t, Provenance{"A": "a.yaml", "B": "a.yaml", "C": "b.yaml"}, res.Provenance)
	assert.Equal(t, 2, res.Fragments)
	assert.Empty(t, res.Warnings)
}

func TestAssembleNamespace_CollisionFails(t *testing.T) {
	_, err := AssembleNamespace(userFragments(t), quietOptions(StrategyFailOnCollision))
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrCollision)

	var ce *oaserrors.CollisionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "User", ce.Key)
	assert.Equal(t, SectionDefinitions, ce.Section)
	assert.Equal(t, "schemas/user.yaml", ce.FirstSource)
	assert.Equal(t, "schemas/admin.yaml", ce.SecondSource)
}

func TestAssembleNamespace_DefaultStrategyFails(t *testing.T) {
	_, err := AssembleNamespace(userFragments(t), quietOptions(""))
	assert.ErrorIs(t, err, oaserrors.ErrCollision)
}

func TestAssembleNamespace_AcceptRight(t *testing.T) {
	var logs bytes.Buffer
	opts := Options{
		Strategy: StrategyAcceptRight,
		Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
	}

	res, err := AssembleNamespace(userFragments(t), opts)
	require.NoError(t, err)

	user, _ := res.Table.Get("User")
	typ, _ := user.(*tree.Mapping).Get("type")
	assert.Equal(t, tree.String("string"), typ, "later fragment wins")
	assert.Equal(t, "schemas/admin.yaml", res.Provenance["User"])
	assert.Equal(t, []string{"User", "Profile", "Admin"}, res.Table.Keys(), "overwrite keeps first position")

	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, WarnDefinitionCollision, w.Category)
	assert.Equal(t, "definitions.User", w.Path)
	assert.Equal(t, severity.SeverityWarning, w.Severity)
	assert.Contains(t, w.Message, "overwritten")

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "User")
}

func TestAssembleNamespace_AcceptLeft(t *testing.T) {
	res, err := AssembleNamespace(userFragments(t), quietOptions(StrategyAcceptLeft))
	require.NoError(t, err)

	user, _ := res.Table.Get("User")
	typ, _ := user.(*tree.Mapping).Get("type")
	assert.Equal(t, tree.String("object"), typ, "first fragment wins")
	assert.Equal(t, "schemas/user.yaml", res.Provenance["User"])
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "kept first")
}

func TestAssembleNamespace_InvalidStrategy(t *testing.T) {
	_, err := AssembleNamespace(nil, quietOptions("rename-left"))
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
}

func TestAssembleNamespace_MissingFragmentTolerance(t *testing.T) {
	frags := []Fragment{
		{Name: "schemas/common.yaml", Root: testutil.MustParse(t, "Error:\n  type: object\n")},
		{Name: "schemas/missing.yaml", Root: nil},
		{Name: "schemas/user.yaml", Root: testutil.MustParse(t, "User:\n  type: object\n")},
	}

	res, err := AssembleNamespace(frags, quietOptions(""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Error", "User"}, res.Table.Keys())
	assert.Equal(t, 2, res.Fragments)
}

func TestAssembleNamespace_NonMappingFragment(t *testing.T) {
	frags := []Fragment{{Name: "list.yaml", Root: testutil.MustParse(t, "- a\n- b\n")}}

	_, err := AssembleNamespace(frags, quietOptions(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrParse)
	assert.Contains(t, err.Error(), "list.yaml")
	assert.Contains(t, err.Error(), "sequence")
}

func TestAssembleNamespace_CaseCollisionWarning(t *testing.T) {
	frags := []Fragment{
		{Name: "a.yaml", Root: testutil.MustParse(t, "ApiKey: {}\nUser: {}\n")},
		{Name: "b.yaml", Root: testutil.MustParse(t, "APIKey: {}\n")},
	}

	res, err := AssembleNamespace(frags, quietOptions(""))
	require.NoError(t, err)

	ws := res.Warnings.ByCategory(WarnCaseCollision)
	require.Len(t, ws, 1)
	assert.Equal(t, []string{"ApiKey", "APIKey"}, ws[0].Context["names"])
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, ws[0].Context["fragments"])
	assert.Contains(t, ws[0].Message, "'ApiKey', 'APIKey'")
}

func TestAssembleRoutes_WithTable(t *testing.T) {
	frags := []RouteFragment{
		{
			Fragment: Fragment{Name: "paths/auth.yaml", Root: testutil.MustParse(t, `
login: {post: {operationId: login}}
signup: {post: {operationId: signup}}
refresh: {post: {operationId: refresh}}
`)},
			Routes: []RouteMapping{
				{Operation: "signup", Route: "/api/auth/signup"},
				{Operation: "login", Route: "/api/auth/login"},
				{Operation: "logout", Route: "/api/auth/logout"},
			},
		},
	}

	res, err := AssembleRoutes(frags, quietOptions(""))
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/auth/signup", "/api/auth/login"}, res.Table.Keys(), "table order decides route order")
	assert.Equal(t, "paths/auth.yaml", res.Provenance["/api/auth/login"])

	missing := res.Warnings.ByCategory(WarnMissingOperation)
	require.Len(t, missing, 1)
	assert.Equal(t, "logout", missing[0].Context["operation"])

	unmapped := res.Warnings.ByCategory(WarnUnmappedOperation)
	require.Len(t, unmapped, 1)
	assert.Equal(t, "refresh", unmapped[0].Context["operation"])
	assert.Len(t, res.Warnings.BySeverity(severity.SeverityInfo), 2)
}

func TestAssembleRoutes_DirectKeys(t *testing.T) {
	frags := []RouteFragment{
		{Fragment: Fragment{Name: "routes.yaml", Root: testutil.MustParse(t, testutil.EndToEndRoutes)}},
	}

	res, err := AssembleRoutes(frags, quietOptions(""))
	require.NoError(t, err)
	assert.Equal(t, []string{"/login"}, res.Table.Keys())
}

func TestAssembleRoutes_Collision(t *testing.T) {
	frags := []RouteFragment{
		{
			Fragment: Fragment{Name: "paths/vault.yaml", Root: testutil.MustParse(t, "vaults: {get: {}}\n")},
			Routes:   []RouteMapping{{Operation: "vaults", Route: "/api/vaults"}},
		},
		{
			Fragment: Fragment{Name: "paths/legacy.yaml", Root: testutil.MustParse(t, "/api/vaults: {post: {}}\n")},
		},
	}

	_, err := AssembleRoutes(frags, quietOptions(""))
	var ce *oaserrors.CollisionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, SectionRoutes, ce.Section)
	assert.Equal(t, "/api/vaults", ce.Key)

	res, err := AssembleRoutes(frags, quietOptions(StrategyAcceptRight))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnRouteCollision, res.Warnings[0].Category)
	assert.Equal(t, "paths/legacy.yaml", res.Provenance["/api/vaults"])
}

func TestAssembleRoutes_MissingFragment(t *testing.T) {
	frags := []RouteFragment{
		{Fragment: Fragment{Name: "paths/health.yaml"}, Routes: []RouteMapping{{Operation: "health", Route: "/api/health"}}},
	}

	res, err := AssembleRoutes(frags, quietOptions(""))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Table.Len())
	assert.Equal(t, 0, res.Fragments)
	assert.Empty(t, res.Warnings, "an absent fragment is not a missing operation")
}

func TestValidStrategies(t *testing.T) {
	for _, s := range ValidStrategies() {
		assert.True(t, IsValidStrategy(s), s)
	}
	assert.False(t, IsValidStrategy("deduplicate"))
	assert.False(t, IsValidStrategy(""))
}

func TestWarnings_Summary(t *testing.T) {
	ws := Warnings{
		NewCollisionWarning(SectionDefinitions, "User", "overwritten", "a.yaml", "b.yaml"),
		NewUnmappedOperationWarning("refresh", "paths/auth.yaml"),
	}
	assert.Equal(t, "2 warning(s):\n"+
		"  - definitions 'User' overwritten: a.yaml -> b.yaml\n"+
		"  - operation 'refresh' in paths/auth.yaml has no route mapping, skipped", ws.Summary())
	assert.Equal(t, "", Warnings(nil).Summary())
	assert.Len(t, ws.Strings(), 2)
}
