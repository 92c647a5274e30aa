package refs

import (
	"testing"

	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonicalize(t *testing.T, c *Canonicalizer, raw string) string {
	t.Helper()
	addr, err := ParseAddress(raw)
	require.NoError(t, err)
	out, err := c.Canonicalize(addr)
	require.NoError(t, err)
	return out
}

func TestCanonicalize_DefaultRoot(t *testing.T) {
	c := NewCanonicalizer("#/components/schemas/")

	tests := []struct {
		raw  string
		want string
	}{
		{"schemas.yaml#/AuthError", "#/components/schemas/AuthError"},
		{"../schemas/common.yaml#/Error", "#/components/schemas/Error"},
		{"../schemas/common.yaml#/components/schemas/Error", "#/components/schemas/Error"},
		{"#/Error", "#/components/schemas/Error"},
		{"#/definitions/User", "#/components/schemas/User"},
		{"#/components/schemas/User", "#/components/schemas/User"},
		{"#/components/schemas/User/properties/id", "#/components/schemas/User/properties/id"},
		{"#/definitions/components/schemas/X", "#/components/schemas/components/schemas/X"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := canonicalize(t, c, tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, canonicalize(t, c, got), "canonical form must be a fixed point")
		})
	}
}

func TestCanonicalize_DefinitionsRoot(t *testing.T) {
	c := NewCanonicalizer("#/definitions")
	assert.Equal(t, "#/definitions/", c.Root())
	assert.Equal(t, "#/definitions/User", canonicalize(t, c, "#/components/schemas/User"))
	assert.Equal(t, "#/definitions/User", canonicalize(t, c, "user.yaml#/User"))
}

func TestCanonicalize_FlatRoot(t *testing.T) {
	c := NewCanonicalizer("#/")
	got := canonicalize(t, c, "#/definitions/definitions/X")
	assert.Equal(t, "#/definitions/definitions/X", got)
	assert.Equal(t, got, canonicalize(t, c, got))
}

func TestCanonicalize_ExplicitAliases(t *testing.T) {
	c := NewCanonicalizer("#/components/schemas/", "#/x-models/")
	assert.Equal(t, "#/components/schemas/Pet", canonicalize(t, c, "#/x-models/Pet"))
	assert.Equal(t, "#/components/schemas/definitions/Pet", canonicalize(t, c, "#/definitions/Pet"))
}

func TestCanonicalize_RootOnly(t *testing.T) {
	c := NewCanonicalizer("#/components/schemas/")
	addr, err := ParseAddress("#/components/schemas/")
	require.NoError(t, err)

	_, err = c.Canonicalize(addr)
	assert.ErrorIs(t, err, oaserrors.ErrMalformedPointer)
}

func TestSegments(t *testing.T) {
	c := NewCanonicalizer("#/components/schemas/")
	addr, err := ParseAddress("#/components/schemas/User/properties/a~1b~0c")
	require.NoError(t, err)

	segs, err := c.Segments(addr)
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "properties", "a/b~c"}, segs)
}
