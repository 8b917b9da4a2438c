package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/niemtran/model"
)

func TestComponentIRI(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		ns    string
		local string
		want  string
	}{
		"plain namespace": {
			ns:    "http://release.niem.gov/niem/niem-core/4.0/",
			local: "PersonGivenName",
			want:  "http://release.niem.gov/niem/niem-core/4.0/#PersonGivenName",
		},
		"namespace with fragment marker": {
			ns:    "http://release.niem.gov/niem/niem-core/4.0/#",
			local: "PersonGivenName",
			want:  "http://release.niem.gov/niem/niem-core/4.0/#PersonGivenName",
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := model.ComponentIRI(tc.ns, tc.local)
			assert.Equal(t, tc.want, got)
			assert.Contains(t, got, "#")

			// Stable.
			assert.Equal(t, got, model.ComponentIRI(tc.ns, tc.local))
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	m := &model.Model{
		Attributes: map[string]string{
			"http://example.com/ns#sequenceID": "positiveInteger",
		},
		SimpleElements: map[string]string{
			"http://example.com/ns#Name": "token",
			"http://example.com/ns#List": "list/decimal",
		},
		ExternalNamespaces: []string{"http://example.com/external/"},
		ContextBindings: [][2]string{
			{"rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#"},
			{"ex", "http://example.com/ns#"},
		},
		HasWildcard: true,
	}

	data, err := m.Marshal()
	require.NoError(t, err)

	// The four tables appear verbatim under their wire names.
	for _, key := range []string{"attributes", "simpleElements", "externalNamespaces", "contextBindings", "hasWildcard"} {
		assert.Contains(t, string(data), `"`+key+`"`)
	}

	got, err := model.Load(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestLoadFormatError(t *testing.T) {
	t.Parallel()

	_, err := model.Load(strings.NewReader("{not json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrFormat)
}

func TestLookups(t *testing.T) {
	t.Parallel()

	m := &model.Model{
		Attributes:         map[string]string{"a#x": "string"},
		SimpleElements:     map[string]string{"a#E": "boolean"},
		ExternalNamespaces: []string{"http://example.com/ext/"},
	}

	tok, ok := m.AttributeType("a#x")
	require.True(t, ok)
	assert.Equal(t, "string", tok)

	_, ok = m.AttributeType("a#missing")
	assert.False(t, ok)

	tok, ok = m.SimpleElementType("a#E")
	require.True(t, ok)
	assert.Equal(t, "boolean", tok)

	assert.True(t, m.IsExternal("http://example.com/ext/"))
	assert.False(t, m.IsExternal("http://example.com/other/"))
}
