package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTags_RoundTrip(t *testing.T) {
	tags := map[string]string{
		"Name":            `db "primary", shard=1`,
		"UnattachedSince": "2024-01-01",
		"env":             "do-not-delete",
		"multi":           "line\nbreak",
	}

	encoded, err := EncodeTags(tags)
	require.NoError(t, err)

	decoded, err := DecodeTags(encoded)
	require.NoError(t, err)
	assert.Equal(t, tags, decoded)
}

func TestEncodeTags_SortedAndEmpty(t *testing.T) {
	encoded, err := EncodeTags(map[string]string{"b": "2", "a": "1"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1","b":"2"}`, encoded)

	encoded, err = EncodeTags(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", encoded)
}

func TestDecodeTags_Empty(t *testing.T) {
	tags, err := DecodeTags("")
	require.NoError(t, err)
	assert.Empty(t, tags)
	assert.NotNil(t, tags)
}

func TestDecodeTags_RejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"{'env': 'prod'}",
		`["env","prod"]`,
		`{"env": 1}`,
		`{"env":"prod"} {"x":"y"}`,
		`{"env":"prod"`,
		"null",
		`__import__('os').system('true')`,
	} {
		_, err := DecodeTags(in)
		assert.ErrorIs(t, err, ErrMalformedTags, in)
	}
}
