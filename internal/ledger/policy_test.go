package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinkagePolicy(t *testing.T) {
	p, err := ParseLinkagePolicy("")
	require.NoError(t, err)
	assert.Equal(t, LinkageLenient, p)

	p, err = ParseLinkagePolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, LinkageStrict, p)

	_, err = ParseLinkagePolicy("STRICT")
	assert.True(t, IsInvalidParam(err))
}

func TestParseSignaturePolicy(t *testing.T) {
	for _, s := range []string{"off", "if-present", "required"} {
		p, err := ParseSignaturePolicy(s)
		require.NoError(t, err)
		assert.Equal(t, SignaturePolicy(s), p)
	}

	p, err := ParseSignaturePolicy("")
	require.NoError(t, err)
	assert.Equal(t, SignaturesIfPresent, p)

	_, err = ParseSignaturePolicy("always")
	assert.True(t, IsInvalidParam(err))
}
