package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptIDDeterminism(t *testing.T) {
	ids := []string{"aa", "bb"}

	id1, err := ReceiptID(1, "tip", ids)
	require.NoError(t, err)
	id2, err := ReceiptID(1, "tip", ids)
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "ReceiptID must be deterministic")
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestReceiptIDChangesWithInput(t *testing.T) {
	base, err := ReceiptID(1, "tip", []string{"aa", "bb"})
	require.NoError(t, err)

	others := []struct {
		name   string
		number uint32
		tip    string
		ids    []string
	}{
		{"number", 2, "tip", []string{"aa", "bb"}},
		{"tip", 1, "other", []string{"aa", "bb"}},
		{"order", 1, "tip", []string{"bb", "aa"}},
		{"ids", 1, "tip", []string{"aa"}},
	}

	for _, o := range others {
		t.Run(o.name, func(t *testing.T) {
			id, err := ReceiptID(o.number, o.tip, o.ids)
			require.NoError(t, err)
			assert.NotEqual(t, base, id)
		})
	}
}

func TestReceiptIDNilIDs(t *testing.T) {
	a, err := ReceiptID(0, "tip", nil)
	require.NoError(t, err)
	b, err := ReceiptID(0, "tip", []string{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte("payload")
	assert.NotEqual(t, HashWithDomain("a", data), HashWithDomain("b", data))
	// boundary ambiguity: "ab"+"c" vs "a"+"bc"
	assert.NotEqual(t, HashWithDomain("ab", []byte("c")), HashWithDomain("a", []byte("bc")))
}
