package ledger

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	err := NewError(KindNotFound, "get", "block 7 not found")
	assert.Equal(t, "get: NOT_FOUND: block 7 not found", err.Error())

	wrapped := WrapError(KindIO, "import", "read record 3", io.ErrUnexpectedEOF)
	assert.Equal(t, "import: IO: read record 3: unexpected EOF", wrapped.Error())
	assert.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := NewError(KindVerification, "append", MsgMerkleMismatch)
	wrapped := fmt.Errorf("load journal: %w", base)

	assert.Equal(t, KindVerification, KindOf(wrapped))
	assert.True(t, IsVerification(wrapped))
	assert.False(t, IsIO(wrapped))
}

func TestKindOf_ForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		kind Kind
		is   func(error) bool
	}{
		{KindInvalidParam, IsInvalidParam},
		{KindNotFound, IsNotFound},
		{KindVerification, IsVerification},
		{KindIO, IsIO},
		{KindStorage, IsStorage},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.True(t, tt.is(NewError(tt.kind, "op", "msg")))
			for _, other := range tests {
				if other.kind != tt.kind {
					assert.False(t, other.is(NewError(tt.kind, "op", "msg")))
				}
			}
		})
	}
}
