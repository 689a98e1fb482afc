package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	wrapped := fmt.Errorf("posting: %w", NewValidationError("too long"))

	assert.Equal(t, CodeValidation, ErrorCode(wrapped))
	assert.True(t, IsCode(wrapped, CodeValidation))
	assert.False(t, IsCode(wrapped, CodeForbidden))
	assert.Equal(t, CodeStore, ErrorCode(errors.New("connection reset")))
}

func TestStoreErrorUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewStoreError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "refused")
}

func TestDeriveChatType(t *testing.T) {
	assert.Equal(t, ChatTypePrivate, DeriveChatType(0))
	assert.Equal(t, ChatTypePrivate, DeriveChatType(1))
	assert.Equal(t, ChatTypeGroup, DeriveChatType(2))
	assert.Equal(t, ChatTypeGroup, DeriveChatType(7))
}

func TestParseListKind(t *testing.T) {
	kind, err := ParseListKind("block")
	assert.NoError(t, err)
	assert.Equal(t, ListKindBlock, kind)

	_, err = ParseListKind("friends")
	assert.True(t, IsCode(err, CodeValidation))
}
