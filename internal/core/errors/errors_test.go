package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeInvalidInput, "empty tree")
		assert.Equal(t, "[INVALID_INPUT] empty tree", err.Error())
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("unexpected EOF")
		err := Wrap(original, CodeInvalidInput, "decode ast")
		assert.Equal(t, "[INVALID_INPUT] decode ast: unexpected EOF", err.Error())
		assert.ErrorIs(t, err, original)
	})

	t.Run("IsCode", func(t *testing.T) {
		err := Newf(CodeUnhandledKind, "no policy for %s", "LAMBDA_EXPR")
		assert.True(t, IsCode(err, CodeUnhandledKind))
		assert.False(t, IsCode(err, CodeInvalidInput))
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("generate a.json: %w", New(CodeUnhandledKind, "unknown kind"))
		assert.True(t, IsCode(err, CodeUnhandledKind))
		assert.Equal(t, CodeUnhandledKind, CodeOf(err))
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeUnhandledKind, "unknown kind"), CtxKind, "LAMBDA_EXPR")
		assert.Contains(t, err.Error(), "LAMBDA_EXPR")
		assert.True(t, IsCode(err, CodeUnhandledKind))

		plain := AddContext(errors.New("boom"), CtxPath, "a.json")
		assert.True(t, IsCode(plain, CodeInternal))
	})

	t.Run("CodeOfPlainError", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}
