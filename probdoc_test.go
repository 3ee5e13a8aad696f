package probdoc_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/probdoc"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := probdoc.Errorf(probdoc.ENOTFOUND, "topic %q not found", "strings")

	assert.Equal(t, probdoc.ENOTFOUND, probdoc.ErrorCode(err))
	assert.Equal(t, "topic \"strings\" not found", probdoc.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, probdoc.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, probdoc.ErrorMessage(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, probdoc.EINTERNAL, probdoc.ErrorCode(err))
	assert.Equal(t, "boom", probdoc.ErrorMessage(err))
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	t.Run("keeps cause reachable", func(t *testing.T) {
		t.Parallel()

		err := probdoc.WrapError(probdoc.ELOAD, context.Canceled, "loading %s", "https://example.com")

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, probdoc.ELOAD, probdoc.ErrorCode(err))
		assert.Equal(t, "loading https://example.com: context canceled", probdoc.ErrorMessage(err))
	})

	t.Run("outer code wins over wrapped application error", func(t *testing.T) {
		t.Parallel()

		inner := probdoc.Errorf(probdoc.EINVALID, "bad")
		err := fmt.Errorf("context: %w", probdoc.WrapError(probdoc.EIO, inner, "writing"))

		assert.Equal(t, probdoc.EIO, probdoc.ErrorCode(err))
	})
}
