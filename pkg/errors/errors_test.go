package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrAccessDenied, "registry write refused")
	assert.Equal(t, errors.ErrAccessDenied, err.Code)
	assert.Equal(t, "[ACCESS_DENIED] registry write refused", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("exit status 1")
	err := errors.Wrap(cause, errors.ErrPlatformFailure, "duti invocation failed")

	require.NotNil(t, err)
	assert.Equal(t, "[PLATFORM_FAILURE] duti invocation failed: exit status 1", err.Error())
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrPlatformFailure, "ignored"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrPlatformFailure, "ignored %s", "too"))
}

func TestIsMatchesByCode(t *testing.T) {
	a := errors.New(errors.ErrInvalidApplication, "not an executable")
	b := errors.New(errors.ErrInvalidApplication, "different message")
	c := errors.New(errors.ErrAccessDenied, "other code")

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := errors.New(errors.ErrMetadataUnresolvable, "no bundle identifier")
	wrapped := fmt.Errorf("while setting default: %w", inner)

	assert.True(t, errors.IsCode(wrapped, errors.ErrMetadataUnresolvable))
	assert.False(t, errors.IsCode(wrapped, errors.ErrAccessDenied))
	assert.Equal(t, errors.ErrMetadataUnresolvable, errors.CodeOf(wrapped))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, errors.ErrUnknown, errors.CodeOf(stderrors.New("plain")))
	assert.Equal(t, errors.ErrUnknown, errors.CodeOf(nil))
}

func TestWithHint(t *testing.T) {
	err := errors.New(errors.ErrAccessDenied, "registry write refused").
		WithHint("re-run from an elevated shell")

	assert.Equal(t, "re-run from an elevated shell", errors.HintOf(err))
	assert.Empty(t, errors.HintOf(stderrors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrInvalidTransition, "cannot transition").
		WithDetail("from", "active").
		WithDetail("to", "pending")

	details := errors.DetailsOf(err)
	require.NotNil(t, details)
	assert.Equal(t, "active", details["from"])
	assert.Equal(t, "pending", details["to"])
}
