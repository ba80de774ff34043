package playcore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMatchesKindViaErrorsIs(t *testing.T) {
	cause := errors.New("no such file")
	err := &Error{Kind: KindOpenFailed, Err: cause}

	require.True(t, errors.Is(err, KindOpenFailed))
	require.False(t, errors.Is(err, KindSeekOutOfRange))
}

func TestErrorUnwrapsUnderlyingCause(t *testing.T) {
	cause := errors.New("demuxer exploded")
	err := &Error{Kind: KindMediaContainer, Err: cause}
	require.ErrorIs(t, err, cause)
}

func TestErrorMessageIncludesKindAndCause(t *testing.T) {
	err := &Error{Kind: KindOpenFailed, Err: errors.New("boom")}
	require.Equal(t, "open_failed: boom", err.Error())
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := &Error{Kind: KindInvalidCommand}
	require.Equal(t, string(KindInvalidCommand), err.Error())
}

func TestWrapErrReturnsNilForNilErr(t *testing.T) {
	require.Nil(t, wrapErr(KindMediaContainer, nil))
}

func TestWrapErrWrapsNonNilErr(t *testing.T) {
	cause := fmt.Errorf("decode failed")
	wrapped := wrapErr(KindMediaContainer, cause)
	require.Error(t, wrapped)
	require.True(t, errors.Is(wrapped, KindMediaContainer))
	require.ErrorIs(t, wrapped, cause)
}
