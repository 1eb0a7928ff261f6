package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutError_MatchesKindSentinel(t *testing.T) {
	err := NewError(KindPartialCommit, "commit", "add item 7", errors.New("boom"))
	wrapped := fmt.Errorf("checkout: %w", err)

	assert.ErrorIs(t, wrapped, ErrPartialCommit)
	assert.NotErrorIs(t, wrapped, ErrCommitRejected)
	assert.Equal(t, KindPartialCommit, KindOf(wrapped))
	assert.Contains(t, err.Error(), "boom")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.Equal(t, KindNetwork, KindOf(fmt.Errorf("x: %w", ErrNetwork)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
}

func TestUserMessage_DistinguishesCreatedFromNothingCreated(t *testing.T) {
	assert.Contains(t, UserMessage(KindCommitRejected), "Nothing was created")
	assert.Contains(t, UserMessage(KindPaymentFailed), "created but not paid")
	assert.NotEqual(t, UserMessage(KindCommitRejected), UserMessage(KindPartialCommit))
}

func TestRemoteError(t *testing.T) {
	notFound := &RemoteError{StatusCode: 404}
	assert.True(t, notFound.NotFound())
	assert.True(t, notFound.Rejected())

	unavailable := &RemoteError{StatusCode: 503}
	assert.False(t, unavailable.Rejected())
}
