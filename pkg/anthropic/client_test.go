package anthropic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sharppicks/parlay-engine/internal/resilience"
)

func TestClassifyStatus_RateLimitIsTransient(t *testing.T) {
	err := classifyStatus(429, errors.New("rate limited"))
	assert.True(t, resilience.IsTransient(err))
	assert.False(t, resilience.IsUnavailable(err))
}

func TestClassifyStatus_ServerErrorIsUnavailable(t *testing.T) {
	for _, status := range []int{500, 529} {
		err := classifyStatus(status, errors.New("overloaded"))
		assert.True(t, resilience.IsUnavailable(err), "status %d", status)
		assert.False(t, resilience.IsTransient(err), "status %d", status)
	}
}

func TestClassifyStatus_QuotaMessageIsUnavailable(t *testing.T) {
	err := classifyStatus(400, errors.New("your credit balance is too low"))
	assert.True(t, resilience.IsUnavailable(err))
}

func TestClassifyStatus_OtherErrorsPassThrough(t *testing.T) {
	base := errors.New("invalid model name")
	err := classifyStatus(404, base)
	assert.False(t, resilience.IsTransient(err))
	assert.False(t, resilience.IsUnavailable(err))
	assert.Equal(t, base, err)
}

func TestClassifyErr_QuotaWithoutStatus(t *testing.T) {
	err := classifyErr(errors.New("billing hard limit reached"))
	assert.True(t, resilience.IsUnavailable(err))
}

func TestResponseText(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "hello "},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "world"},
	}}
	assert.Equal(t, "hello world", resp.Text())
}
