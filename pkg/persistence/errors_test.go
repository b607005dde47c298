package persistence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorWrapping(t *testing.T) {
	err := NewStoreError("GetByID", "rule", "rule-1", ErrRuleNotFound)

	assert.True(t, errors.Is(err, ErrRuleNotFound))
	assert.True(t, IsRuleNotFound(err))
	assert.Contains(t, err.Error(), "rule rule-1")
	assert.Contains(t, err.Error(), "GetByID")
}

func TestStoreErrorWithoutID(t *testing.T) {
	underlying := errors.New("connection refused")
	err := NewStoreError("List", "workflow", "", underlying)

	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "workflow")
	assert.NotContains(t, err.Error(), "  ")
}

func TestNotFoundHelpers(t *testing.T) {
	assert.True(t, IsEmailNotFound(ErrEmailNotFound))
	assert.True(t, IsCallRecordNotFound(ErrCallRecordNotFound))
	assert.True(t, IsWorkflowNotFound(NewStoreError("GetByID", "workflow", "w1", ErrWorkflowNotFound)))
	assert.False(t, IsRuleNotFound(ErrWorkflowNotFound))
	assert.False(t, IsTemplateNotFound(nil))
}
