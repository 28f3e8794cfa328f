package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageErrorsCarryMetricAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageWrite(MetricDistance, cause)

	assert.Equal(t, CodeStorageWrite, err.Code)
	assert.Equal(t, MetricDistance, err.Metric)
	assert.Contains(t, err.Error(), MetricDistance)
	assert.True(t, errors.Is(err, cause))
}

func TestNotFoundMessageNamesSensorAndMetric(t *testing.T) {
	err := NewNotFound(MetricSpeed, "99")

	assert.Equal(t, CodeNotFound, err.Code)
	assert.Contains(t, err.Message, "99")
	assert.Contains(t, err.Message, MetricSpeed)
}

func TestAsErrorUnwrapsThroughChain(t *testing.T) {
	inner := NewBadRequest("value")
	wrapped := fmt.Errorf("handling request: %w", inner)

	tagged, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeBadRequest, tagged.Code)
}

func TestAsErrorRejectsPlainErrors(t *testing.T) {
	_, ok := AsError(errors.New("plain"))
	assert.False(t, ok)
}
