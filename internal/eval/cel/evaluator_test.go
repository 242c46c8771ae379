package cel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		expr    string
		request string
		want    bool
	}{
		{"contains lower", "request.lowerAscii().contains('flight')", "Book me a FLIGHT to London", true},
		{"no match", "request.lowerAscii().contains('hotel')", "What is the capital of France?", false},
		{"disjunction", "request.lowerAscii().contains('flight') || request.lowerAscii().contains('hotel')", "Find a hotel in Rome", true},
		{"size", "size(request) == 0", "", true},
		{"startsWith", "request.startsWith('What')", "What is the meaning of life?", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(context.Background(), tt.expr, tt.request)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	_, err = e.Evaluate(context.Background(), "request.contains(", "x")
	assert.Error(t, err)

	_, err = e.Evaluate(context.Background(), "size(request)", "abc")
	assert.Error(t, err, "non-boolean result must be rejected")

	_, err = e.Evaluate(context.Background(), "unknown_var == 'x'", "abc")
	assert.Error(t, err)
}

func TestEvaluate_CachesPrograms(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	expr := "request.contains('london')"
	_, err = e.Evaluate(context.Background(), expr, "weather in london")
	require.NoError(t, err)
	assert.Len(t, e.cache, 1)

	_, err = e.Evaluate(context.Background(), expr, "weather in paris")
	require.NoError(t, err)
	assert.Len(t, e.cache, 1)
}

func TestValidateExpression(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	assert.NoError(t, e.ValidateExpression("request.contains('hotel')"))
	assert.Error(t, e.ValidateExpression("size(request)"))
	assert.Error(t, e.ValidateExpression("request.contains("))
}
