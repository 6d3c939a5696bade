package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE_AssemblesFromParts(t *testing.T) {
	err := E(http.StatusBadRequest, "invalid order", Detail{Field: "order_by", Error: "unknown value"})

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.EqualError(t, err.Err, "invalid order")
	require.Len(t, err.Details, 1)
	assert.Equal(t, "order_by", err.Details[0].Field)
}

func TestE_DefaultsToInternal(t *testing.T) {
	err := E(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestError_Unwraps(t *testing.T) {
	inner := errors.New("boom")
	err := E(http.StatusNotFound, fmt.Errorf("fetching: %w", inner))

	assert.ErrorIs(t, err, inner)
}

func TestError_MarshalsTransportShape(t *testing.T) {
	err := E(http.StatusUnprocessableEntity, "bad payload", Detail{Field: "q", Error: "required"})

	b, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)

	var got struct {
		Message string   `json:"message"`
		Status  int      `json:"status"`
		Details []Detail `json:"details"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "bad payload", got.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, got.Status)
	require.Len(t, got.Details, 1)
}
