package validation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSwitchRequest(t *testing.T) {
	long := make([]byte, MaxIDLength+1)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name    string
		req     *SwitchRequest
		wantTag string
	}{
		{"valid", &SwitchRequest{Name: "S1", Bus0: "A", Bus1: "B", Capacity: 100}, ""},
		{"unrated", &SwitchRequest{Name: "S1", Bus0: "A", Bus1: "B", Capacity: math.NaN()}, ""},
		{"missing name", &SwitchRequest{Bus0: "A", Bus1: "B"}, "required"},
		{"missing bus1", &SwitchRequest{Name: "S1", Bus0: "A"}, "required"},
		{"self loop", &SwitchRequest{Name: "S1", Bus0: "A", Bus1: "A"}, "nefield"},
		{"name too long", &SwitchRequest{Name: string(long), Bus0: "A", Bus1: "B"}, "max"},
		{"negative capacity", &SwitchRequest{Name: "S1", Bus0: "A", Bus1: "B", Capacity: -1}, "gte"},
		{"infinite capacity", &SwitchRequest{Name: "S1", Bus0: "A", Bus1: "B", Capacity: math.Inf(1)}, "gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSwitchRequest(tt.req)
			if tt.wantTag == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.wantTag, fe.Tag)
		})
	}
}

func TestValidateSwitchRequest_Nil(t *testing.T) {
	assert.ErrorIs(t, ValidateSwitchRequest(nil), ErrInvalidRequest)
}

func TestValidateElementRequest(t *testing.T) {
	require.NoError(t, ValidateElementRequest(&ElementRequest{Component: "Line", ID: "L1", Buses: []string{"A", "B"}}))

	err := ValidateElementRequest(&ElementRequest{Component: "Line", ID: "L1", Buses: []string{"A", ""}})
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "required", fe.Tag)

	err = ValidateElementRequest(&ElementRequest{Component: "Load", ID: "D1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestValidateBusRequest(t *testing.T) {
	require.NoError(t, ValidateBusRequest(&BusRequest{ID: "A"}))
	assert.ErrorIs(t, ValidateBusRequest(&BusRequest{}), ErrInvalidRequest)
}
