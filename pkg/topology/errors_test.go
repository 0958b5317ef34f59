package topology

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopologyError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "switch with context",
			err:  NewError("AddSwitch").Switch("S1").Cause(ErrParallelSwitch).Context("parallel to %q", "S0").Err(),
			want: `AddSwitch switch "S1" (parallel to "S0"): switch is parallel to an existing switch`,
		},
		{
			name: "bus",
			err:  NewError("AddSwitch").Bus("Z").Cause(ErrMissingBus).Err(),
			want: `AddSwitch bus "Z": switch endpoint bus does not exist`,
		},
		{
			name: "bare",
			err:  NewError("InitSwitches").Cause(ErrAlreadyInitialized).Err(),
			want: "InitSwitches: switches already initialized",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestTopologyError_Chain(t *testing.T) {
	err := NewError("OpenSwitches").Switch("S9").Cause(ErrUnknownSwitch).Err()
	wrapped := fmt.Errorf("batch: %w", err)

	assert.True(t, errors.Is(wrapped, ErrUnknownSwitch))
	assert.False(t, errors.Is(wrapped, ErrMissingBus))
	assert.True(t, IsPreconditionViolation(wrapped))
	assert.False(t, IsPreconditionViolation(errors.New("other")))

	var te *TopologyError
	assert.True(t, errors.As(wrapped, &te))
	assert.Equal(t, "S9", te.ID)
	assert.Equal(t, "switch", te.Entity)
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{"open": Open, "CLOSED": Closed, " close ": Closed, "0": Open, "1": Closed} {
		got, err := ParseStatus(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStatus("ajar")
	assert.Error(t, err)
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "Status(4)", Status(4).String())
}
