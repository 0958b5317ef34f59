package validation

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidator_CollectsAllErrors(t *testing.T) {
	err := NewConfigValidator("Config").
		Required("prefix", "").
		OneOf("level", "loud", []string{"debug", "info"}).
		NonNegative("retain", -1).
		Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 errors")
	assert.Contains(t, err.Error(), "Config.prefix")
	assert.Contains(t, err.Error(), "Config.level")
}

func TestConfigValidator_SingleError(t *testing.T) {
	cv := NewConfigValidator("Topology").
		Matches("connected_bus_prefix", "bad prefix", regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`))

	require.True(t, cv.HasErrors())
	assert.Len(t, cv.Errors(), 1)
	assert.True(t, strings.HasPrefix(cv.Validate().Error(), "Topology.connected_bus_prefix"))
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("nope")
	err := NewConfigValidator("C").Custom("f", func() error { return sentinel }).Validate()
	assert.ErrorIs(t, err, sentinel)

	assert.NoError(t, NewConfigValidator("C").Custom("f", func() error { return nil }).Validate())
}

func TestDefaultOr(t *testing.T) {
	assert.Equal(t, "bus_connected", DefaultOr("", "bus_connected"))
	assert.Equal(t, "x", DefaultOr("x", "bus_connected"))
	assert.Equal(t, 3, DefaultOr(0, 3))
}
