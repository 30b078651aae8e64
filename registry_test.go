package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	reg, err := newRegistry(defaultConfig())
	require.NoError(t, err)

	a, err := reg.lookup("Stop EC2")
	require.NoError(t, err)
	assert.Equal(t, directionStop, a.direction)
	assert.Equal(t, resourceCompute, a.resource)
	assert.Equal(t, "https://c665d2ugxezezbdzceuebtlaku0cacbv.lambda-url.ap-south-1.on.aws/", a.url)

	_, err = reg.lookup("Reboot RDS")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestRegistryAllKeepsOrder(t *testing.T) {
	reg, err := newRegistry(defaultConfig())
	require.NoError(t, err)

	var labels []string
	for _, a := range reg.all() {
		labels = append(labels, a.label)
	}
	assert.Equal(t, []string{"Start RDS", "Start EC2", "Stop RDS", "Stop EC2"}, labels)

	// all returns a copy
	reg.all()[0].label = "changed"
	assert.Equal(t, "Start RDS", reg.all()[0].label)
}

func TestRegistryRejectsInvalidConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Actions = cfg.Actions[:2]
	_, err := newRegistry(cfg)
	assert.ErrorIs(t, err, errInvalidConfig)
}
