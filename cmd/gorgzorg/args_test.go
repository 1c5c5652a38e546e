package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgumentList(t *testing.T) {
	list := newArgumentList([]string{"-v", "-c", "192.168.0.1", "-g", "Test", "-p", "20000"})

	assert.True(t, list.getSwitch("-v"))
	assert.False(t, list.getSwitch("-v"))
	assert.Equal(t, "192.168.0.1", list.getSwitchArg("-c", ""))
	assert.Equal(t, "Test", list.getSwitchArg("-g", ""))
	assert.Equal(t, "20000", list.getSwitchArg("-p", ""))
	assert.Equal(t, "10000", list.getSwitchArg("-p", "10000"))
}

func TestOptionalSwitchArg(t *testing.T) {
	t.Run("with value", func(t *testing.T) {
		list := newArgumentList([]string{"-z", "192.168.10.16", "-q"})
		value, present := list.getOptionalSwitchArg("-z")
		assert.True(t, present)
		assert.Equal(t, "192.168.10.16", value)
		assert.True(t, list.getSwitch("-q"))
	})

	t.Run("value omitted", func(t *testing.T) {
		list := newArgumentList([]string{"-z", "-y", "-q"})
		value, present := list.getOptionalSwitchArg("-z")
		assert.True(t, present)
		assert.Empty(t, value)
		assert.True(t, list.getSwitch("-y"))
		assert.True(t, list.getSwitch("-q"))
	})

	t.Run("absent", func(t *testing.T) {
		list := newArgumentList([]string{"-c", "10.0.0.1"})
		_, present := list.getOptionalSwitchArg("-z")
		assert.False(t, present)
	})

	t.Run("trailing switch", func(t *testing.T) {
		list := newArgumentList([]string{"-z"})
		value, present := list.getOptionalSwitchArg("-z")
		assert.True(t, present)
		assert.Empty(t, value)
	})
}

func TestOrderIndependence(t *testing.T) {
	list := newArgumentList([]string{"-g", "Test", "-v", "-c", "10.0.0.2"})
	assert.True(t, list.getSwitch("-v"))
	assert.Equal(t, "10.0.0.2", list.getSwitchArg("-c", ""))
	assert.Equal(t, "Test", list.getSwitchArg("-g", ""))
}
