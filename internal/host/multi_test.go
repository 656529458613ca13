package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestMulti_CallsEveryHost(t *testing.T) {
	first := NewMockHost()
	second := NewMockHost()
	multi := Multi{first, second}

	require.NoError(t, multi.SetColorScheme("Mariana"))
	require.NoError(t, multi.SetWindowTheme("Adaptive.sublime-theme"))

	for _, h := range []*MockHost{first, second} {
		assert.Equal(t, []string{"Mariana"}, h.CallsFor(SetterColorScheme))
		assert.Equal(t, []string{"Adaptive.sublime-theme"}, h.CallsFor(SetterWindowTheme))
	}
}

func TestMulti_FailureDoesNotStopOtherHosts(t *testing.T) {
	failing := NewMockHost()
	failing.FailWith(SetterColorScheme, errors.New("bridge offline"))
	working := NewMockHost()

	err := Multi{failing, working}.SetColorScheme("Mariana")
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, err.Error(), "bridge offline")
	assert.Equal(t, []string{"Mariana"}, working.CallsFor(SetterColorScheme))

	failing.FailWith(SetterColorScheme, nil)
	assert.NoError(t, Multi{failing, working}.SetColorScheme("Mariana"))
}

func TestMulti_ConnectSkipsHostsWithoutConnections(t *testing.T) {
	multi := Multi{NewMockHost()}
	assert.NoError(t, multi.Connect())
	assert.NoError(t, multi.Disconnect())
}
