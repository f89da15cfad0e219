package systems

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSystem struct {
	name     string
	fail     error
	events   *[]string
	shutdown bool
}

func (f *fakeSystem) Name() string { return f.name }

func (f *fakeSystem) Startup() error {
	*f.events = append(*f.events, "up:"+f.name)
	return f.fail
}

func (f *fakeSystem) Shutdown() error {
	*f.events = append(*f.events, "down:"+f.name)
	f.shutdown = true
	return nil
}

func TestConnectRejectsDuplicates(t *testing.T) {
	var events []string
	var m Map
	assert.True(t, m.Connect(&fakeSystem{name: "a", events: &events}))
	assert.False(t, m.Connect(&fakeSystem{name: "a", events: &events}))
	assert.Equal(t, 0, m.Find("a"))
	assert.Equal(t, -1, m.Find("b"))
}

func TestStartupShutdownOrder(t *testing.T) {
	var events []string
	var m Map
	m.Connect(&fakeSystem{name: "a", events: &events})
	m.Connect(&fakeSystem{name: "b", events: &events})

	require.NoError(t, m.Startup())
	require.NoError(t, m.Shutdown())
	assert.Equal(t, []string{"up:a", "up:b", "down:b", "down:a"}, events)
}

func TestStartupAggregatesErrors(t *testing.T) {
	var events []string
	var m Map
	m.Connect(&fakeSystem{name: "a", events: &events, fail: errors.New("boom")})
	m.Connect(&fakeSystem{name: "b", events: &events})
	m.Connect(&fakeSystem{name: "c", events: &events, fail: errors.New("bang")})

	err := m.Startup()
	require.Error(t, err)

	set, ok := err.(ErrorSet)
	require.True(t, ok)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, "a: boom\nc: bang", set.Error())
	assert.Equal(t, []string{"up:a", "up:b", "up:c"}, events)
}
