package telemetry

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/posthog/posthog-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEnqueuer captures events for testing.
type mockEnqueuer struct {
	mu     sync.Mutex
	events []posthog.Capture
	closed bool
}

func (m *mockEnqueuer) Enqueue(msg posthog.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if capture, ok := msg.(posthog.Capture); ok {
		m.events = append(m.events, capture)
	}
	return nil
}

func (m *mockEnqueuer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func TestPostHogClient_Track_WhenEnabled(t *testing.T) {
	mock := &mockEnqueuer{}
	client := newPostHogClientWithEnqueuer(mock, &Config{Enabled: true, AnonymousID: "anon-1"}, "1.0.0")

	client.Track(EventTaskCreated, map[string]any{"size": "large"})

	require.Len(t, mock.events, 1)
	ev := mock.events[0]
	assert.Equal(t, EventTaskCreated, ev.Event)
	assert.Equal(t, "anon-1", ev.DistinctId)
	assert.Equal(t, "large", ev.Properties["size"])
	assert.Equal(t, runtime.GOOS, ev.Properties["os"])
	assert.Equal(t, "1.0.0", ev.Properties["app_version"])
	assert.Equal(t, false, ev.Properties["$process_person_profile"])
}

func TestPostHogClient_Track_WhenDisabled(t *testing.T) {
	mock := &mockEnqueuer{}
	client := newPostHogClientWithEnqueuer(mock, &Config{Enabled: false, AnonymousID: "anon-1"}, "1.0.0")

	client.Track(EventTaskCreated, nil)
	assert.Empty(t, mock.events)
}

func TestPostHogClient_CloseStopsTracking(t *testing.T) {
	mock := &mockEnqueuer{}
	client := newPostHogClientWithEnqueuer(mock, &Config{Enabled: true, AnonymousID: "anon-1"}, "1.0.0")

	require.NoError(t, client.Close())
	assert.True(t, mock.closed)
	require.NoError(t, client.Close())

	client.Track(EventTasksReset, nil)
	assert.Empty(t, mock.events)
}

func TestNew_ReturnsNoopWithoutKeyOrConsent(t *testing.T) {
	c, err := New(ClientConfig{APIKey: "", Config: &Config{Enabled: true}})
	require.NoError(t, err)
	assert.IsType(t, &NoopClient{}, c)

	c, err = New(ClientConfig{APIKey: "phc_test", Config: &Config{Enabled: false}})
	require.NoError(t, err)
	assert.IsType(t, &NoopClient{}, c)

	c, err = New(ClientConfig{APIKey: "phc_test"})
	require.NoError(t, err)
	assert.IsType(t, &NoopClient{}, c)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	disabled, err := LoadConfig(dir, false)
	require.NoError(t, err)
	assert.NotEmpty(t, disabled.AnonymousID)
	_, statErr := os.Stat(filepath.Join(dir, ConfigFileName))
	assert.True(t, os.IsNotExist(statErr), "disabled telemetry writes nothing")

	first, err := LoadConfig(dir, true)
	require.NoError(t, err)
	assert.True(t, first.IsEnabled())

	second, err := LoadConfig(dir, true)
	require.NoError(t, err)
	assert.Equal(t, first.AnonymousID, second.AnonymousID, "install id is stable")
}
