package options

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "options.toml")
	s, err := Open(path, nil)
	require.NoError(t, err)
	return s
}

func TestOpenMissingFile(t *testing.T) {
	s := testStore(t)

	_, ok := s.Get("anything")
	assert.False(t, ok)
}

func TestSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.toml")

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set("dnd", true))
	require.NoError(t, s.Set("notification_timeout", int64(2500)))

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	assert.True(t, reopened.Bool("dnd"))
	assert.Equal(t, 2500, reopened.Int("notification_timeout"))
}

func TestCreateIfAbsent(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.CreateIfAbsent("limit", int64(3)))
	assert.Equal(t, 3, s.Int("limit"))

	// An existing value must not be overwritten.
	require.NoError(t, s.CreateIfAbsent("limit", int64(99)))
	assert.Equal(t, 3, s.Int("limit"))
}

func TestBoolCoercion(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Set("flag", true))
	require.NoError(t, s.Set("notflag", "yes"))

	assert.True(t, s.Bool("flag"))
	assert.False(t, s.Bool("notflag"), "mistyped value reads as false")
	assert.False(t, s.Bool("missing"))
}

func TestIntCoercion(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected int
	}{
		{"int", 7, 7},
		{"int64", int64(8), 8},
		{"float64", float64(9), 9},
		{"string", "10", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore(t)
			require.NoError(t, s.Set("n", tt.value))
			assert.Equal(t, tt.expected, s.Int("n"))
		})
	}
}

func TestOnChange(t *testing.T) {
	s := testStore(t)

	var mu sync.Mutex
	var keys []string
	token := s.OnChange(func(key string) {
		mu.Lock()
		keys = append(keys, key)
		mu.Unlock()
	})

	require.NoError(t, s.Set("dnd", true))
	require.NoError(t, s.Set("limit", int64(1)))

	mu.Lock()
	assert.Equal(t, []string{"dnd", "limit"}, keys)
	mu.Unlock()

	s.Unsubscribe(token)
	require.NoError(t, s.Set("dnd", false))

	mu.Lock()
	assert.Len(t, keys, 2, "unsubscribed handler must not fire")
	mu.Unlock()
}

func TestWatchExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.toml")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set("dnd", false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))

	changed := make(chan string, 8)
	s.OnChange(func(key string) { changed <- key })

	// External edit, the way an editor would do it: write then rename.
	tmp := path + ".edit"
	require.NoError(t, os.WriteFile(tmp, []byte("dnd = true\n"), 0600))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case key := <-changed:
		assert.Equal(t, "dnd", key)
	case <-time.After(3 * time.Second):
		t.Fatal("external edit was never observed")
	}
	assert.True(t, s.Bool("dnd"))
}
