package props

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHooks struct {
	sets    []string
	removes []string
	resets  int
}

func (h *recordingHooks) OnSet(key string, value any) { h.sets = append(h.sets, key) }
func (h *recordingHooks) OnRemove(key string)         { h.removes = append(h.removes, key) }
func (h *recordingHooks) OnReset()                    { h.resets++ }

func TestSetAndGet(t *testing.T) {
	s := NewStore(nil)

	require.NoError(t, s.Set("theme", "dark"))

	v, ok := s.Get("theme")
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	// Absent keys are an ordinary result.
	_, ok = s.Get("missing")
	assert.False(t, ok)
	assert.False(t, s.Has("missing"))
}

func TestValidatorRejectionLeavesStateUntouched(t *testing.T) {
	hooks := &recordingHooks{}
	s := NewStore(hooks)

	s.RegisterValidator("port", func(v any) error {
		p, ok := v.(int)
		if !ok || p <= 0 || p > 65535 {
			return errors.New("not a valid port")
		}
		return nil
	})

	require.NoError(t, s.Set("port", 8080))
	require.Len(t, hooks.sets, 1)

	err := s.Set("port", -1)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "port", verr.Key)

	// The pre-call value survives and the on-set hook did not run again.
	v, ok := s.Get("port")
	assert.True(t, ok)
	assert.Equal(t, 8080, v)
	assert.Len(t, hooks.sets, 1)
}

func TestRemoveInvokesHookEvenWhenAbsent(t *testing.T) {
	hooks := &recordingHooks{}
	s := NewStore(hooks)

	require.NoError(t, s.Set("a", 1))
	s.Remove("a")
	assert.False(t, s.Has("a"))

	s.Remove("never-there")
	assert.Equal(t, []string{"a", "never-there"}, hooks.removes)
}

func TestResetReplacesEverything(t *testing.T) {
	hooks := &recordingHooks{}
	s := NewStore(hooks)

	require.NoError(t, s.Set("a", 1))
	require.NoError(t, s.Set("b", 2))

	s.Reset(map[string]any{"c": 3})

	assert.False(t, s.Has("a"))
	assert.False(t, s.Has("b"))
	v, ok := s.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, hooks.resets)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore(nil)
	require.NoError(t, s.Set("a", 1))

	snap := s.Snapshot()
	snap["a"] = 99
	snap["b"] = 2

	v, _ := s.Get("a")
	assert.Equal(t, 1, v)
	assert.False(t, s.Has("b"))
}

func TestValidatorOnlyGuardsItsOwnKey(t *testing.T) {
	s := NewStore(nil)
	s.RegisterValidator("strict", func(any) error { return errors.New("always no") })

	require.Error(t, s.Set("strict", "x"))
	require.NoError(t, s.Set("relaxed", "y"))
}
