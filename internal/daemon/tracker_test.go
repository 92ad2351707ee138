package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/imepop/internal/config"
)

func drain(q *RequestQueue) []string {
	var out []string
	for q.Len() > 0 {
		v, _ := q.Receive(context.Background())
		out = append(out, v)
	}
	return out
}

func TestTracker_DedupsAndMaps(t *testing.T) {
	out := NewRequestQueue()
	tr := NewTracker(config.DefaultConfig(), out, nil)

	for _, name := range []string{"keyboard-us", "keyboard-us", "mozc", "mozc", "pinyin", "keyboard-us"} {
		tr.handle(observation{name: name})
	}

	assert.Equal(t, []string{"en", "かな", "pinyin", "en"}, drain(out))

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, "keyboard-us", last)
}

func TestTracker_IgnoresEmptyNames(t *testing.T) {
	out := NewRequestQueue()
	tr := NewTracker(config.DefaultConfig(), out, nil)

	tr.handle(observation{name: ""})
	assert.Equal(t, 0, out.Len())

	_, ok := tr.Last()
	assert.False(t, ok)
}

func TestTracker_ShowOnStartupDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Watcher.ShowOnStartup = false

	out := NewRequestQueue()
	tr := NewTracker(cfg, out, nil)

	tr.handle(observation{name: "keyboard-us"})
	assert.Equal(t, 0, out.Len(), "first observation only records state")

	tr.handle(observation{name: "mozc"})
	assert.Equal(t, []string{"かな"}, drain(out))
}

func TestTracker_Force(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Watcher.ShowOnStartup = false

	out := NewRequestQueue()
	tr := NewTracker(cfg, out, nil)

	tr.handle(observation{name: "mozc", force: true})
	tr.handle(observation{name: "mozc", force: true})
	tr.handle(observation{name: "mozc"})

	assert.Equal(t, []string{"かな", "かな"}, drain(out))
}

func TestTracker_UpdateConfig(t *testing.T) {
	out := NewRequestQueue()
	tr := NewTracker(config.DefaultConfig(), out, nil)

	tr.handle(observation{name: "mozc"})

	cfg := config.DefaultConfig()
	cfg.InputMethods.Names = map[string]string{"keyboard-us": "US"}
	tr.UpdateConfig(cfg)

	tr.handle(observation{name: "keyboard-us"})
	assert.Equal(t, []string{"かな", "US"}, drain(out))
}

func TestTracker_Run(t *testing.T) {
	out := NewRequestQueue()
	tr := NewTracker(config.DefaultConfig(), out, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	tr.Observe("mozc")
	tr.Observe("mozc")
	tr.Observe("keyboard-us")

	recvCtx, recvCancel := context.WithTimeout(context.Background(), time.Second)
	defer recvCancel()

	first, err := out.Receive(recvCtx)
	require.NoError(t, err)
	second, err := out.Receive(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, []string{"かな", "en"}, []string{first, second})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("tracker did not stop")
	}
}
