package bridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/liverelay/pkg/bridge"
)

func TestQueue(t *testing.T) {
	t.Parallel()

	t.Run("drains_in_fifo_order", func(t *testing.T) {
		t.Parallel()

		q := bridge.NewQueue(0)
		for _, s := range []string{"a", "b", "c"} {
			assert.True(t, q.Push(bridge.Text(s)))
		}

		var got []string
		n := q.Drain(func(m bridge.Message) { got = append(got, string(m.Data)) })

		assert.Equal(t, 3, n)
		assert.Equal(t, []string{"a", "b", "c"}, got)
		assert.Zero(t, q.Len())
	})

	t.Run("rejects_over_limit", func(t *testing.T) {
		t.Parallel()

		q := bridge.NewQueue(1)
		assert.True(t, q.Push(bridge.Text("a")))
		assert.False(t, q.Push(bridge.Text("b")))
		assert.Equal(t, 1, q.Len())
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()

		q := bridge.NewQueue(10)
		q.Push(bridge.Text("a"))
		q.Push(bridge.Text("b"))
		q.Clear()

		assert.Zero(t, q.Len())
		assert.Zero(t, q.Drain(func(bridge.Message) { t.Fatal("queue should be empty") }))
		assert.True(t, q.Push(bridge.Text("c")))
	})
}
