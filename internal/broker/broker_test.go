package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishSubscribe(t *testing.T) {
	b := New[string](2)

	assert.True(t, b.Publish("session", "a"))
	ch := b.Subscribe("session")
	assert.True(t, b.Publish("session", "b"))

	assert.Equal(t, "a", <-ch)
	assert.Equal(t, "b", <-ch)
}

func TestPublishDropsWhenFull(t *testing.T) {
	b := New[int](1)

	assert.True(t, b.Publish("t", 1))
	assert.False(t, b.Publish("t", 2))

	assert.Equal(t, 1, <-b.Subscribe("t"))
	assert.True(t, b.Publish("t", 3))
}

func TestCloseTopic(t *testing.T) {
	b := New[int](1)
	ch := b.Subscribe("t")

	b.CloseTopic("t")
	_, open := <-ch
	assert.False(t, open)

	// a closed topic is recreated on the next use
	assert.True(t, b.Publish("t", 1))
	assert.Equal(t, 1, <-b.Subscribe("t"))

	b.CloseTopic("missing")
}
