package broker

import (
	"log"
	"sync"
)

type Broker[T any] struct {
	mu          sync.Mutex
	topics      map[string]chan T
	maxSizeChan uint
}

func New[T any](maxCountMsgInTopic uint) *Broker[T] {
	return &Broker[T]{
		topics:      make(map[string]chan T),
		maxSizeChan: maxCountMsgInTopic,
	}
}

// Publish never blocks: a full topic drops the message.
func (b *Broker[T]) Publish(topic string, msg T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case b.topic(topic) <- msg:
		return true
	default:
		log.Printf("⚠️ Topic %s is full, dropping message", topic)
		return false
	}
}

func (b *Broker[T]) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if v, ok := b.topics[topic]; ok {
		close(v)
	}

	delete(b.topics, topic)
}

func (b *Broker[T]) Subscribe(topic string) <-chan T {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.topic(topic)
}

func (b *Broker[T]) topic(name string) chan T {
	if _, ok := b.topics[name]; !ok {
		b.topics[name] = make(chan T, b.maxSizeChan)
	}

	return b.topics[name]
}
