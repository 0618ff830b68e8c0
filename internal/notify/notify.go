package notify

import (
	"fmt"
	"sync"
	"time"
)

// Kind classifies a notice.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "info"
	}
}

// Notice is one transient message.
type Notice struct {
	Kind    Kind
	Message string
	At      time.Time
}

// Publisher is the write side used by the sync core.
type Publisher interface {
	Publish(Notice)
}

const defaultBuffer = 16

// Center fans notices out to subscribers. The zero value is ready to use.
type Center struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Notice
	buffer int
}

// NewCenter returns a Center whose subscriber channels hold buffer notices.
func NewCenter(buffer int) *Center {
	return &Center{buffer: buffer}
}

// Publish delivers n to every subscriber. Subscribers whose buffer is full miss
// the notice; publishing never blocks.
func (c *Center) Publish(n Notice) {
	if c == nil {
		return
	}
	if n.At.IsZero() {
		n.At = time.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Success publishes a success notice.
func (c *Center) Success(format string, args ...any) {
	c.Publish(Notice{Kind: KindSuccess, Message: fmt.Sprintf(format, args...)})
}

// Error publishes an error notice. The message is used as-is.
func (c *Center) Error(message string) {
	c.Publish(Notice{Kind: KindError, Message: message})
}

// Info publishes an informational notice.
func (c *Center) Info(format string, args ...any) {
	c.Publish(Notice{Kind: KindInfo, Message: fmt.Sprintf(format, args...)})
}

// Subscribe registers a new subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (c *Center) Subscribe() (<-chan Notice, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.buffer
	if size <= 0 {
		size = defaultBuffer
	}
	if c.subs == nil {
		c.subs = make(map[int]chan Notice)
	}
	id := c.nextID
	c.nextID++
	ch := make(chan Notice, size)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}
