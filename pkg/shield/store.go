package shield

import "sync"

// collection is the shared state container behind every entity store:
// the item list plus the loading/error flags the dashboard binds to.
//
// Fetches are sequence-checked: each load takes a ticket and only the newest
// outstanding ticket may replace the collection, so a slow stale response
// cannot clobber a newer one. Mutations patch items in place by id and only
// after the backend confirmed the change; on failure the collection is left
// untouched.
type collection[T any] struct {
	mu        sync.Mutex
	items     []T
	isLoading bool
	err       string
	keyOf     func(T) string
	loadSeq   uint64
	doneSeq   uint64
}

func newCollection[T any](keyOf func(T) string) *collection[T] {
	return &collection[T]{keyOf: keyOf}
}

// StoreState is a point-in-time snapshot of an entity store.
type StoreState[T any] struct {
	Items     []T
	IsLoading bool
	Err       string
}

func (c *collection[T]) snapshot() StoreState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return StoreState[T]{Items: items, IsLoading: c.isLoading, Err: c.err}
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if c.keyOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// beginLoad issues a load ticket and raises the loading flag.
func (c *collection[T]) beginLoad() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadSeq++
	c.isLoading = true
	c.err = ""
	return c.loadSeq
}

// completeLoad replaces the collection when the ticket is still the newest
// completed one. Stale responses are discarded.
func (c *collection[T]) completeLoad(ticket uint64, items []T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket <= c.doneSeq {
		return false
	}
	c.doneSeq = ticket
	if ticket == c.loadSeq {
		c.isLoading = false
	}
	if err != nil {
		c.err = err.Error()
		return false
	}
	c.items = items
	return true
}

func (c *collection[T]) beginMutation() {
	c.mu.Lock()
	c.isLoading = true
	c.err = ""
	c.mu.Unlock()
}

// applyUpsert patches the matching item in place, or appends when new.
func (c *collection[T]) applyUpsert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isLoading = false
	id := c.keyOf(item)
	for i := range c.items {
		if c.keyOf(c.items[i]) == id {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
}

// applyRemove drops the item with the given id, preserving order.
func (c *collection[T]) applyRemove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isLoading = false
	for i := range c.items {
		if c.keyOf(c.items[i]) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *collection[T]) fail(err error) {
	c.mu.Lock()
	c.isLoading = false
	c.err = err.Error()
	c.mu.Unlock()
}
