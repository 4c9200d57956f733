package errors

import (
	"errors"
	"sync"
)

// Collector gathers errors from checks that should report every problem
// instead of stopping at the first one.
type Collector struct {
	errs  []error
	mutex sync.RWMutex
}

// NewCollector creates a new error collector.
func NewCollector() *Collector {
	return &Collector{errs: make([]error, 0)}
}

// Add appends err to the collector. Nil errors are ignored.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errs = append(c.errs, err)
}

// Errors returns a copy of the collected errors.
func (c *Collector) Errors() []error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]error, len(c.errs))
	copy(result, c.errs)

	return result
}

// HasErrors returns true if there are any errors.
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.errs) > 0
}

// Len returns the number of collected errors.
func (c *Collector) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.errs)
}

// Clear clears all errors.
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errs = c.errs[:0]
}

// Err joins the collected errors, or returns nil when there are none.
func (c *Collector) Err() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if len(c.errs) == 0 {
		return nil
	}

	return errors.Join(c.errs...)
}
