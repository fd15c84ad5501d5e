package gpu

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
)

// ErrReleased is returned when a released context or resource is used.
var ErrReleased = errors.New("gpu: context released")

// Factory creates a render context for a device-pixel surface.
type Factory func(width, height int) (*Context, error)

type resource interface {
	release()
}

// Context is a software render context. It owns the visible framebuffer and
// every offscreen target, texture and program created from it.
type Context struct {
	mu        sync.Mutex
	width     int
	height    int
	frame     *image.NRGBA
	resources map[resource]struct{}
	released  bool
	workers   int
}

// New creates a context whose framebuffer is width x height device pixels.
func New(width, height int) (*Context, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: invalid surface %dx%d", width, height)
	}
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	return &Context{
		width:     width,
		height:    height,
		frame:     image.NewNRGBA(image.Rect(0, 0, width, height)),
		resources: make(map[resource]struct{}),
		workers:   workers,
	}, nil
}

// Size returns the framebuffer size.
func (c *Context) Size() (int, int) {
	return c.width, c.height
}

// Framebuffer returns the visible colour buffer.
func (c *Context) Framebuffer() *image.NRGBA {
	return c.frame
}

// Resize reallocates the framebuffer when the size changes.
func (c *Context) Resize(width, height int) error {
	if c.released {
		return ErrReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gpu: invalid surface %dx%d", width, height)
	}
	if width == c.width && height == c.height {
		return nil
	}
	c.width = width
	c.height = height
	c.frame = image.NewNRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Live returns the number of resources that have not been released.
func (c *Context) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.resources)
}

// Released reports whether Release has been called.
func (c *Context) Released() bool {
	return c.released
}

// Release frees the framebuffer and every resource created from the context.
func (c *Context) Release() {
	if c.released {
		return
	}
	c.mu.Lock()
	owned := make([]resource, 0, len(c.resources))
	for r := range c.resources {
		owned = append(owned, r)
	}
	c.mu.Unlock()

	for _, r := range owned {
		r.release()
	}

	c.mu.Lock()
	c.resources = make(map[resource]struct{})
	c.mu.Unlock()
	c.frame = nil
	c.released = true
}

func (c *Context) track(r resource) error {
	if c.released {
		return ErrReleased
	}
	c.mu.Lock()
	c.resources[r] = struct{}{}
	c.mu.Unlock()
	return nil
}

func (c *Context) untrack(r resource) {
	c.mu.Lock()
	delete(c.resources, r)
	c.mu.Unlock()
}

// Rows calls fn for every row in [0, height) on a pool of workers and returns
// once all rows are done.
func (c *Context) Rows(height int, fn func(y int)) {
	if height <= 0 {
		return
	}
	numWorkers := c.workers
	if numWorkers > height {
		numWorkers = height
	}
	if numWorkers <= 1 {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}

	var wg sync.WaitGroup
	rowJobs := make(chan int, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rowJobs {
				fn(y)
			}
		}()
	}

	for y := 0; y < height; y++ {
		rowJobs <- y
	}
	close(rowJobs)
	wg.Wait()
}
