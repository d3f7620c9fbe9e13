// Package iopool bounds the number of map files open at once. It
// fronts a fits.Opener with a fixed slot table; every open takes the
// lowest free slot and closing the file returns it.
package iopool

import (
	"errors"
	"sync"

	"github.com/sambenfield/galmap/pkg/fits"
)

var (
	// ErrNoFreeSlots is returned when every slot holds an open file.
	ErrNoFreeSlots = errors.New("iopool: no free slots")

	// ErrNotFound is returned when a slot lookup misses.
	ErrNotFound = errors.New("iopool: slot not found")
)

// Pool is a fixed-capacity front over another opener.
type Pool struct {
	mu    sync.Mutex
	inner fits.Opener
	slots []string // path per occupied slot, "" when free
	open  []bool
}

// New returns a pool of the given capacity delegating to inner, or to
// fits.DefaultOpener when inner is nil.
func New(capacity int, inner fits.Opener) *Pool {
	if inner == nil {
		inner = fits.DefaultOpener
	}
	return &Pool{
		inner: inner,
		slots: make([]string, capacity),
		open:  make([]bool, capacity),
	}
}

// Cap returns the slot capacity.
func (p *Pool) Cap() int { return len(p.open) }

// InUse returns the number of occupied slots.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, used := range p.open {
		if used {
			n++
		}
	}
	return n
}

// Path returns the path held by slot i.
func (p *Pool) Path(i int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.open) || !p.open[i] {
		return "", ErrNotFound
	}
	return p.slots[i], nil
}

func (p *Pool) acquire(path string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, used := range p.open {
		if !used {
			p.open[i] = true
			p.slots[i] = path
			return i, nil
		}
	}
	return 0, ErrNoFreeSlots
}

func (p *Pool) release(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i >= 0 && i < len(p.open) {
		p.open[i] = false
		p.slots[i] = ""
	}
}

// OpenRead opens the file through the lowest free slot.
func (p *Pool) OpenRead(path string) (fits.File, error) {
	return p.openVia(path, p.inner.OpenRead)
}

// OpenWrite opens the file for writing through the lowest free slot.
func (p *Pool) OpenWrite(path string) (fits.File, error) {
	return p.openVia(path, p.inner.OpenWrite)
}

func (p *Pool) openVia(path string, open func(string) (fits.File, error)) (fits.File, error) {
	slot, err := p.acquire(path)
	if err != nil {
		return nil, err
	}
	f, err := open(path)
	if err != nil {
		p.release(slot)
		return nil, err
	}
	return &pooledFile{File: f, pool: p, slot: slot}, nil
}

type pooledFile struct {
	fits.File
	pool *Pool
	slot int
	once sync.Once
}

// Close closes the file and frees its slot exactly once.
func (f *pooledFile) Close() error {
	var err error
	f.once.Do(func() {
		err = f.File.Close()
		f.pool.release(f.slot)
	})
	return err
}
