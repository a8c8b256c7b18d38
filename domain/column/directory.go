package column

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownColumn = errors.New("unknown column")

// Dialer resolves a column-service address to a Service.
type Dialer interface {
	Dial(address string) (Service, error)
}

type DialerFunc func(address string) (Service, error)

func (f DialerFunc) Dial(address string) (Service, error) { return f(address) }

// Local serves in-process columns keyed by address.
type Local map[string]Service

func (l Local) Dial(address string) (Service, error) {
	s, ok := l[address]
	if !ok {
		return nil, fmt.Errorf("%w: no column at %s", ErrUnknownColumn, address)
	}
	return s, nil
}

// Directory maps board column ids to column-service addresses and caches
// the dialed services.
type Directory struct {
	addrs  map[int]string
	dialer Dialer

	mu       sync.Mutex
	services map[string]Service
}

func NewDirectory(addrs map[int]string, dialer Dialer) *Directory {
	cp := make(map[int]string, len(addrs))
	for id, a := range addrs {
		cp[id] = a
	}
	return &Directory{addrs: cp, dialer: dialer, services: make(map[string]Service)}
}

// IDs returns the column ids in ascending order.
func (d *Directory) IDs() []int {
	ids := make([]int, 0, len(d.addrs))
	for id := range d.addrs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (d *Directory) Width() int { return len(d.addrs) }

// Addresses returns a copy of the id to address mapping.
func (d *Directory) Addresses() map[int]string {
	cp := make(map[int]string, len(d.addrs))
	for id, a := range d.addrs {
		cp[id] = a
	}
	return cp
}

func (d *Directory) Column(id int) (Service, error) {
	addr, ok := d.addrs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColumn, id)
	}
	return d.Dial(addr)
}

// Dial resolves an address directly, sharing the directory's cache.
func (d *Directory) Dial(addr string) (Service, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.services[addr]; ok {
		return s, nil
	}
	s, err := d.dialer.Dial(addr)
	if err != nil {
		return nil, err
	}
	d.services[addr] = s
	return s, nil
}
