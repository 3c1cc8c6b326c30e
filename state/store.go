package state

import (
	"sort"

	"github.com/cosmos/iavl"
)

// KVStore is the persistence surface every State reads and writes through.
// Get returns a nil value for a missing key.
type KVStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

type treeStore struct {
	tree *iavl.MutableTree
}

func (t treeStore) Get(key []byte) ([]byte, error) {
	return t.tree.Get(key)
}

func (t treeStore) Set(key, value []byte) error {
	_, err := t.tree.Set(key, value)
	return err
}

// CacheStore buffers writes on top of a parent store until Write is called.
type CacheStore struct {
	parent KVStore
	dirty  map[string][]byte
}

func NewCacheStore(parent KVStore) *CacheStore {
	return &CacheStore{
		parent: parent,
		dirty:  make(map[string][]byte),
	}
}

func (c *CacheStore) Get(key []byte) ([]byte, error) {
	if val, ok := c.dirty[string(key)]; ok {
		return val, nil
	}
	return c.parent.Get(key)
}

func (c *CacheStore) Set(key, value []byte) error {
	val := make([]byte, len(value))
	copy(val, value)
	c.dirty[string(key)] = val
	return nil
}

// Write flushes buffered writes to the parent in key order.
func (c *CacheStore) Write() (err error) {
	n := len(c.dirty)
	if n == 0 {
		return nil
	}
	keys := make([]string, 0, n)
	for k := range c.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		err = c.parent.Set([]byte(k), c.dirty[k])
		if err != nil {
			return
		}
	}
	c.dirty = make(map[string][]byte)
	return
}

func (c *CacheStore) Discard() {
	c.dirty = make(map[string][]byte)
}

func (c *CacheStore) Len() int {
	return len(c.dirty)
}
