package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/piwi3910/PrintSheet/internal/model"
)

// Codec serializes a scene's items to JSON snapshots and restores them.
// It satisfies history.Serializer.
type Codec struct {
	scene *Scene
	lock  sync.Locker
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// NewCodec creates a codec for s. If lock is non-nil it is held while the
// items are read or replaced, so callers that mutate item fields outside
// the scene can exclude snapshots while they do.
func NewCodec(s *Scene, lock sync.Locker) *Codec {
	if lock == nil {
		lock = nopLocker{}
	}
	return &Codec{scene: s, lock: lock}
}

// Serialize encodes the non-decoration items in scene order. Equal item
// sets always produce identical output.
func (c *Codec) Serialize() (string, error) {
	c.lock.Lock()
	items := c.scene.Items()
	if items == nil {
		items = []*model.Item{}
	}
	data, err := json.Marshal(items)
	c.lock.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to encode items: %w", err)
	}
	return string(data), nil
}

// Restore replaces the scene's items with those in snapshot and re-asserts
// the guides. A snapshot that fails to decode leaves the scene untouched.
func (c *Codec) Restore(ctx context.Context, snapshot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	items, err := Decode(snapshot)
	if err != nil {
		return err
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	c.scene.Replace(items)
	c.scene.EnsureDecorations(c.scene.Margins())
	return nil
}

// Decode parses a snapshot into fresh item values.
func Decode(snapshot string) ([]*model.Item, error) {
	var items []*model.Item
	if err := json.Unmarshal([]byte(snapshot), &items); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	for i, it := range items {
		if it == nil {
			return nil, fmt.Errorf("failed to decode snapshot: item %d is null", i)
		}
	}
	return items, nil
}
