// Package scene holds the in-memory design surface: the items on the
// sheet, the always-present guide decorations, and change notification.
package scene

import (
	"errors"
	"slices"
	"sync"

	"github.com/piwi3910/PrintSheet/internal/model"
)

// ErrItemNotFound is returned when an item ID is not on the scene.
var ErrItemNotFound = errors.New("item not found")

// DecorationKind identifies a guide drawn on the sheet.
type DecorationKind int

const (
	BleedGuide DecorationKind = iota // Trim line, bleed mm inside the sheet edge
	SafeGuide                        // Edge of the placement area
)

func (k DecorationKind) String() string {
	if k == SafeGuide {
		return "Safe Area"
	}
	return "Bleed"
}

// Decoration is a non-placeable guide. Decorations are never returned by
// Items and never serialized.
type Decoration struct {
	Kind DecorationKind
	Rect model.Rect
}

// Scene is a thread-safe ordered set of items on a sheet of fixed size.
// Listeners registered with OnChange run after every mutation, outside the
// scene lock.
type Scene struct {
	mu          sync.RWMutex
	width       float64
	height      float64
	bleed       float64
	padding     float64
	items       []*model.Item
	decorations []Decoration

	lmu       sync.Mutex
	listeners []func()
}

// New creates an empty scene of the given size in mm.
func New(width, height float64) *Scene {
	return &Scene{width: width, height: height}
}

// OnChange registers fn to run after every mutation.
func (s *Scene) OnChange(fn func()) {
	s.lmu.Lock()
	s.listeners = append(s.listeners, fn)
	s.lmu.Unlock()
}

func (s *Scene) notify() {
	s.lmu.Lock()
	fns := slices.Clone(s.listeners)
	s.lmu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Add appends item. Adding an item that is already present does nothing.
func (s *Scene) Add(item *model.Item) {
	s.mu.Lock()
	if slices.Contains(s.items, item) {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items, item)
	s.mu.Unlock()
	s.notify()
}

// Remove deletes item if present.
func (s *Scene) Remove(item *model.Item) {
	s.mu.Lock()
	i := slices.Index(s.items, item)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.mu.Unlock()
	s.notify()
}

func (s *Scene) Has(item *model.Item) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.items, item)
}

// Items returns the placeable items in insertion order.
func (s *Scene) Items() []*model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// ItemByID finds an item by its ID.
func (s *Scene) ItemByID(id string) (*model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// Update runs fn on the item with the given ID under the scene lock.
func (s *Scene) Update(id string, fn func(*model.Item)) error {
	s.mu.Lock()
	var found *model.Item
	for _, it := range s.items {
		if it.ID == id {
			found = it
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	fn(found)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Clear removes every item. Decorations are kept.
func (s *Scene) Clear() {
	s.mu.Lock()
	n := len(s.items)
	s.items = nil
	s.mu.Unlock()
	if n > 0 {
		s.notify()
	}
}

// Replace swaps the whole item set for items.
func (s *Scene) Replace(items []*model.Item) {
	s.mu.Lock()
	s.items = slices.Clone(items)
	s.mu.Unlock()
	s.notify()
}

// Size returns the sheet dimensions in mm.
func (s *Scene) Size() (float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// SetSize resizes the sheet and moves the guides with it. Items are not
// moved.
func (s *Scene) SetSize(width, height float64) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.rebuildDecorationsLocked()
	s.mu.Unlock()
	s.notify()
}

// Margins returns the bleed and padding the guides were last built with.
func (s *Scene) Margins() (bleed, padding float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bleed, s.padding
}

// EnsureDecorations (re)creates the bleed and safe-area guides.
func (s *Scene) EnsureDecorations(bleed, padding float64) {
	s.mu.Lock()
	s.bleed, s.padding = bleed, padding
	s.rebuildDecorationsLocked()
	s.mu.Unlock()
}

func (s *Scene) rebuildDecorationsLocked() {
	w, h := s.width, s.height
	s.decorations = []Decoration{
		{Kind: BleedGuide, Rect: model.SafeArea(w, h, s.bleed, 0)},
		{Kind: SafeGuide, Rect: model.SafeArea(w, h, s.bleed, s.padding)},
	}
}

// Decorations returns the current guides.
func (s *Scene) Decorations() []Decoration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.decorations)
}
