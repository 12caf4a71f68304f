package scene

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/piwi3910/PrintSheet/internal/engine"
	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ engine.Surface[*model.Item] = (*Scene)(nil)

func TestScene_AddRemoveOrder(t *testing.T) {
	s := New(210, 297)
	a := model.NewItem(model.KindText, "a", 10, 10)
	b := model.NewItem(model.KindText, "b", 10, 10)
	c := model.NewItem(model.KindText, "c", 10, 10)

	s.Add(a)
	s.Add(b)
	s.Add(c)
	s.Add(b)
	assert.Equal(t, []*model.Item{a, b, c}, s.Items())

	s.Remove(b)
	assert.Equal(t, []*model.Item{a, c}, s.Items())
	assert.False(t, s.Has(b))
	assert.True(t, s.Has(a))

	s.Remove(b)
	assert.Equal(t, 2, s.Len())
}

func TestScene_ItemsIsACopy(t *testing.T) {
	s := New(100, 100)
	s.Add(model.NewItem(model.KindImage, "x", 10, 10))

	items := s.Items()
	items[0] = nil
	assert.NotNil(t, s.Items()[0])
}

func TestScene_OnChangeFiresOutsideLock(t *testing.T) {
	s := New(100, 100)
	var calls int32
	s.OnChange(func() {
		// Reading back from inside a listener must not deadlock.
		_ = s.Items()
		atomic.AddInt32(&calls, 1)
	})

	it := model.NewItem(model.KindSymbol, "star", 10, 10)
	s.Add(it)
	s.Add(it)
	require.NoError(t, s.Update(it.ID, func(i *model.Item) { i.Rotated = true }))
	s.Remove(it)
	s.Clear()

	assert.EqualValues(t, 3, atomic.LoadInt32(&calls), "no-op mutations do not notify")
}

func TestScene_UpdateAndLookup(t *testing.T) {
	s := New(100, 100)
	it := model.NewItem(model.KindQRCode, "qr", 20, 20)
	s.Add(it)

	got, ok := s.ItemByID(it.ID)
	require.True(t, ok)
	assert.Same(t, it, got)

	require.NoError(t, s.Update(it.ID, func(i *model.Item) { i.Scale = 2 }))
	assert.Equal(t, 2.0, it.Scale)

	err := s.Update("missing", func(*model.Item) {})
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, ok = s.ItemByID("missing")
	assert.False(t, ok)
}

func TestScene_Decorations(t *testing.T) {
	s := New(210, 297)
	s.EnsureDecorations(3, 2)

	decs := s.Decorations()
	require.Len(t, decs, 2)
	assert.Equal(t, BleedGuide, decs[0].Kind)
	assert.Equal(t, model.Rect{Left: 3, Top: 3, Right: 207, Bottom: 294}, decs[0].Rect)
	assert.Equal(t, SafeGuide, decs[1].Kind)
	assert.Equal(t, model.Rect{Left: 5, Top: 5, Right: 205, Bottom: 292}, decs[1].Rect)

	s.SetSize(297, 210)
	decs = s.Decorations()
	assert.Equal(t, model.Rect{Left: 5, Top: 5, Right: 292, Bottom: 205}, decs[1].Rect)
	assert.Empty(t, s.Items(), "decorations are not items")
}

func TestCodec_RoundTripIsByteStable(t *testing.T) {
	s := New(210, 297)
	s.EnsureDecorations(3, 2)
	a := model.NewItem(model.KindImage, "photo", 40, 30)
	a.SetPosition(30, 25)
	b := model.NewItem(model.KindSymbol, "tri", 10, 10)
	b.Outline = model.Outline{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 10}}
	b.SetPosition(80, 25)
	s.Add(a)
	s.Add(b)

	c := NewCodec(s, nil)
	snap, err := c.Serialize()
	require.NoError(t, err)

	s.Clear()
	empty, err := c.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)

	require.NoError(t, c.Restore(context.Background(), snap))
	again, err := c.Serialize()
	require.NoError(t, err)
	assert.Equal(t, snap, again)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.NotSame(t, a, items[0], "restore builds fresh items")
	assert.Len(t, s.Decorations(), 2)
}

func TestCodec_BadSnapshotLeavesSceneAlone(t *testing.T) {
	s := New(100, 100)
	it := model.NewItem(model.KindText, "keep", 10, 10)
	s.Add(it)
	c := NewCodec(s, nil)

	require.Error(t, c.Restore(context.Background(), "{not json"))
	require.Error(t, c.Restore(context.Background(), "[null]"))
	assert.Equal(t, []*model.Item{it}, s.Items())
}

func TestCodec_RestoreHonoursContext(t *testing.T) {
	s := New(100, 100)
	c := NewCodec(s, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Restore(ctx, "[]"), context.Canceled)
}

func TestCodec_HoldsLock(t *testing.T) {
	s := New(100, 100)
	var mu sync.Mutex
	c := NewCodec(s, &mu)

	mu.Lock()
	done := make(chan struct{})
	go func() {
		_, _ = c.Serialize()
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("serialize ran while the lock was held")
	default:
	}
	mu.Unlock()
	<-done
}

func TestCloneAsync(t *testing.T) {
	it := model.NewItem(model.KindImage, "photo", 40, 30)
	it.Outline = model.Outline{{X: 1, Y: 1}}

	cp, err := CloneAsync(context.Background(), it)
	require.NoError(t, err)
	assert.NotEqual(t, it.ID, cp.ID)
	assert.Equal(t, it.Label, cp.Label)

	cp.Outline[0].X = 99
	assert.Equal(t, 1.0, it.Outline[0].X)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CloneAsync(ctx, it)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloneAsync_AnchorFreeOnceReturned(t *testing.T) {
	it := model.NewItem(model.KindText, "caption", 40, 10)

	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go cancel()
		cp, err := CloneAsync(ctx, it)
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
			assert.Nil(t, cp)
		}
		// The copy goroutine is finished, so this write cannot race it.
		it.SetPosition(float64(i), float64(i))
		cancel()
	}
}

func TestScene_WorksWithLayoutEngine(t *testing.T) {
	s := New(110, 110)
	eng := engine.NewLayoutEngine[*model.Item](s, engine.Config{Bleed: 3, Padding: 2}, nil)

	it := model.NewItem(model.KindText, "hello", 20, 20)
	require.True(t, eng.PlaceNew(it))
	assert.Equal(t, 15.0, it.CenterX)
	assert.Equal(t, 15.0, it.CenterY)

	res, err := eng.FillSheet(context.Background(), CloneAsync)
	require.NoError(t, err)
	assert.Equal(t, 24, res.Clones)
	assert.Equal(t, 25, s.Len())
}
