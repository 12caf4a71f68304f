package scene

import (
	"context"

	"github.com/piwi3910/PrintSheet/internal/model"
)

// CloneAsync copies item on its own goroutine. The anchor's fields are
// read once, on that goroutine, and CloneAsync never returns before that
// read is done, so callers may move the anchor as soon as it returns. If
// ctx ends while copying the copy is discarded and ctx.Err() returned.
//
// It has the engine.CloneFunc signature for *model.Item.
func CloneAsync(ctx context.Context, item *model.Item) (*model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan *model.Item, 1)
	go func() {
		done <- item.Clone()
	}()

	select {
	case cp := <-done:
		return cp, nil
	case <-ctx.Done():
		<-done
		return nil, ctx.Err()
	}
}
