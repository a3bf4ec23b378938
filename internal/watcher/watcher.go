// Package watcher turns file system events in the content directory into
// post change notifications. It never caches catalog state; subscribers
// re-query the content index when notified.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
)

// DefaultDebounce is how long events for a slug are coalesced before the
// callback fires.
const DefaultDebounce = 150 * time.Millisecond

// EventCallback is called once per coalesced change.
type EventCallback func(ev sse.PostEvent)

// Watch observes root (non-recursive) until ctx is cancelled. Only files with
// one of exts are reported. It returns an error if root cannot be watched,
// for example because it does not exist.
func Watch(ctx context.Context, root string, exts []string, logger *slog.Logger, cb EventCallback) error {
	if len(exts) == 0 {
		exts = storage.DefaultExtensions
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: new: %w", err)
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return fmt.Errorf("watcher: add %s: %w", root, err)
	}

	logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]string)
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(DefaultDebounce)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(DefaultDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			flush(pending, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			slug, match := storage.SlugFor(filepath.Base(ev.Name), exts)
			if !match {
				continue
			}
			kind := kindOf(ev.Op)
			if kind == "" {
				continue
			}
			pending[slug] = merge(pending[slug], kind)
			scheduleFlush()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func kindOf(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return sse.KindCreated
	case op&fsnotify.Write != 0:
		return sse.KindUpdated
	case op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return sse.KindDeleted
	}
	return ""
}

// merge folds a new event into the pending one for the same slug. A write
// right after a create is still a create; a delete followed by a create is an
// editor's atomic save and reads as an update.
func merge(prev, next string) string {
	switch {
	case prev == sse.KindCreated && next == sse.KindUpdated:
		return sse.KindCreated
	case prev == sse.KindDeleted && next == sse.KindCreated:
		return sse.KindUpdated
	}
	return next
}

func flush(pending map[string]string, logger *slog.Logger, cb EventCallback) {
	slugs := make([]string, 0, len(pending))
	for slug := range pending {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		kind := pending[slug]
		delete(pending, slug)
		logger.Debug("watcher: change", slog.String("slug", slug), slog.String("op", kind))
		if cb != nil {
			cb(sse.PostEvent{Kind: kind, Slug: slug})
		}
	}
}
