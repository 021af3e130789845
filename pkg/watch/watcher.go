// Package watch blocks until the DSMS writes its result file, so
// verification can start as soon as the streaming run finishes.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay lets the DSMS finish flushing after the last write event
// before the file is considered ready.
const settleDelay = 500 * time.Millisecond

// WaitForFile blocks until path exists and has stopped growing, or ctx is
// cancelled. It returns immediately if the file already exists and is quiet.
func WaitForFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: the file may not exist yet, and fsnotify is
	// more reliable on directories anyway.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch: failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	if quiet, err := isQuiet(absPath); err == nil && quiet {
		return nil
	}

	var settle *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watch: watcher closed")
			}
			if event.Name != absPath {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			// Restart the settle timer on every write.
			if settle == nil {
				settle = time.NewTimer(settleDelay)
				settleC = settle.C
			} else {
				if !settle.Stop() {
					<-settle.C
				}
				settle.Reset(settleDelay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watch: watcher closed")
			}
			return err

		case <-settleC:
			if quiet, err := isQuiet(absPath); err == nil && quiet {
				return nil
			}
			settle.Reset(settleDelay)
		}
	}
}

// isQuiet reports whether the file exists and did not change size over a
// short probe interval.
func isQuiet(path string) (bool, error) {
	before, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	time.Sleep(100 * time.Millisecond)
	after, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return before.Size() == after.Size() && before.ModTime().Equal(after.ModTime()), nil
}
