package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/mdtree/internal/document"
	"github.com/temirov/mdtree/internal/utils"
)

const (
	minimumDebounce = 10 * time.Millisecond

	errorCreateWatcherFormat = "create file watcher: %w"
	errorWatchPathFormat     = "watch %s: %w"
	errorWatcherFormat       = "file watcher: %w"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	SyncOptions
	// Debounce is the quiet period after the last change before a run starts.
	Debounce time.Duration
}

// WatchResultHandler receives the outcome of every run started by Watch.
type WatchResultHandler func(result SyncResult, err error)

// Watch synchronizes once, then again whenever something changes below the source or
// companion roots, until ctx is cancelled. Runs are sequential; changes arriving during
// a run schedule one more run. A failed run is reported to onResult and does not stop
// watching. Directories created while watching are watched as well.
func Watch(ctx context.Context, options WatchOptions, onResult WatchResultHandler) error {
	logger := utils.LoggerOrNop(options.Logger)
	debounce := options.Debounce
	if debounce < minimumDebounce {
		debounce = minimumDebounce
	}
	if onResult == nil {
		onResult = func(SyncResult, error) {}
	}

	watcher, watcherError := fsnotify.NewWatcher()
	if watcherError != nil {
		return fmt.Errorf(errorCreateWatcherFormat, watcherError)
	}
	defer watcher.Close()

	fileSystem := options.fileSystem()
	for _, watchedRoot := range options.watchedRoots() {
		if addError := addDirectoryTree(fileSystem, watcher, watchedRoot); addError != nil {
			return addError
		}
		logger.Debug("watching", zap.String("root", watchedRoot))
	}

	ignoredPaths := options.ignoredPaths()
	triggers := make(chan struct{}, 1)
	group, groupContext := errgroup.WithContext(ctx)

	group.Go(func() error {
		for {
			select {
			case <-groupContext.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if isIgnoredEvent(event, ignoredPaths) {
					continue
				}
				logger.Debug("change", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				if event.Has(fsnotify.Create) {
					if info, statError := fileSystem.Stat(event.Name); statError == nil && info.IsDir() {
						if addError := addDirectoryTree(fileSystem, watcher, event.Name); addError != nil {
							logger.Warn("cannot watch new directory", zap.String("path", event.Name), zap.Error(addError))
						}
					}
				}
				select {
				case triggers <- struct{}{}:
				default:
				}
			case watchError, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				return fmt.Errorf(errorWatcherFormat, watchError)
			}
		}
	})

	group.Go(func() error {
		onResult(Synchronize(groupContext, options.SyncOptions))
		quietPeriod := time.NewTimer(debounce)
		quietPeriod.Stop()
		defer quietPeriod.Stop()
		for {
			select {
			case <-groupContext.Done():
				return nil
			case <-triggers:
				quietPeriod.Reset(debounce)
			case <-quietPeriod.C:
				onResult(Synchronize(groupContext, options.SyncOptions))
			}
		}
	})

	return group.Wait()
}

func (options WatchOptions) watchedRoots() []string {
	roots := []string{options.Configuration.Source.Root}
	if options.Configuration.Companions.Enabled && options.Configuration.Companions.Root != "" {
		roots = append(roots, options.Configuration.Companions.Root)
	}
	return utils.DeduplicatePatterns(roots)
}

// ignoredPaths lists the absolute paths written by a run itself.
func (options WatchOptions) ignoredPaths() []string {
	var ignored []string
	for _, path := range []string{options.Configuration.Document.Path, options.Configuration.Document.BackupDirectory} {
		if path == "" {
			continue
		}
		if absolutePath, absError := filepath.Abs(path); absError == nil {
			ignored = append(ignored, absolutePath)
		}
	}
	return ignored
}

func isIgnoredEvent(event fsnotify.Event, ignoredPaths []string) bool {
	if strings.HasPrefix(filepath.Base(event.Name), document.TemporaryFilePrefix) {
		return true
	}
	absolutePath, absError := filepath.Abs(event.Name)
	if absError != nil {
		return false
	}
	for _, ignoredPath := range ignoredPaths {
		if absolutePath == ignoredPath || strings.HasPrefix(absolutePath, ignoredPath+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addDirectoryTree watches root and every directory below it. The directories are listed
// through fileSystem, but fsnotify only observes the operating system, so fileSystem must
// be backed by it for events to arrive.
func addDirectoryTree(fileSystem afero.Fs, watcher *fsnotify.Watcher, root string) error {
	return afero.Walk(fileSystem, root, func(path string, info os.FileInfo, walkError error) error {
		if walkError != nil {
			return fmt.Errorf(errorWatchPathFormat, path, walkError)
		}
		if !info.IsDir() {
			return nil
		}
		if info.Name() == utils.GitDirectoryName {
			return filepath.SkipDir
		}
		if addError := watcher.Add(path); addError != nil {
			return fmt.Errorf(errorWatchPathFormat, path, addError)
		}
		return nil
	})
}
