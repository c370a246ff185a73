package menu

import (
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a menu directory whenever a fragment changes.
type Watcher struct {
	name     string
	dir      string
	external []string
	debounce time.Duration
	onLoad   func(*Menu)
	logger   zerolog.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher loads dir once, calls onLoad with the result and starts watching.
// Reload errors are logged and the previous menu stays in effect.
func NewWatcher(name, dir string, external []string, logger zerolog.Logger, onLoad func(*Menu)) (*Watcher, error) {
	m, err := LoadDir(name, dir, external...)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{
		name:     name,
		dir:      dir,
		external: external,
		debounce: 100 * time.Millisecond,
		onLoad:   onLoad,
		logger:   logger.With().Str("component", "menu-watcher").Str("dir", dir).Logger(),
		fsw:      fsw,
		done:     make(chan struct{}),
	}
	onLoad(m)
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(ev.Name, CfiSuffix) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// editors write in bursts; reload once the burst settles
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C
		case <-timerCh:
			timerCh = nil
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) reload() {
	m, err := LoadDir(w.name, w.dir, w.external...)
	if err != nil {
		w.logger.Error().Err(err).Msg("menu reload failed, keeping previous menu")
		return
	}
	w.logger.Info().Int("modules", m.Len()).Msg("menu reloaded")
	w.onLoad(m)
}

// Close stops watching and waits for the reload loop to exit.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
