package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Coubiac/signstamp/internal/bridge"
	"github.com/Coubiac/signstamp/internal/config"
	"github.com/Coubiac/signstamp/internal/document"
	"github.com/Coubiac/signstamp/internal/events"
	"github.com/Coubiac/signstamp/internal/logger"
	"github.com/Coubiac/signstamp/internal/repository"
)

// EventCollectionsChanged is emitted when a collection file was edited outside this process.
const EventCollectionsChanged = "collections-changed"

// CollectionsChangedEvent names the collection the UI should reload.
type CollectionsChangedEvent struct {
	Collection string `json:"collection"`
}

// App is the application container (immutable dependencies + lifecycle context).
// It is not a request context; handlers should still use gin's request context.
type App struct {
	Config     *config.Config
	Signatures repository.SignatureStore
	Snippets   repository.SnippetStore
	Documents  *document.Service
	Events     *events.Hub
	Bridge     *bridge.Bridge

	BaseCtx context.Context
	Cancel  context.CancelFunc
}

func New(cfg *config.Config, signatures repository.SignatureStore, snippets repository.SnippetStore,
	docs *document.Service, hub *events.Hub, br *bridge.Bridge) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if signatures == nil {
		return nil, errors.New("signature store is nil")
	}
	if snippets == nil {
		return nil, errors.New("snippet store is nil")
	}
	if docs == nil {
		return nil, errors.New("document service is nil")
	}
	if hub == nil {
		return nil, errors.New("event hub is nil")
	}
	if br == nil {
		return nil, errors.New("bridge is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:     cfg,
		Signatures: signatures,
		Snippets:   snippets,
		Documents:  docs,
		Events:     hub,
		Bridge:     br,
		BaseCtx:    ctx,
		Cancel:     cancel,
	}, nil
}

func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}
	a.Cancel()
}

// StartWatchers publishes collections-changed events for external edits of the collection files.
// It does nothing when storage.watch is off.
func (a *App) StartWatchers() error {
	if !a.Config.Storage.Watch {
		logger.WithComponent("app").Debug("collection watcher disabled")
		return nil
	}

	var watched []repository.Watched
	for _, store := range []any{a.Signatures, a.Snippets} {
		if w, ok := store.(repository.Watched); ok {
			watched = append(watched, w)
		}
	}
	if len(watched) == 0 {
		return nil
	}

	w, err := repository.NewWatcher(a.notifyCollectionChanged, watched...)
	if err != nil {
		return fmt.Errorf("create collection watcher: %w", err)
	}
	if err := w.Start(a.BaseCtx); err != nil {
		return fmt.Errorf("start collection watcher: %w", err)
	}
	return nil
}

func (a *App) notifyCollectionChanged(collection string) {
	if err := a.Events.Emit(EventCollectionsChanged, CollectionsChangedEvent{Collection: collection}); err != nil {
		logger.WithComponent("app").Debugf("%s changed on disk, not delivered: %v", collection, err)
	}
}

// RunStartup forwards the launch arguments once the UI listens, without blocking the caller.
// The returned channel yields the number of forwarded candidates and is then closed.
func (a *App) RunStartup(args []string) <-chan int {
	done := make(chan int, 1)
	startup := bridge.NewStartup(args)
	go func() {
		defer close(done)
		n := startup.Run(a.BaseCtx, a.Bridge, a.Events.Ready(), a.Config.Bridge.ReadyTimeout)
		if len(args) > 0 {
			logger.WithComponent("app").Infof("forwarded %d of %d launch arguments", n, len(args))
		}
		done <- n
	}()
	return done
}
