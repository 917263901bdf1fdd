package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"docstream-be/internal/config"
	"docstream-be/pkg/bus"
	"docstream-be/pkg/events"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// The watch binary bridges a local drop directory into the pipeline: every
// PDF that lands in WATCH_DIR is announced as an arrival for the default
// object store provider/bucket, keyed by its file name. Useful in deployments
// where an upload job syncs the directory into the bucket.
func main() {
	cfg := config.Load()
	if cfg.App.WatchDir == "" {
		log.Fatal("Error: WATCH_DIR is not set")
	}

	var eventBus bus.Bus
	var err error
	if cfg.Pipeline.Bus == "channel" {
		eventBus = bus.NewChannelBus()
	} else {
		eventBus, err = bus.NewJetStreamBus(cfg.App.NatsURL, cfg.Pipeline.Partitions)
		if err != nil {
			log.Fatalf("Error: Failed to connect to NATS JetStream: %v", err)
		}
	}
	defer eventBus.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("Error: Failed to create watcher: %v", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.App.WatchDir); err != nil {
		log.Fatalf("Error: Failed to watch %s: %v", cfg.App.WatchDir, err)
	}
	log.Printf("✅ Watching %s for PDF arrivals", cfg.App.WatchDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down watcher...")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// Create and the final rename of an atomic copy both announce a
			// new object.
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}
			announce(ctx, eventBus, cfg, filepath.Base(event.Name))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func announce(ctx context.Context, eventBus bus.Bus, cfg *config.Config, name string) {
	ref := events.SourceRef{
		Provider: cfg.ObjectStore.DefaultProvider,
		Bucket:   cfg.ObjectStore.DefaultBucket,
		Key:      name,
	}
	evt := events.PipelineEvent{
		DocId:    ref.DocId(),
		Source:   ref,
		IngestTs: time.Now().UTC(),
		TraceId:  uuid.NewString(),
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("Error: Failed to marshal arrival for %s: %v", name, err)
		return
	}
	if err := eventBus.Publish(ctx, events.TopicArrivals, evt.DocId, payload); err != nil {
		log.Printf("Error: Failed to publish arrival for %s: %v", name, err)
		return
	}
	log.Printf("Arrival announced: %s (doc_id=%s)", ref.URI(), evt.DocId)
}
