package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"docstream-be/internal/config"
	"docstream-be/internal/repository/implementation"
	"docstream-be/pkg/bus"
	"docstream-be/pkg/database"
	"docstream-be/pkg/events"
	"docstream-be/pkg/pipeline"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// docctl is the operator's console for the pipeline: inspect a document's
// progress, or follow the error topic live.
func main() {
	app := &cli.App{
		Name:  "docctl",
		Usage: "Inspect and follow the document pipeline",
		Commands: []*cli.Command{
			{
				Name:      "status",
				Usage:     "Show a document's status and transition history",
				ArgsUsage: "<doc_id>",
				Action:    showStatus,
			},
			{
				Name:   "errors",
				Usage:  "Tail the error topic",
				Action: tailErrors,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func showStatus(c *cli.Context) error {
	docId := c.Args().First()
	if docId == "" {
		return cli.Exit("usage: docctl status <doc_id>", 1)
	}

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	docRepo := implementation.NewDocumentRepository(db)
	doc, err := docRepo.FindByDocId(c.Context, docId)
	if err != nil {
		return err
	}
	if doc == nil {
		return cli.Exit("document not found: "+docId, 1)
	}

	fmt.Printf("doc_id:      %s\n", doc.DocId)
	fmt.Printf("source:      %s\n", doc.SourceRef().URI())
	fmt.Printf("status:      %s\n", colorStatus(doc.Status))
	fmt.Printf("pages:       %d\n", doc.PageCount)
	fmt.Printf("chunks:      %d\n", doc.ChunkCount)
	fmt.Printf("ingested at: %s\n", doc.IngestTs.Format("2006-01-02 15:04:05 MST"))

	fmt.Println("\nhistory:")
	for _, tr := range doc.StatusHistory {
		fmt.Printf("  %s  %s\n", tr.At.Format("2006-01-02 15:04:05.000"), colorStatus(tr.Status))
	}
	return nil
}

func colorStatus(s pipeline.Status) string {
	switch s {
	case pipeline.StatusIndexed:
		return color.GreenString(string(s))
	case pipeline.StatusError:
		return color.RedString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

func tailErrors(c *cli.Context) error {
	cfg := config.Load()

	eventBus, err := bus.NewJetStreamBus(cfg.App.NatsURL, cfg.Pipeline.Partitions)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS JetStream: %w", err)
	}
	defer eventBus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := func(ctx context.Context, payload []byte) error {
		var evt events.ErrorEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			color.Red("undecodable error event: %v", err)
			return nil
		}
		color.Red("[%s] doc=%s stage=%s kind=%s attempt=%d",
			evt.IngestTs.Format("15:04:05"), evt.DocId, evt.FailedStage, evt.ErrorKind, evt.Attempt)
		fmt.Printf("  source: %s\n", evt.Source.URI())
		fmt.Printf("  error:  %s\n", evt.ErrorMessage)
		return nil
	}

	partitions := make([]int, cfg.Pipeline.Partitions)
	for i := range partitions {
		partitions[i] = i
	}
	if err := eventBus.Subscribe(ctx, events.TopicErrors, "docctl-errors", partitions, handler); err != nil {
		return err
	}

	color.Yellow("tailing %s (ctrl-c to stop)", events.TopicErrors)
	<-ctx.Done()
	return nil
}
