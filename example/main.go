package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meikuraledutech/chatflow"
	"github.com/meikuraledutech/chatflow/postgres"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Use PostgreSQL when DATABASE_URL is set, process memory otherwise.
	var kv chatflow.KV = chatflow.NewMemoryKV()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()

		pg := postgres.New(pool)
		if err := pg.CreateSchema(ctx); err != nil {
			log.Fatalf("schema: %v", err)
		}
		kv = pg
	}
	store := chatflow.NewStore(kv, chatflow.WithLogger(logger))

	// ── Build a flow the way the editor does ──────────────────────────
	g := chatflow.NewGraph(chatflow.DefaultKinds())

	greet, err := g.AddNode(chatflow.KindMessage, chatflow.Position{X: 0, Y: 0},
		chatflow.Payload{"text": "Hi! What can I help you with?"})
	if err != nil {
		log.Fatalf("add node: %v", err)
	}
	ask, err := g.AddNode(chatflow.KindInput, chatflow.Position{X: 300, Y: 0}, nil)
	if err != nil {
		log.Fatalf("add node: %v", err)
	}
	reply, err := g.AddNode(chatflow.KindMessage, chatflow.Position{X: 600, Y: 0},
		chatflow.Payload{"text": "  "})
	if err != nil {
		log.Fatalf("add node: %v", err)
	}

	if _, err := g.AddEdge(greet.ID, ask.ID, "", ""); err != nil {
		log.Fatalf("add edge: %v", err)
	}
	if _, err := g.AddEdge(ask.ID, reply.ID, "", ""); err != nil {
		log.Fatalf("add edge: %v", err)
	}

	// A second connection from the same handle is refused.
	if _, err := g.AddEdge(greet.ID, reply.ID, "", ""); errors.Is(err, chatflow.ErrDuplicateSourceHandle) {
		fmt.Println("rejected:", err)
	}

	// ── Validate before saving ────────────────────────────────────────
	v := chatflow.Validate(g.Nodes(), g.Edges())
	fmt.Printf("\nverdict: %s (%s)\n", v.Reason, v.Message)
	printJSON(v.Details)

	if err := g.UpdateNodePayload(reply.ID, chatflow.Payload{"text": "Thanks, an agent will be with you shortly."}); err != nil {
		log.Fatalf("update node: %v", err)
	}
	v = chatflow.Validate(g.Nodes(), g.Edges())
	fmt.Printf("\nverdict: %s (%s)\n", v.Reason, v.Message)
	if !v.IsValid {
		log.Fatalf("flow still invalid: %s", v.Message)
	}

	// ── Save and load ─────────────────────────────────────────────────
	id := store.Save(ctx, "support-intro", g.Nodes(), g.Edges())
	fmt.Printf("\nsaved flow %s\n", id)

	f, err := store.Load(ctx, id)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	printJSON(f)

	fmt.Println("\nstatistics:")
	printJSON(chatflow.Statistics(f.Nodes, f.Edges))

	// ── Cleanup ───────────────────────────────────────────────────────
	store.Delete(ctx, id)
	fmt.Println("\nflow deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
