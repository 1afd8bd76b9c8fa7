// Package main provides a read-only inspection tool for the Footprints
// store and search index. It prints the language table, per-family entity
// counts in the store, and per-family document counts in the index, which
// makes store/index drift visible at a glance.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/store/sqlite"
)

func main() {
	home, _ := os.UserHomeDir()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(home, "Footprints", "footprints.db")
	}
	indexPath := os.Getenv("INDEX_PATH")
	if indexPath == "" {
		indexPath = filepath.Join(home, "Footprints", "index")
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(dbPath, quiet)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	engine, err := search.NewEngine(indexPath, quiet)
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()

	fmt.Println("=== Languages ===")
	languages, err := st.ListLanguages(ctx)
	if err != nil {
		log.Fatalf("Failed to list languages: %v", err)
	}
	for _, l := range languages {
		state := "inactive"
		if l.Priority != nil {
			state = fmt.Sprintf("priority %d", *l.Priority)
		}
		fmt.Printf("  %-4s %-20s %s\n", l.Code, l.Name, state)
	}

	fmt.Println()
	fmt.Println("=== Store entities / index documents ===")

	families := []struct {
		dt   search.DocType
		list func(context.Context) ([]string, error)
	}{
		{search.DocTypeWaypoint, st.ListWaypointIDs},
		{search.DocTypeTag, st.ListTagIDs},
		{search.DocTypeMedia, st.ListMediaIDs},
		{search.DocTypePage, st.ListPageIDs},
	}

	for _, f := range families {
		ids, err := f.list(ctx)
		if err != nil {
			log.Fatalf("Failed to list %s ids: %v", f.dt, err)
		}
		docs, err := engine.DocCount(f.dt)
		if err != nil {
			log.Fatalf("Failed to count %s documents: %v", f.dt, err)
		}
		fmt.Printf("  %-10s %4d entities  %4d documents  %d language indexes\n",
			f.dt, len(ids), docs, engine.FamilyIndexCount(f.dt))
	}

	fmt.Println()
	fmt.Printf("Indexes on disk: %d\n", len(engine.IndexNames()))
}
