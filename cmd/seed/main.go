// Package main provides a tool to seed the database with demo content.
//
// It creates two active languages plus a handful of verified waypoints,
// tags, media and pages, so search and map endpoints have data to serve.
//
// Usage:
//
//	go run ./cmd/seed --db ~/Footprints/footprints.db --index ~/Footprints/index
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/service"
	"github.com/footprintsforfreedom/footprints-server/internal/store/sqlite"
)

var (
	dbPath    = flag.String("db", "", "Path to the SQLite database file")
	indexPath = flag.String("index", "", "Path to the search index directory")
)

type waypointSeed struct {
	titleEN, textEN string
	titleDE, textDE string
	lat, lon        float64
	tags            []string
}

var waypointSeeds = []waypointSeed{
	{
		titleEN: "Old Harbor Memorial", textEN: "Memorial for the dock workers of the old harbor.",
		titleDE: "Denkmal am alten Hafen", textDE: "Denkmal für die Hafenarbeiter des alten Hafens.",
		lat: 53.5436, lon: 9.9805,
		tags: []string{"Memorial"},
	},
	{
		titleEN: "Salt Works Ruins", textEN: "Ruins of the nineteenth century salt works.",
		titleDE: "Ruinen der Saline", textDE: "Ruinen der Saline aus dem neunzehnten Jahrhundert.",
		lat: 53.2464, lon: 10.4115,
		tags: []string{"Industry"},
	},
	{
		titleEN: "Border Watchtower", textEN: "Preserved watchtower on the former inner border.",
		titleDE: "Grenzwachturm", textDE: "Erhaltener Wachturm an der ehemaligen innerdeutschen Grenze.",
		lat: 52.9651, lon: 10.9522,
		tags: []string{"Memorial", "Border"},
	},
}

func main() {
	flag.Parse()

	home, _ := os.UserHomeDir()
	if *dbPath == "" {
		*dbPath = filepath.Join(home, "Footprints", "footprints.db")
	}
	if *indexPath == "" {
		*indexPath = filepath.Join(home, "Footprints", "index")
	}

	fmt.Printf("Seeding database at: %s\n", *dbPath)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(*dbPath, quiet)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	engine, err := search.NewEngine(*indexPath, quiet)
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer engine.Close()

	syncer := service.NewSyncer(st, engine, quiet)
	content := service.NewContentService(st, quiet)
	moderation := service.NewModerationService(st, syncer, quiet)
	languages := service.NewLanguageService(st, syncer, quiet)

	ctx := context.Background()

	enID := ensureLanguage(ctx, st, languages, "en", "English", 0)
	deID := ensureLanguage(ctx, st, languages, "de", "Deutsch", 1)

	if err := syncer.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to prepare indexes: %v", err)
	}

	// Tags first so waypoints can reference them.
	tagIDs := map[string]string{}
	for _, name := range []string{"Memorial", "Industry", "Border"} {
		tag, detail, err := content.CreateTag(ctx, service.DetailInput{LanguageID: enID, Title: name})
		if err != nil {
			log.Fatalf("Failed to create tag %s: %v", name, err)
		}
		mustVerify(moderation.VerifyTagDetail(ctx, detail.ID), "tag detail")
		tagIDs[name] = tag.ID
		fmt.Printf("Created tag: %s\n", name)
	}

	for _, seed := range waypointSeeds {
		wp, enDetail, err := content.CreateWaypoint(ctx, service.DetailInput{
			LanguageID: enID,
			Title:      seed.titleEN,
			Text:       seed.textEN,
		})
		if err != nil {
			log.Fatalf("Failed to create waypoint %s: %v", seed.titleEN, err)
		}
		mustVerify(moderation.VerifyWaypointDetail(ctx, enDetail.ID), "waypoint detail")

		deDetail, err := content.CreateWaypointDetail(ctx, wp.ID, service.DetailInput{
			LanguageID: deID,
			Title:      seed.titleDE,
			Text:       seed.textDE,
		})
		if err != nil {
			log.Fatalf("Failed to create German detail for %s: %v", seed.titleEN, err)
		}
		mustVerify(moderation.VerifyWaypointDetail(ctx, deDetail.ID), "waypoint detail")

		loc, err := content.CreateLocation(ctx, wp.ID, service.LocationInput{
			Latitude:  seed.lat,
			Longitude: seed.lon,
		})
		if err != nil {
			log.Fatalf("Failed to create location for %s: %v", seed.titleEN, err)
		}
		mustVerify(moderation.VerifyLocation(ctx, loc.ID, wp.ID), "location")

		for _, tag := range seed.tags {
			if err := content.SuggestWaypointTag(ctx, wp.ID, tagIDs[tag]); err != nil {
				log.Fatalf("Failed to suggest tag %s: %v", tag, err)
			}
			mustVerify(moderation.VerifyWaypointTag(ctx, wp.ID, tagIDs[tag]), "waypoint tag")
		}

		fmt.Printf("Created waypoint: %s (%.4f, %.4f)\n", seed.titleEN, seed.lat, seed.lon)
	}

	_, aboutDetail, err := content.CreatePage(ctx, service.DetailInput{
		LanguageID: enID,
		Title:      "About",
		Text:       "Footprints documents places of remembrance.",
	})
	if err != nil {
		log.Fatalf("Failed to create page: %v", err)
	}
	mustVerify(moderation.VerifyPageDetail(ctx, aboutDetail.ID), "page detail")
	fmt.Println("Created page: About")

	fmt.Println("Done.")
}

// ensureLanguage creates and activates a language unless a language with
// the code already exists.
func ensureLanguage(ctx context.Context, st *sqlite.Store, languages *service.LanguageService, code, name string, priority int) string {
	if existing, err := st.GetLanguageByCode(ctx, code); err == nil {
		fmt.Printf("Language %s already present\n", code)
		return existing.ID
	}

	l, err := languages.Create(ctx, service.LanguageInput{Code: code, Name: name})
	if err != nil {
		log.Fatalf("Failed to create language %s: %v", code, err)
	}
	if err := languages.Activate(ctx, l.ID, priority); err != nil {
		log.Fatalf("Failed to activate language %s: %v", code, err)
	}
	fmt.Printf("Created language: %s (%s)\n", name, code)
	return l.ID
}

func mustVerify(err error, what string) {
	if err != nil {
		log.Fatalf("Failed to verify %s: %v", what, err)
	}
}
