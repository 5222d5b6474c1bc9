// Command seed loads a small sample catalog into a BookLend database.
// Useful for local development against a fresh data directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/booklendapp/booklend-server/internal/normalize"
	"github.com/booklendapp/booklend-server/internal/store"
)

func main() {
	dataPath := flag.String("data", "", "Data directory (default: $DATA_PATH or ~/BookLend/data)")
	flag.Parse()

	path := *dataPath
	if path == "" {
		path = os.Getenv("DATA_PATH")
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		path = filepath.Join(home, "BookLend", "data")
	}

	db, err := store.New(filepath.Join(path, "db"), nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for _, input := range sampleBooks() {
		book := normalize.Book(input)
		if _, err := db.EnsureBook(ctx, book); err != nil {
			log.Fatalf("Failed to seed %s: %v", input.ID, err)
		}
		fmt.Printf("seeded %s (%s)\n", book.ID, book.Title)
	}

	fmt.Printf("done: %d books\n", len(sampleBooks()))
}

func sampleBooks() []normalize.BookInput {
	stock := func(n int) *int { return &n }
	return []normalize.BookInput{
		{
			ID:            "sample-dune",
			Title:         "Dune",
			Authors:       []string{"Frank Herbert"},
			PublishedDate: "1965",
			Categories:    []string{"Science Fiction"},
			ISBN:          "9780441172719",
			StockTotal:    stock(3),
		},
		{
			ID:            "sample-hobbit",
			Title:         "The Hobbit",
			Authors:       []string{"J. R. R. Tolkien"},
			PublishedDate: "1937",
			Categories:    []string{"Fantasy"},
			ISBN:          "9780547928227",
			StockTotal:    stock(5),
		},
		{
			ID:            "sample-ff",
			Title:         "Les Fleurs du mal",
			Authors:       []string{"Charles Baudelaire"},
			PublishedDate: "1857",
			Categories:    []string{"Poésie"},
			StockTotal:    stock(2),
		},
		{
			ID:         "sample-sicp",
			Title:      "Structure and Interpretation of Computer Programs",
			Authors:    []string{"Harold Abelson", "Gerald Jay Sussman"},
			Categories: []string{"Computer Science"},
			ISBN:       "9780262510875",
			StockTotal: stock(4),
		},
	}
}
