// Package main provides a tool to import a book catalog into the database
// and rebuild the search index.
//
// The catalog is a CSV file with columns: id, title, authors, year,
// publisher, category. Multiple authors are separated by '|' inside the
// authors column. Year may be empty.
//
// Usage:
//
//	go run ./cmd/seed --catalog books.csv
//	DATA_PATH=~/BookRecommender/data go run ./cmd/seed --catalog books.csv
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/bookrecapp/bookrec-server/internal/config"
	"github.com/bookrecapp/bookrec-server/internal/domain"
	"github.com/bookrecapp/bookrec-server/internal/logger"
	"github.com/bookrecapp/bookrec-server/internal/search"
	"github.com/bookrecapp/bookrec-server/internal/store/sqlite"
)

var catalogPath = flag.String("catalog", "", "Path to the catalog CSV file")

func main() {
	flag.Parse()

	if *catalogPath == "" {
		log.Fatal("--catalog is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if err := os.MkdirAll(cfg.SearchIndexPath(), 0o755); err != nil {
		log.Fatalf("Failed to create search index directory: %v", err)
	}

	fmt.Printf("Opening database at: %s\n", cfg.DatabasePath())
	s, err := sqlite.Open(cfg.DatabasePath(), slogger.Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	f, err := os.Open(*catalogPath)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer f.Close()

	ctx := context.Background()
	imported, skipped := 0, 0

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read catalog line %d: %v", line, err)
		}

		book, err := parseRecord(record)
		if err != nil {
			if line == 1 {
				// header row
				continue
			}
			fmt.Printf("Skipping line %d: %v\n", line, err)
			skipped++
			continue
		}

		if err := s.UpsertBook(ctx, book); err != nil {
			log.Fatalf("Failed to import book %d: %v", book.ID, err)
		}
		imported++
	}

	total, err := s.CountBooks(ctx)
	if err != nil {
		log.Fatalf("Failed to count books: %v", err)
	}
	fmt.Printf("Imported %d books (%d skipped), catalog now holds %d\n", imported, skipped, total)

	idx, err := search.New(search.Options{
		DataPath: cfg.SearchIndexPath(),
		Logger:   slogger.Logger,
	})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer idx.Close()

	books, err := s.ListAllBooks(ctx)
	if err != nil {
		log.Fatalf("Failed to list books: %v", err)
	}
	if err := idx.Rebuild(books); err != nil {
		log.Fatalf("Failed to rebuild search index: %v", err)
	}

	count, _ := idx.DocCount()
	fmt.Printf("Search index rebuilt with %d documents\n", count)
}

func parseRecord(record []string) (*domain.Book, error) {
	if len(record) < 3 {
		return nil, fmt.Errorf("expected at least 3 columns, got %d", len(record))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid book id %q", record[0])
	}

	title := strings.TrimSpace(record[1])
	if title == "" {
		return nil, fmt.Errorf("book %d has an empty title", id)
	}

	var authors []string
	for _, a := range strings.Split(record[2], "|") {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}

	book := &domain.Book{
		ID:      id,
		Title:   title,
		Authors: authors,
	}
	if len(record) > 3 {
		yearText := strings.TrimSpace(record[3])
		if yearText != "" {
			year, err := strconv.Atoi(yearText)
			if err != nil {
				return nil, fmt.Errorf("book %d has an invalid year %q", id, yearText)
			}
			book.Year = year
		}
	}
	if len(record) > 4 {
		book.Publisher = strings.TrimSpace(record[4])
	}
	if len(record) > 5 {
		book.Category = strings.TrimSpace(record[5])
	}
	return book, nil
}
