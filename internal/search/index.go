// Package search maintains the catalog search index backing the
// SEARCH_TITLE, SEARCH_AUTHOR and SEARCH_AUTHOR_YEAR commands.
package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/bookrecapp/bookrec-server/internal/domain"
)

// Index wraps a Bleve index over the book catalog.
//
// Thread safety: all public methods are safe for concurrent use. The mutex
// protects against index corruption during rebuild operations.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses stderr if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// This triggers an automatic rebuild on startup when the version doesn't match.
const mappingVersion = "1"

// bookDocument is the shape indexed per catalog book. The document ID is
// the decimal book id.
type bookDocument struct {
	Title        string  `json:"title"`
	TitleExact   string  `json:"title_exact"`
	Authors      string  `json:"authors"`
	AuthorsExact string  `json:"authors_exact"`
	Year         float64 `json:"year"`
}

// New creates or opens the catalog search index.
// A corrupted or version-mismatched index is removed and recreated empty;
// the caller is expected to rebuild it from the store afterwards.
func New(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexPath := filepath.Join(opts.DataPath, "catalog.bleve")
	versionPath := filepath.Join(opts.DataPath, "catalog.version")

	var index bleve.Index
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil {
			logger.Info("search index has no version file, will rebuild with current mapping",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		} else if string(existingVersion) != mappingVersion {
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		var err error
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		indexMapping, err := buildIndexMapping()
		if err != nil {
			return nil, fmt.Errorf("build index mapping: %w", err)
		}
		index, err = bleve.New(indexPath, indexMapping)
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &Index{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index.Close()
}

// DocCount returns the number of indexed books.
func (i *Index) DocCount() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.DocCount()
}

// IndexBook adds or updates one book in the index.
func (i *Index) IndexBook(book *domain.Book) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.Index(docID(book.ID), toDocument(book))
}

// Rebuild reindexes the whole catalog in one batch, replacing any
// previously indexed documents with the same ids.
func (i *Index) Rebuild(books []*domain.Book) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.index.NewBatch()
	for _, book := range books {
		if err := batch.Index(docID(book.ID), toDocument(book)); err != nil {
			return fmt.Errorf("batch book %d: %w", book.ID, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}

	i.logger.Info("search index rebuilt", "books", len(books))
	return nil
}

func docID(bookID int64) string {
	return strconv.FormatInt(bookID, 10)
}

func toDocument(book *domain.Book) bookDocument {
	authors := book.AuthorsJoined()
	return bookDocument{
		Title:        book.Title,
		TitleExact:   book.Title,
		Authors:      authors,
		AuthorsExact: authors,
		Year:         float64(book.Year),
	}
}
