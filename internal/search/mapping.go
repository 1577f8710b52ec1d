package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
)

// keywordLowerAnalyzer keeps the whole field as one lowercased token so
// wildcard queries can express case-insensitive substring matching, the
// contract the search commands promise.
const keywordLowerAnalyzer = "keyword_lower"

// buildIndexMapping creates the Bleve index mapping for catalog books.
//
// Each book is indexed twice per text field: an English-analyzed variant
// for scoring and a lowercased keyword variant for substring matches.
func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	err := indexMapping.AddCustomAnalyzer(keywordLowerAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, err
	}

	docMapping := bleve.NewDocumentMapping()

	// Title - full-text searchable, stored for result lines.
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Lowercased whole-value variants for substring queries.
	titleExactMapping := bleve.NewTextFieldMapping()
	titleExactMapping.Analyzer = keywordLowerAnalyzer
	titleExactMapping.Store = false
	docMapping.AddFieldMappingsAt("title_exact", titleExactMapping)

	// Authors - comma-joined list, stored for result lines.
	authorsFieldMapping := bleve.NewTextFieldMapping()
	authorsFieldMapping.Analyzer = en.AnalyzerName
	authorsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("authors", authorsFieldMapping)

	authorsExactMapping := bleve.NewTextFieldMapping()
	authorsExactMapping.Analyzer = keywordLowerAnalyzer
	authorsExactMapping.Store = false
	docMapping.AddFieldMappingsAt("authors_exact", authorsExactMapping)

	// Year - numeric range queries for SEARCH_AUTHOR_YEAR.
	yearFieldMapping := bleve.NewNumericFieldMapping()
	yearFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("year", yearFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping, nil
}
