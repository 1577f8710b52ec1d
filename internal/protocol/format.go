package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bookrecapp/bookrec-server/internal/domain"
	"github.com/bookrecapp/bookrec-server/internal/search"
	"github.com/bookrecapp/bookrec-server/internal/store"
)

// sanitizer keeps free-text fields from breaking the line grammar:
// line separators become spaces and field separators become commas.
var sanitizer = strings.NewReplacer("\r", " ", "\n", " ", ";", ",")

func sanitize(s string) string {
	return sanitizer.Replace(s)
}

func formatBooks(hits []search.BookHit) []string {
	lines := make([]string, 0, len(hits)+2)
	lines = append(lines, fmt.Sprintf("OK SEARCH_RESULTS %d", len(hits)))
	for _, hit := range hits {
		year := ""
		if hit.Year > 0 {
			year = strconv.Itoa(hit.Year)
		}
		lines = append(lines, fmt.Sprintf("BOOK;%d;%s;%s;%s",
			hit.ID, sanitize(hit.Title), sanitize(hit.Authors), year))
	}
	return append(lines, "END")
}

func formatLibraries(libs []*domain.Library) []string {
	lines := make([]string, 0, len(libs)+2)
	lines = append(lines, fmt.Sprintf("OK LIBRARIES %d", len(libs)))
	for _, lib := range libs {
		lines = append(lines, fmt.Sprintf("LIB;%s;%s", sanitize(lib.Name), joinIDs(lib.BookIDs)))
	}
	return append(lines, "END")
}

func formatReviewStats(stats *store.ReviewStats) []string {
	if stats.Count == 0 {
		return []string{"OK REVIEW_STATS 0", "END"}
	}
	header := fmt.Sprintf("OK REVIEW_STATS %d;%.4f;%.4f;%.4f;%.4f;%.4f;%.4f",
		stats.Count, stats.AvgStyle, stats.AvgContent, stats.AvgPleasantness,
		stats.AvgOriginality, stats.AvgEdition, stats.AvgFinal)

	var dist strings.Builder
	dist.WriteString("DIST;")
	for i, sc := range stats.Distribution {
		if i > 0 {
			dist.WriteByte(',')
		}
		fmt.Fprintf(&dist, "%d:%d", sc.Score, sc.Count)
	}
	return []string{header, dist.String(), "END"}
}

func formatSuggestionStats(counts []store.SuggestionCount) []string {
	lines := make([]string, 0, len(counts)+2)
	lines = append(lines, fmt.Sprintf("OK SUGGESTIONS %d", len(counts)))
	for _, c := range counts {
		lines = append(lines, fmt.Sprintf("SUG;%d;%d", c.SuggestedID, c.Users))
	}
	return append(lines, "END")
}

func joinIDs(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}

// parseIDList parses a comma-separated id list. Empty input yields an
// empty list; any non-numeric entry fails the whole list.
func parseIDList(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
