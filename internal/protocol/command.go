// Package protocol implements the line-oriented text protocol spoken by
// book recommender clients: one request line in, one burst of response
// lines out.
package protocol

import "strings"

// Kind identifies a protocol command.
type Kind int

const (
	KindUnknown Kind = iota
	KindPing
	KindQuit
	KindSearchTitle
	KindSearchAuthor
	KindSearchAuthorYear
	KindLogin
	KindRegister
	KindListLibraries
	KindSaveLibrary
	KindAddReview
	KindAddSuggestion
	KindReviewStats
	KindSuggestionStats
)

// commandNames maps the wire-level command word to its kind. Matching is
// case-sensitive; only PING and QUIT are matched case-insensitively, as
// bare lines without a payload.
var commandNames = map[string]Kind{
	"SEARCH_TITLE":          KindSearchTitle,
	"SEARCH_AUTHOR":         KindSearchAuthor,
	"SEARCH_AUTHOR_YEAR":    KindSearchAuthorYear,
	"LOGIN":                 KindLogin,
	"REGISTER":              KindRegister,
	"LIST_LIBRARIES":        KindListLibraries,
	"SAVE_LIBRARY":          KindSaveLibrary,
	"ADD_REVIEW":            KindAddReview,
	"ADD_SUGGESTION":        KindAddSuggestion,
	"GET_REVIEW_STATS":      KindReviewStats,
	"GET_SUGGESTIONS_STATS": KindSuggestionStats,
}

// Command is one parsed request line.
type Command struct {
	Kind    Kind
	Payload string // text after the first colon, verbatim
}

// Parse decodes a raw request line into a Command. Lines that match no
// known command word parse to KindUnknown.
func Parse(line string) Command {
	line = strings.TrimSpace(line)

	if strings.EqualFold(line, "PING") {
		return Command{Kind: KindPing}
	}
	if strings.EqualFold(line, "QUIT") {
		return Command{Kind: KindQuit}
	}

	name, payload, found := strings.Cut(line, ":")
	if !found {
		return Command{Kind: KindUnknown}
	}
	kind, ok := commandNames[name]
	if !ok {
		return Command{Kind: KindUnknown}
	}
	return Command{Kind: kind, Payload: payload}
}
