package protocol

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bookrecapp/bookrec-server/internal/domain"
	"github.com/bookrecapp/bookrec-server/internal/service"
	"github.com/bookrecapp/bookrec-server/internal/store"
)

const (
	errUnknownCommand = "ERR Comando non riconosciuto."
	errInternal       = "ERR Errore interno"
)

// Handler dispatches parsed commands to the service layer and renders
// response lines. It holds no per-connection state: every privileged
// command re-supplies the userid it acts for, and the handler trusts it.
type Handler struct {
	auth        *service.AuthService
	libraries   *service.LibraryService
	reviews     *service.ReviewService
	suggestions *service.SuggestionService
	catalog     *service.CatalogService
	logger      *slog.Logger
}

// NewHandler creates a protocol handler over the given services.
func NewHandler(
	auth *service.AuthService,
	libraries *service.LibraryService,
	reviews *service.ReviewService,
	suggestions *service.SuggestionService,
	catalog *service.CatalogService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:        auth,
		libraries:   libraries,
		reviews:     reviews,
		suggestions: suggestions,
		catalog:     catalog,
		logger:      logger,
	}
}

// Handle processes one request line and returns the response lines plus
// whether the connection should close. Internal failures never escape:
// they are logged and reported as a single generic error line.
func (h *Handler) Handle(ctx context.Context, line string) (lines []string, closeConn bool) {
	// blank lines are silently skipped, not an unknown command
	if strings.TrimSpace(line) == "" {
		return nil, false
	}
	cmd := Parse(line)

	defer func() {
		if r := recover(); r != nil {
			h.logger.ErrorContext(ctx, "panic while handling command", "panic", r)
			lines, closeConn = []string{errInternal}, false
		}
	}()

	var err error
	switch cmd.Kind {
	case KindPing:
		return []string{"PONG"}, false
	case KindQuit:
		return []string{"BYE"}, true
	case KindSearchTitle:
		lines, err = h.searchTitle(ctx, cmd.Payload)
	case KindSearchAuthor:
		lines, err = h.searchAuthor(ctx, cmd.Payload)
	case KindSearchAuthorYear:
		lines, err = h.searchAuthorYear(ctx, cmd.Payload)
	case KindLogin:
		lines, err = h.login(ctx, cmd.Payload)
	case KindRegister:
		lines, err = h.register(ctx, cmd.Payload)
	case KindListLibraries:
		lines, err = h.listLibraries(ctx, cmd.Payload)
	case KindSaveLibrary:
		lines, err = h.saveLibrary(ctx, cmd.Payload)
	case KindAddReview:
		lines, err = h.addReview(ctx, cmd.Payload)
	case KindAddSuggestion:
		lines, err = h.addSuggestion(ctx, cmd.Payload)
	case KindReviewStats:
		lines, err = h.reviewStats(ctx, cmd.Payload)
	case KindSuggestionStats:
		lines, err = h.suggestionStats(ctx, cmd.Payload)
	default:
		return []string{errUnknownCommand}, false
	}

	if err != nil {
		h.logger.ErrorContext(ctx, "command failed", "error", err)
		return []string{errInternal}, false
	}
	return lines, false
}

func (h *Handler) searchTitle(ctx context.Context, payload string) ([]string, error) {
	query := strings.TrimSpace(payload)
	if query == "" {
		return []string{"ERR Query di ricerca vuota."}, nil
	}
	hits, err := h.catalog.SearchTitle(ctx, query)
	if err != nil {
		return nil, err
	}
	return formatBooks(hits), nil
}

func (h *Handler) searchAuthor(ctx context.Context, payload string) ([]string, error) {
	author := strings.TrimSpace(payload)
	if author == "" {
		return []string{"ERR Autore vuoto."}, nil
	}
	hits, err := h.catalog.SearchAuthor(ctx, author)
	if err != nil {
		return nil, err
	}
	return formatBooks(hits), nil
}

func (h *Handler) searchAuthorYear(ctx context.Context, payload string) ([]string, error) {
	author, yearText, found := strings.Cut(payload, ";")
	author = strings.TrimSpace(author)
	if !found || author == "" {
		return []string{"ERR Formato per SEARCH_AUTHOR_YEAR non valido. Usa autore;anno"}, nil
	}
	year, err := strconv.Atoi(strings.TrimSpace(yearText))
	if err != nil {
		return []string{"ERR Anno non valido"}, nil
	}
	hits, err := h.catalog.SearchAuthorYear(ctx, author, year)
	if err != nil {
		return nil, err
	}
	return formatBooks(hits), nil
}

func (h *Handler) login(ctx context.Context, payload string) ([]string, error) {
	// split at the first ';' only, so a hash containing ';' still compares
	userID, hash, found := strings.Cut(payload, ";")
	if !found {
		return []string{"ERR LOGIN formato non valido"}, nil
	}
	ok, err := h.auth.Login(ctx, strings.TrimSpace(userID), strings.TrimSpace(hash))
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{"ERR LOGIN"}, nil
	}
	return []string{"OK LOGIN"}, nil
}

func (h *Handler) register(ctx context.Context, payload string) ([]string, error) {
	fields := strings.Split(payload, ";")
	if len(fields) != 6 {
		return []string{"ERR REGISTER dati insufficienti"}, nil
	}
	err := h.auth.Register(ctx, service.RegisterRequest{
		UserID:       fields[0],
		PasswordHash: fields[1],
		FirstName:    fields[2],
		LastName:     fields[3],
		FiscalCode:   fields[4],
		Email:        fields[5],
	})
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return []string{"ERR REGISTER userid esistente"}, nil
	case errors.Is(err, store.ErrInvalidInput):
		return []string{"ERR REGISTER dati insufficienti"}, nil
	case err != nil:
		return nil, err
	}
	return []string{"OK REGISTER"}, nil
}

func (h *Handler) listLibraries(ctx context.Context, payload string) ([]string, error) {
	userID := strings.TrimSpace(payload)
	if userID == "" {
		return []string{"ERR LIST_LIBRARIES userid mancante"}, nil
	}
	libs, err := h.libraries.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return formatLibraries(libs), nil
}

func (h *Handler) saveLibrary(ctx context.Context, payload string) ([]string, error) {
	fields := strings.SplitN(payload, ";", 3)
	if len(fields) < 2 {
		return []string{"ERR SAVE_LIBRARY formato non valido"}, nil
	}
	userID := strings.TrimSpace(fields[0])
	name := strings.TrimSpace(fields[1])
	if userID == "" || name == "" {
		return []string{"ERR SAVE_LIBRARY userid o nome vuoti"}, nil
	}
	var ids []int64
	if len(fields) == 3 {
		var err error
		if ids, err = parseIDList(fields[2]); err != nil {
			return []string{"ERR SAVE_LIBRARY formato non valido"}, nil
		}
	}
	if err := h.libraries.Save(ctx, userID, name, ids); err != nil {
		return nil, err
	}
	return []string{"OK SAVE_LIBRARY"}, nil
}

func (h *Handler) addReview(ctx context.Context, payload string) ([]string, error) {
	// userid;bookId;style;content;pleasantness;originality;edition;final;comment?
	// The final score field is accepted for wire compatibility but the
	// stored value is always derived server-side.
	fields := strings.SplitN(payload, ";", 9)
	if len(fields) < 8 {
		return []string{"ERR ADD_REVIEW formato non valido"}, nil
	}

	nums := make([]int64, 7)
	for i := range nums {
		n, err := strconv.ParseInt(strings.TrimSpace(fields[i+1]), 10, 64)
		if err != nil {
			return []string{"ERR ADD_REVIEW valori numerici non validi"}, nil
		}
		nums[i] = n
	}

	comment := ""
	if len(fields) == 9 {
		comment = fields[8]
	}
	// character count, not bytes: multibyte comments are legitimate
	if utf8.RuneCountInString(comment) > domain.MaxCommentLength {
		return []string{"ERR ADD_REVIEW commento troppo lungo"}, nil
	}

	ok, err := h.reviews.Add(ctx, service.AddReviewRequest{
		UserID:       fields[0],
		BookID:       nums[0],
		Style:        int(nums[1]),
		Content:      int(nums[2]),
		Pleasantness: int(nums[3]),
		Originality:  int(nums[4]),
		Edition:      int(nums[5]),
		Comment:      comment,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{"ERR ADD_REVIEW"}, nil
	}
	return []string{"OK ADD_REVIEW"}, nil
}

func (h *Handler) addSuggestion(ctx context.Context, payload string) ([]string, error) {
	fields := strings.SplitN(payload, ";", 3)
	if len(fields) != 3 {
		return []string{"ERR ADD_SUGGESTION formato non valido"}, nil
	}
	bookID, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return []string{"ERR ADD_SUGGESTION idLibro non valido"}, nil
	}
	ids, err := parseIDList(fields[2])
	if err != nil {
		return []string{"ERR ADD_SUGGESTION formato non valido"}, nil
	}
	ok, err := h.suggestions.Add(ctx, strings.TrimSpace(fields[0]), bookID, ids)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{"ERR ADD_SUGGESTION"}, nil
	}
	return []string{"OK ADD_SUGGESTION"}, nil
}

func (h *Handler) reviewStats(ctx context.Context, payload string) ([]string, error) {
	bookID, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil || bookID <= 0 {
		return []string{"ERR GET_REVIEW_STATS id non valido"}, nil
	}
	stats, err := h.reviews.Stats(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return formatReviewStats(stats), nil
}

func (h *Handler) suggestionStats(ctx context.Context, payload string) ([]string, error) {
	bookID, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil || bookID <= 0 {
		return []string{"ERR GET_SUGGESTIONS_STATS id non valido"}, nil
	}
	counts, err := h.suggestions.Stats(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return formatSuggestionStats(counts), nil
}
