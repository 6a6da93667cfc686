package fourdevs

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	apierrors "github.com/olgasafonova/fourdevs-mcp-server/internal/errors"
	"github.com/olgasafonova/fourdevs-mcp-server/metrics"
	"github.com/olgasafonova/fourdevs-mcp-server/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// MaxSuggestions caps the names attached to a failed resolution
	MaxSuggestions = 5

	minCityNameLen = 2
)

// Resolution is the single city a free-text name resolved to.
type Resolution struct {
	CityID     int    `json:"city_id"`
	CityName   string `json:"city_name"`
	ExactMatch bool   `json:"exact_match"`
}

// ScoredCandidate is a catalog entry scored against one query.
type ScoredCandidate struct {
	CityEntry
	Similarity float64
}

// Resolver turns free-text city names into provider city codes. It holds no
// state between calls; the catalog is fetched fresh every time.
type Resolver struct {
	sender Sender
	logger *slog.Logger
}

// NewResolver creates a Resolver backed by sender.
func NewResolver(sender Sender, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{sender: sender, logger: logger}
}

// CanResolve reports whether Resolve would attempt a lookup for these inputs.
func CanResolve(cityName, state string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(cityName)) >= minCityNameLen && isTwoLetterCode(state)
}

func isTwoLetterCode(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// LoadCatalog fetches and parses the city list of one state. The result may
// be empty; callers decide whether that is an error.
func (r *Resolver) LoadCatalog(ctx context.Context, state string) ([]CityEntry, error) {
	uf := NormalizeUF(state)
	resp, err := r.sender.Send(ctx, ActionLoadCities, Params{"cep_estado": uf})
	if err != nil {
		return nil, err
	}
	if resp.IsClientError() {
		return nil, &apierrors.ProviderError{Action: ActionLoadCities, StatusCode: resp.StatusCode, Body: resp.Excerpt()}
	}
	if !resp.IsRawText() {
		return nil, apierrors.NewContractError(ActionLoadCities, "expected HTML option list, got %s content", resp.Kind)
	}
	if !HasOptionMarkup(resp.Text) {
		r.logger.Warn("City list reply has no option markup", "state", uf, "body", resp.Excerpt())
	}
	return ParseCities(resp.Text), nil
}

// Resolve finds the one catalog entry of state that cityName refers to.
//
// An exact normalized match wins outright, even over other exact matches.
// Otherwise a single containment match is accepted; several are ambiguous.
// Token-only matches are never accepted, they only feed suggestions.
func (r *Resolver) Resolve(ctx context.Context, cityName, state string) (*Resolution, error) {
	if utf8.RuneCountInString(strings.TrimSpace(cityName)) < minCityNameLen {
		metrics.RecordResolution("invalid_input")
		return nil, apierrors.NewValidationError("cidade_nome", cityName, "city name must have at least 2 characters")
	}
	if !isTwoLetterCode(state) {
		metrics.RecordResolution("invalid_input")
		return nil, apierrors.NewValidationError("cep_estado", state, "state must be a two-letter UF code")
	}

	uf := NormalizeUF(state)
	ctx, span := tracing.StartSpan(ctx, "fourdevs.resolve_city")
	defer span.End()
	span.SetAttributes(attribute.String("fourdevs.city.query", cityName), attribute.String("fourdevs.state", uf))

	catalog, err := r.LoadCatalog(ctx, uf)
	if err != nil {
		metrics.RecordResolution("error")
		tracing.RecordError(span, err)
		return nil, err
	}

	res, err := resolveIn(catalog, cityName, uf)
	if err != nil {
		metrics.RecordResolution(apierrors.Kind(err))
		tracing.RecordError(span, err)
		r.logger.Info("City resolution failed", "city", cityName, "state", uf, "kind", apierrors.Kind(err))
		return nil, err
	}

	outcome := "partial"
	if res.ExactMatch {
		outcome = "exact"
	}
	metrics.RecordResolution(outcome)
	span.SetAttributes(attribute.Int("fourdevs.city.id", res.CityID), attribute.Bool("fourdevs.city.exact", res.ExactMatch))
	r.logger.Debug("City resolved", "city", cityName, "state", uf, "city_id", res.CityID, "city_name", res.CityName, "exact", res.ExactMatch)
	return res, nil
}

// resolveIn applies the resolution policy to an already fetched catalog.
func resolveIn(catalog []CityEntry, cityName, uf string) (*Resolution, error) {
	if len(catalog) == 0 {
		return nil, &apierrors.CityResolutionError{Kind: apierrors.CatalogEmpty, City: cityName, State: uf}
	}

	candidates := ScoreCandidates(catalog, cityName)
	if len(candidates) == 0 {
		names := make([]string, 0, MaxSuggestions)
		for _, c := range catalog {
			if len(names) == MaxSuggestions {
				break
			}
			names = append(names, c.Name)
		}
		return nil, &apierrors.CityResolutionError{Kind: apierrors.NoMatch, City: cityName, State: uf, Suggestions: names}
	}

	top := candidates[0]
	if top.Similarity == ScoreExact {
		return toResolution(top, true)
	}

	if top.Similarity >= ScoreContains {
		var strong []ScoredCandidate
		for _, c := range candidates {
			if c.Similarity >= ScoreContains {
				strong = append(strong, c)
			}
		}
		if len(strong) == 1 {
			return toResolution(strong[0], false)
		}
		return nil, &apierrors.CityResolutionError{
			Kind:        apierrors.AmbiguousMatch,
			City:        cityName,
			State:       uf,
			Suggestions: candidateNames(strong),
		}
	}

	return nil, &apierrors.CityResolutionError{
		Kind:        apierrors.NoMatch,
		City:        cityName,
		State:       uf,
		Suggestions: candidateNames(candidates),
	}
}

// ScoreCandidates scores every entry against query, drops non-matches and
// sorts by descending score. Ties keep catalog order.
func ScoreCandidates(catalog []CityEntry, query string) []ScoredCandidate {
	candidates := make([]ScoredCandidate, 0, len(catalog))
	for _, entry := range catalog {
		score := Similarity(query, entry.Name)
		if score > ScoreNone {
			candidates = append(candidates, ScoredCandidate{CityEntry: entry, Similarity: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	return candidates
}

func candidateNames(cs []ScoredCandidate) []string {
	n := min(len(cs), MaxSuggestions)
	names := make([]string, n)
	for i := range n {
		names[i] = cs[i].Name
	}
	return names
}

func toResolution(c ScoredCandidate, exact bool) (*Resolution, error) {
	id, err := strconv.Atoi(c.Code)
	if err != nil {
		return nil, apierrors.NewContractError(ActionLoadCities, "city %q has non-numeric code %q", c.Name, c.Code)
	}
	return &Resolution{CityID: id, CityName: c.Name, ExactMatch: exact}, nil
}
