// Package grounding turns extracted criteria into a textual context block of
// matching catalog games for the answer prompt.
package grounding

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/shelfside/shelfside/internal/catalog"
)

// GameSource is the single catalog operation the lookup depends on.
type GameSource interface {
	QueryGames(ctx context.Context, c catalog.Criteria) ([]catalog.Game, error)
}

const (
	// DefaultLimit caps how many games make it into the prompt.
	DefaultLimit = 20
	// overviewCap bounds each game's overview text in the block.
	overviewCap = 200
)

type Lookup struct {
	source GameSource
	limit  int
	logger *log.Logger
}

func NewLookup(source GameSource, limit int) *Lookup {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Lookup{
		source: source,
		limit:  limit,
		logger: log.New(log.Writer(), "[GROUNDING] ", log.LstdFlags),
	}
}

// Build queries the catalog and formats the result into a plain-text block.
// The block is well-formed even for zero matches so prompt construction
// downstream never degenerates. matched is the pre-cap match count.
func (l *Lookup) Build(ctx context.Context, c catalog.Criteria) (block string, matched int, err error) {
	games, err := l.source.QueryGames(ctx, c)
	if err != nil {
		return "", 0, fmt.Errorf("grounding lookup: %w", err)
	}
	return Format(games, l.limit), len(games), nil
}

// Format renders games into the grounding block: a header line plus one line
// per game, rating-sorted and capped.
func Format(games []catalog.Game, limit int) string {
	if len(games) == 0 {
		return "No games found matching the criteria."
	}
	sorted := make([]catalog.Game, len(games))
	copy(sorted, games)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rating > sorted[j].Rating })

	shown := sorted
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d of %d games:\n", len(shown), len(games))
	for _, g := range shown {
		fmt.Fprintf(&b, "- %s: %s (players: %d-%d, playtime: %d-%d min, weight: %.1f/5, rating: %.1f/10)\n",
			g.Name, truncate(g.Overview, overviewCap), g.MinPlayers, g.MaxPlayers, g.MinPlaytime, g.MaxPlaytime, g.Weight, g.Rating)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
