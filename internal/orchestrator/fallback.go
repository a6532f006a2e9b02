package orchestrator

import (
	"fmt"
	"strings"

	"github.com/shelfside/shelfside/internal/catalog"
)

// shelfStaples back the fallback answer when the catalog is unreachable.
var shelfStaples = []string{"Catan", "Ticket to Ride", "Carcassonne"}

// strategyKeywords mark a question as asking how to play better.
var strategyKeywords = []string{"how to", "strategy", "win"}

// strategyTips are canned, game-specific pointers keyed by lowercase name.
var strategyTips = map[string]string{
	"catan":          "In Catan, settle next to 6 and 8 tiles early and don't sleep on ore: city upgrades win games.",
	"ticket to ride": "In Ticket to Ride, claim the long routes that connect your tickets first; the short filler routes will still be there later.",
	"carcassonne":    "In Carcassonne, farms score quietly all game: commit a farmer early and contest the biggest field at the end.",
	"pandemic":       "In Pandemic, cure diseases over treating symptoms; trade cards aggressively and plan two turns ahead as a team.",
	"wingspan":       "In Wingspan, build a food or card engine in the first round; raw points come from chaining activations, not single birds.",
	"azul":           "In Azul, deny as much as you draft: taking tiles your opponent needs is often worth more than perfect placement.",
	"7 wonders":      "In 7 Wonders, watch what your neighbors collect and lean into a resource or science path they can't punish.",
}

const genericTip = "A good rule of thumb for most games: figure out what actually scores points and spend every turn doing that a little more efficiently than your opponents."

// buildFallback synthesizes a deterministic, never-low-quality answer. It
// references a few games (top-rated from the catalog when available) and
// appends a strategy tip when the question asks for one.
func buildFallback(query string, defaults []catalog.Game) string {
	names := make([]string, 0, 3)
	for _, g := range defaults {
		if g.Name != "" {
			names = append(names, g.Name)
		}
		if len(names) == 3 {
			break
		}
	}
	if len(names) < 2 {
		names = shelfStaples
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I couldn't come up with a specific answer to that just now, but here are a few games almost everyone enjoys: %s.",
		joinNames(names))

	if wantsStrategy(query) {
		if tip, ok := tipForQuery(query); ok {
			b.WriteString(" ")
			b.WriteString(tip)
			return b.String()
		}
	}
	b.WriteString(" ")
	b.WriteString(genericTip)
	return b.String()
}

func wantsStrategy(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range strategyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func tipForQuery(query string) (string, bool) {
	lower := strings.ToLower(query)
	for name, tip := range strategyTips {
		if strings.Contains(lower, name) {
			return tip, true
		}
	}
	return "", false
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
