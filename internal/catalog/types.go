package catalog

// Criteria is the structured projection of a free-text question. Every field
// is optional; the zero value means "no criteria extracted".
type Criteria struct {
	GameName      string   `json:"game_name,omitempty"`
	MinPlayers    int      `json:"min_players,omitempty"`
	MaxPlayers    int      `json:"max_players,omitempty"`
	MinPlaytime   int      `json:"min_playtime,omitempty"`
	MaxPlaytime   int      `json:"max_playtime,omitempty"`
	Mechanics     []string `json:"mechanics,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	MaxWeight     float64  `json:"max_weight,omitempty"`
	MinRating     float64  `json:"min_rating,omitempty"`
	MinAge        int      `json:"min_age,omitempty"`
}

// IsEmpty reports whether no filter field is set. Empty criteria skip the
// grounding lookup entirely, which is distinct from criteria that match
// zero games.
func (c Criteria) IsEmpty() bool {
	return c.GameName == "" &&
		c.MinPlayers == 0 && c.MaxPlayers == 0 &&
		c.MinPlaytime == 0 && c.MaxPlaytime == 0 &&
		len(c.Mechanics) == 0 && len(c.Categories) == 0 &&
		c.MaxWeight == 0 && c.MinRating == 0 && c.MinAge == 0
}

// Game is a read-only projection of one catalog row. The sync job that
// populates the table owns the data; this service only queries it.
type Game struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Overview    string  `json:"overview"`
	MinPlayers  int     `json:"min_players"`
	MaxPlayers  int     `json:"max_players"`
	MinPlaytime int     `json:"min_playtime"`
	MaxPlaytime int     `json:"max_playtime"`
	Weight      float64 `json:"weight"`
	Rating      float64 `json:"rating"`
}
