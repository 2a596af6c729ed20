// internal/bingo/legacy.go
//
// Import of saves written by the first tracker releases. They are detected
// by their "list"/"pokemon" keys and converted to a Snapshot on read; writes
// always use the current shape.

package bingo

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// legacySnapshot is the save shape of the first tracker releases, where the
// completion status lived on the catalog label instead of the cell:
//
//	{"size": 5, "pokemon": true, "grid": [[…]], "list": {"label": 0},
//	 "current_pokemon": "…", "pokemon_status": 0}
type legacySnapshot struct {
	Size           int        `json:"size"`
	Pokemon        bool       `json:"pokemon"`
	Grid           [][]string `json:"grid"`
	CurrentPokemon string     `json:"current_pokemon"`
	PokemonStatus  Status     `json:"pokemon_status"`
}

func isLegacy(probe map[string]json.RawMessage) bool {
	_, list := probe["list"]
	_, pokemon := probe["pokemon"]
	return list || pokemon
}

// decodeLegacy converts the per-label status shape. Each cell takes the
// status of its label; the center takes pokemon_status.
func decodeLegacy(probe map[string]json.RawMessage) (Snapshot, error) {
	for _, field := range []string{"size", "pokemon", "grid", "list"} {
		if _, ok := probe[field]; !ok {
			return Snapshot{}, fmt.Errorf("%w: legacy save is missing %q", ErrDeserialization, field)
		}
	}
	raw, err := json.Marshal(probe)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	var ls legacySnapshot
	if err := json.Unmarshal(raw, &ls); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	entries, err := orderedStatusMap(probe["list"])
	if err != nil {
		return Snapshot{}, err
	}

	center := ls.Size / 2
	featured := ls.CurrentPokemon
	if ls.Pokemon && center >= 0 && center < len(ls.Grid) && center < len(ls.Grid[center]) {
		// A manual featured pick rewrote the center without updating
		// current_pokemon and left the pick in the list.
		featured = ls.Grid[center][center]
		entries = dropEntry(entries, featured)
	}

	status := make(map[string]Status, len(entries))
	for _, e := range entries {
		status[e.Label] = e.Status
	}
	s := Snapshot{
		Version:         SnapshotVersion,
		ID:              uuid.NewString(),
		Size:            ls.Size,
		FeaturedEnabled: ls.Pokemon,
		Grid:            ls.Grid,
		Statuses:        make([][]Status, len(ls.Grid)),
		CurrentFeatured: featured,
		Catalog:         entries,
	}
	for r, row := range ls.Grid {
		s.Statuses[r] = make([]Status, len(row))
		for c, label := range row {
			if ls.Pokemon && r == center && c == center {
				s.Statuses[r][c] = ls.PokemonStatus
				continue
			}
			s.Statuses[r][c] = status[label]
		}
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	s.Checksum = s.Sum()
	return s, nil
}

// orderedStatusMap decodes a JSON object of label -> status keeping key order.
func orderedStatusMap(raw json.RawMessage) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrDeserialization, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: list must be an object", ErrDeserialization)
	}
	var out []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: list: %v", ErrDeserialization, err)
		}
		label, _ := tok.(string)
		var st Status
		if err := dec.Decode(&st); err != nil {
			return nil, fmt.Errorf("%w: list[%q]: %v", ErrDeserialization, label, err)
		}
		out = append(out, Entry{Label: label, Status: st})
	}
	return out, nil
}

func dropEntry(entries []Entry, label string) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Label != label {
			out = append(out, e)
		}
	}
	return out
}
