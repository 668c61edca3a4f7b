package workflow

import "strings"

// Transition is one configured move between workflow states, with the
// roles permitted to act on it.
type Transition struct {
	From    string   `toml:"from"`
	To      string   `toml:"to"`
	Action  string   `toml:"action"`
	Allowed []string `toml:"allowed"`
}

// Definition maps a record type to its ordered transitions and the
// record field that carries the workflow state.
type Definition struct {
	Name        string       `toml:"name"`
	RecordType  string       `toml:"record_type"`
	StateField  string       `toml:"state_field"`
	Transitions []Transition `toml:"transition"`
}

// Match returns the first transition whose endpoints equal (from, to).
// State names compare exactly; transitions are an ordered set and the
// earliest declaration wins.
func (d *Definition) Match(from, to string) (Transition, bool) {
	if d == nil {
		return Transition{}, false
	}
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	for _, tr := range d.Transitions {
		if strings.TrimSpace(tr.From) == from && strings.TrimSpace(tr.To) == to {
			return tr, true
		}
	}
	return Transition{}, false
}

// StateChange is a detected workflow transition on a saved record. Field
// names the record attribute the change was observed on.
type StateChange struct {
	From  string
	To    string
	Field string
}
