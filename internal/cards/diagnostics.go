package cards

import "github.com/tartampluch/anniversary-cards/internal/config"

// Decision records why one candidate was kept or dropped.
type Decision struct {
	EntityID string `json:"entity_id"`
	Included bool   `json:"included"`
	Reason   string `json:"reason"`
}

// Diagnostics exposes the intermediate candidate set and the per-entity decisions.
type Diagnostics struct {
	Candidates []string   `json:"candidates"`
	Decisions  []Decision `json:"decisions"`
}

func (d *Diagnostics) accept(id string) {
	d.Decisions = append(d.Decisions, Decision{EntityID: id, Included: true, Reason: config.ReasonIncluded})
}

func (d *Diagnostics) reject(id, reason string) {
	d.Decisions = append(d.Decisions, Decision{EntityID: id, Reason: reason})
}

// Decision returns the decision taken for id.
func (d Diagnostics) Decision(id string) (Decision, bool) {
	for _, dec := range d.Decisions {
		if dec.EntityID == id {
			return dec, true
		}
	}
	return Decision{}, false
}
