package hass

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tartampluch/anniversary-cards/internal/config"
)

// Entity is a single state object as pushed by the dashboard host.
type Entity struct {
	// ID is the namespaced identifier, conventionally "sensor.<name>".
	ID string `json:"entity_id"`

	// State holds the raw state string ("12", "unavailable", ...).
	State string `json:"state"`

	// Attributes carries the free-form attribute mapping.
	Attributes Attributes `json:"attributes"`
}

// FriendlyName returns the display name, falling back to the entity id.
func (e Entity) FriendlyName() string {
	if name, ok := e.Attributes.String(config.AttrFriendlyName); ok && name != "" {
		return name
	}
	return e.ID
}

// Unavailable reports whether the host marked the entity as unavailable.
func (e Entity) Unavailable() bool {
	return e.State == config.StateUnavailable
}

// DaysRemaining parses the state as a non-negative day count.
func (e Entity) DaysRemaining() (int, bool) {
	if e.Unavailable() {
		return 0, false
	}
	days, err := strconv.Atoi(strings.TrimSpace(e.State))
	if err != nil || days < 0 {
		return 0, false
	}
	return days, true
}

// Attributes is the attribute mapping of an entity.
// Values decoded from JSON are json.Number, string, bool, nil, []any or map[string]any.
type Attributes map[string]any

// Has reports whether the attribute is defined (present and not null).
func (a Attributes) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns the attribute rendered as text.
// Numbers are printed without a trailing fraction when integral.
func (a Attributes) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}

// Int returns the attribute as an integer when it holds a whole number.
func (a Attributes) Int(key string) (int, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Bool reports true only for a literal boolean true.
func (a Attributes) Bool(key string) bool {
	b, ok := a[key].(bool)
	return ok && b
}
