package hass_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

func TestNewSnapshot_KeepsInsertionOrder(t *testing.T) {
	snap := hass.NewSnapshot(
		hass.Entity{ID: "sensor.b", State: "1"},
		hass.Entity{ID: "sensor.a", State: "2"},
		hass.Entity{ID: "sensor.b", State: "3"}, // replaces value, keeps position
		hass.Entity{ID: "", State: "4"},         // ignored
	)

	assert.Equal(t, []string{"sensor.b", "sensor.a"}, snap.IDs())
	assert.Equal(t, 2, snap.Len())

	b, ok := snap.Get("sensor.b")
	require.True(t, ok)
	assert.Equal(t, "3", b.State)

	var seen []string
	for e := range snap.All() {
		seen = append(seen, e.ID)
	}
	assert.Equal(t, []string{"sensor.b", "sensor.a"}, seen)
}

func TestDecodeSnapshot_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []string
		wantErr bool
	}{
		{
			name:    "State list",
			input:   `[{"entity_id":"sensor.z","state":"4","attributes":{}},{"entity_id":"sensor.y","state":"1","attributes":{}}]`,
			wantIDs: []string{"sensor.z", "sensor.y"},
		},
		{
			name:    "Object keyed by id keeps document order",
			input:   `{"sensor.z":{"state":"4","attributes":{}},"sensor.a":{"state":"1"},"sensor.m":{"state":"0"}}`,
			wantIDs: []string{"sensor.z", "sensor.a", "sensor.m"},
		},
		{name: "Scalar document", input: `"nope"`, wantErr: true},
		{name: "Truncated document", input: `[{"entity_id":"sensor.a"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := hass.DecodeSnapshot(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, snap.IDs())
		})
	}
}

func TestSnapshot_JSONRoundTripPreservesOrder(t *testing.T) {
	input := `{"sensor.c":{"state":"3"},"sensor.a":{"state":"1"}}`

	var snap hass.Snapshot
	require.NoError(t, json.Unmarshal([]byte(input), &snap))

	out, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.True(t, strings.Index(string(out), "sensor.c") < strings.Index(string(out), "sensor.a"))
}

func TestAttributes_TypedAccess(t *testing.T) {
	attrs := hass.Attributes{
		"number":     json.Number("12"),
		"float":      float64(7),
		"fraction":   1.5,
		"text":       "Leo",
		"numeric":    " 42 ",
		"flag":       true,
		"flag_text":  "true",
		"null_value": nil,
	}

	n, ok := attrs.Int("number")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	n, ok = attrs.Int("float")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = attrs.Int("fraction")
	assert.False(t, ok, "fractional values are not integers")

	n, ok = attrs.Int("numeric")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	s, ok := attrs.String("float")
	assert.True(t, ok)
	assert.Equal(t, "7", s)

	assert.True(t, attrs.Bool("flag"))
	assert.False(t, attrs.Bool("flag_text"), "only a literal boolean counts")
	assert.False(t, attrs.Has("null_value"))
	assert.False(t, attrs.Has("missing"))
	assert.True(t, attrs.Has("text"))
}

func TestEntity_DaysRemaining(t *testing.T) {
	tests := []struct {
		state  string
		want   int
		wantOK bool
	}{
		{"0", 0, true},
		{"12", 12, true},
		{" 5 ", 5, true},
		{"-1", 0, false},
		{"unavailable", 0, false},
		{"soon", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			days, ok := hass.Entity{State: tt.state}.DaysRemaining()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, days)
		})
	}
}

func TestEntity_FriendlyName(t *testing.T) {
	named := hass.Entity{ID: "sensor.anniversary_ada", Attributes: hass.Attributes{"friendly_name": "Ada"}}
	assert.Equal(t, "Ada", named.FriendlyName())

	bare := hass.Entity{ID: "sensor.anniversary_bob"}
	assert.Equal(t, "sensor.anniversary_bob", bare.FriendlyName())
}
