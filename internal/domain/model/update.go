package model

import (
	"encoding/json"
	"fmt"

	"shelter-guard/internal/domain"
)

// Well-known update fields.
const (
	FieldMagnet   = "magnet"
	FieldMotionAt = "motionAt"
)

// Update is a single state change reported by a device: field name to raw value.
// Only a few fields carry meaning for the guard; everything else passes through untouched.
type Update map[string]any

// DecodeUpdate parses a JSON object payload into an Update.
func DecodeUpdate(payload []byte) (Update, error) {
	var u Update
	if err := json.Unmarshal(payload, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedUpdate, err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: payload is not an object", domain.ErrMalformedUpdate)
	}
	return u, nil
}

// Has reports whether the field is present, regardless of its value.
func (u Update) Has(field string) bool {
	_, ok := u[field]
	return ok
}

// MagnetOpen reads magnet.open. present is true whenever the magnet field exists.
// open is true only for a magnet object whose open value is exactly boolean true;
// a non-object magnet reads as closed.
func (u Update) MagnetOpen() (open bool, present bool) {
	raw, ok := u[FieldMagnet]
	if !ok {
		return false, false
	}
	magnet, ok := raw.(map[string]any)
	if !ok {
		return false, true
	}
	v, _ := magnet["open"].(bool)
	return v, true
}

// String renders the update as JSON for logs.
func (u Update) String() string {
	b, err := json.Marshal(map[string]any(u))
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(u))
	}
	return string(b)
}
