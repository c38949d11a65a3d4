package viewstate

import (
	"encoding/json"
	"time"

	apperrors "github.com/docsight/docsight/pkg/errors"
)

// wireState mirrors ViewState with pointer fields so that a record written
// by an older build, missing fields a newer build added, still decodes: the
// absent fields stay nil and the defaults survive the merge.
type wireState struct {
	ActiveTab *Tab               `json:"active_tab"`
	CardMode  *CardMode          `json:"card_mode"`
	Panels    map[Tab]PanelState `json:"panels"`
	SavedAt   *time.Time         `json:"saved_at"`
}

// Encode serializes a view state for storage.
func Encode(s ViewState) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encode view state")
	}
	return data, nil
}

// Decode parses a stored record into a view state for key, merging it over
// Default(key) field by field.  Unknown fields are ignored and missing
// fields keep their defaults, so records survive schema drift in both
// directions.
func Decode(key string, data []byte) (ViewState, error) {
	out := Default(key)
	if len(data) == 0 {
		return out, nil
	}
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return Default(key), apperrors.Wrap(err, apperrors.ErrCodeViewStateDecodeFailed, "decode view state")
	}
	if w.ActiveTab != nil && w.ActiveTab.IsValid() {
		out.ActiveTab = *w.ActiveTab
	}
	if w.CardMode != nil && (*w.CardMode == CardModeExpanded || *w.CardMode == CardModeCompact) {
		out.CardMode = *w.CardMode
	}
	for tab, p := range w.Panels {
		out.Panels[tab] = p
	}
	if w.SavedAt != nil {
		out.SavedAt = *w.SavedAt
	}
	return out, nil
}
