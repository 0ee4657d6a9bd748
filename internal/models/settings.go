package models

// SettingEntry is one platform setting. Values are always strings; booleans
// travel as "true"/"false".
type SettingEntry struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}
