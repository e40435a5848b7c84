// Package prompt assembles natural-language generation instructions from
// categorical selections. Each pipeline stage declares an ordered catalog of
// categories; a stage template interpolates the current selections into a
// fixed multi-section instruction.
package prompt

// Category is one selectable axis of a stage's prompt.
type Category struct {
	Title       string   `json:"title"`
	Key         string   `json:"key"`
	Options     []string `json:"options"`
	AllowCustom bool     `json:"allow_custom,omitempty"`
}

// Selections maps category keys to the chosen value.
type Selections map[string]string

// Clone returns an independent copy of the selections.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Selection keys shared across stage catalogs.
const (
	KeyModel         = "model"
	KeyEthnicity     = "ethnicity"
	KeyBodyArchetype = "bodyArchetype"
	KeyBackground    = "background"
	KeyLighting      = "lighting"
	KeyStyle         = "style"
	KeyVibe          = "vibe"
	KeyLocation      = "location"
)

// StudioCategories drives the photo-studio stage.
var StudioCategories = []Category{
	{Title: "Model Type", Key: KeyModel, Options: []string{"Professional female model", "Professional male model", "Realistic mannequin"}},
	{Title: "Ethnicity", Key: KeyEthnicity, Options: []string{"Black African", "East African", "West African", "North African"}},
	{Title: "Body Archetype", Key: KeyBodyArchetype, Options: []string{"Slender", "Curvy", "Athletic", "Plus-size"}},
	{Title: "Background", Key: KeyBackground, Options: []string{"Clean studio background", "Outdoor nature scene", "Urban cityscape", "Beach setting"}},
	{Title: "Lighting", Key: KeyLighting, Options: []string{"Bright studio lighting", "Golden hour sunlight", "Soft natural light"}},
}

// AdCategories drives the ad-campaign stage. Location additionally accepts a
// free-form city name.
var AdCategories = []Category{
	{Title: "Scene Style", Key: KeyStyle, Options: []string{"Modern City", "Traditional Market", "Lush Nature", "Luxury Interior"}},
	{Title: "Vibe / Mood", Key: KeyVibe, Options: []string{"Elegant & Luxurious", "Joyful & Celebratory", "Casual & Relaxed", "Professional & Sharp"}},
	{Title: "Ethnicity", Key: KeyEthnicity, Options: []string{"Black African", "East African", "West African", "North African"}},
	{Title: "Body Archetype", Key: KeyBodyArchetype, Options: []string{"Slender", "Curvy", "Athletic", "Plus-size"}},
	{Title: "Location", Key: KeyLocation, Options: []string{"Nairobi", "Lagos", "Cape Town"}, AllowCustom: true},
}

// Defaults returns the default selection set for a catalog: every category
// starts at its first declared option.
func Defaults(catalog []Category) Selections {
	sel := make(Selections, len(catalog))
	for _, cat := range catalog {
		if len(cat.Options) > 0 {
			sel[cat.Key] = cat.Options[0]
		} else {
			sel[cat.Key] = ""
		}
	}
	return sel
}

// Merge layers upstream-supplied selections over stage defaults. Upstream
// keys win; keys the upstream does not know about keep the stage default.
func Merge(defaults, upstream Selections) Selections {
	merged := defaults.Clone()
	for k, v := range upstream {
		merged[k] = v
	}
	return merged
}

// Find returns the catalog category with the given key.
func Find(catalog []Category, key string) (Category, bool) {
	for _, cat := range catalog {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}

// IsEnumerated reports whether value is one of the category's declared
// options. A stored value is either exactly an enumerated option or a
// caller-supplied custom string, never both.
func (c Category) IsEnumerated(value string) bool {
	for _, opt := range c.Options {
		if opt == value {
			return true
		}
	}
	return false
}
