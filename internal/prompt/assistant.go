package prompt

// Template renders the current selection set into an instruction string.
type Template func(sel Selections) string

// Assistant owns the selections and the derived prompt for one stage.
// Selections are the source of truth: the prompt is a derived cache that is
// recomputed (and any manual override discarded) on every selection change.
type Assistant struct {
	catalog  []Category
	template Template

	selections Selections
	prompt     string
	disabled   map[string]string
}

// NewAssistant builds an assistant for the given catalog. When initial
// selections are supplied (a downstream stage seeding itself from an upstream
// result) they are merged over the stage defaults; otherwise every category
// starts at its first declared option. The prompt is derived immediately.
func NewAssistant(catalog []Category, template Template, initial Selections) *Assistant {
	a := &Assistant{
		catalog:  catalog,
		template: template,
		disabled: make(map[string]string),
	}
	a.Reseed(initial)
	return a
}

// Reseed re-merges upstream selections over stage defaults and rederives the
// prompt. Called on construction and whenever the upstream handoff changes.
func (a *Assistant) Reseed(initial Selections) {
	a.selections = Merge(Defaults(a.catalog), initial)
	a.recompute()
}

// Select updates one category and rederives the prompt. The overwrite is a
// deliberate one-way sync: in-progress manual prompt edits are discarded, not
// merged. Selecting on a disabled category is inert.
func (a *Assistant) Select(key, value string) {
	if _, off := a.disabled[key]; off {
		return
	}
	a.selections[key] = value
	a.recompute()
}

// OverridePrompt installs a manual prompt override. It persists only until
// the next selection change or reseed recomputes the prompt.
func (a *Assistant) OverridePrompt(text string) {
	a.prompt = text
}

// Prompt returns the current instruction text.
func (a *Assistant) Prompt() string { return a.prompt }

// Selections returns a copy of the current selection set.
func (a *Assistant) Selections() Selections { return a.selections.Clone() }

// Catalog returns the stage's ordered categories.
func (a *Assistant) Catalog() []Category { return a.catalog }

// Disable marks a category inert with a user-facing reason. The stored value
// is untouched.
func (a *Assistant) Disable(key, reason string) {
	a.disabled[key] = reason
	a.recompute()
}

// Enable lifts a Disable.
func (a *Assistant) Enable(key string) {
	delete(a.disabled, key)
	a.recompute()
}

// DisabledReason returns the reason a category is inert, or "" when active.
func (a *Assistant) DisabledReason(key string) string { return a.disabled[key] }

// CustomFieldValue returns what a custom-value category's free-text field
// should display: empty whenever the stored value equals one of the
// enumerated options, otherwise the stored custom string. The two input
// modes never both claim the same value.
func (a *Assistant) CustomFieldValue(key string) string {
	cat, ok := Find(a.catalog, key)
	if !ok || !cat.AllowCustom {
		return ""
	}
	value := a.selections[key]
	if cat.IsEnumerated(value) {
		return ""
	}
	return value
}

func (a *Assistant) recompute() {
	if a.template == nil {
		a.prompt = ""
		return
	}
	// Template output passes through untouched, even when empty.
	a.prompt = a.template(a.selections.Clone())
}
