package shipping

// DefinitionEntry explains one term used by the rate table. Reference only.
type DefinitionEntry struct {
	Category   string `json:"category"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}
