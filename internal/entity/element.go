package entity

// ElementInfo is one interactable candidate collected from a frame, in
// document order. Ref addresses the element inside the frame it came from.
type ElementInfo struct {
	Ref          string       `json:"ref"`
	Tag          string       `json:"tag"`
	Role         string       `json:"role,omitempty"`
	Name         string       `json:"name,omitempty"`
	Text         string       `json:"text,omitempty"`
	Label        string       `json:"label,omitempty"`
	Placeholder  string       `json:"placeholder,omitempty"`
	Title        string       `json:"title,omitempty"`
	Alt          string       `json:"alt,omitempty"`
	InputType    string       `json:"input_type,omitempty"`
	Autocomplete string       `json:"autocomplete,omitempty"`
	FieldName    string       `json:"field_name,omitempty"`
	Visible      bool         `json:"visible"`
	Enabled      bool         `json:"enabled"`
	BoundingBox  *BoundingBox `json:"bounding_box,omitempty"`
}

// Labels returns every non-empty textual handle of the element, accessible
// name first.
func (e ElementInfo) Labels() []string {
	labels := make([]string, 0, 6)

	for _, s := range []string{e.Name, e.Text, e.Label, e.Placeholder, e.Title, e.Alt} {
		if s != "" {
			labels = append(labels, s)
		}
	}

	return labels
}

func (e ElementInfo) Interactable() bool {
	return e.Visible && e.Enabled
}
