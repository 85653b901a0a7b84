package models

// ProductEntry is a single knowledge base record: one product, one free-text
// description. Entries are immutable after loading.
type ProductEntry struct {
	ID   string // slug of the entry's title line, unique within the knowledge base
	Text string
}

// Title returns the first line of the entry text.
func (p ProductEntry) Title() string {
	for i := 0; i < len(p.Text); i++ {
		if p.Text[i] == '\n' {
			return p.Text[:i]
		}
	}
	return p.Text
}
