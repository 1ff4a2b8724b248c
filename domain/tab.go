package domain

// Tab is an open conversation surface keyed by a conversation key.
// A tab may outlive the buddy it was opened for.
type Tab struct {
	Label    string
	IsActive bool
}

func NewTab(label string) *Tab {
	return &Tab{
		Label:    label,
		IsActive: false,
	}
}
