package model

// Status controls where a post may appear.
type Status string

const (
	StatusNone Status = ""
	// StatusNew is a published post dated within the "new" window.
	StatusNew Status = "new"
	// StatusScheduled has a future date; hidden in production.
	StatusScheduled Status = "scheduled"
	// StatusPreview has no real date but is visible in production.
	StatusPreview Status = "preview"
	// StatusDraft has no date; visible in development only.
	StatusDraft Status = "draft"
	// StatusUnlisted is reachable but left out of lists.
	StatusUnlisted Status = "unlisted"
	// StatusHidden is hidden everywhere.
	StatusHidden Status = "hidden"
)

// IsPublished reports whether the status allows the page to be published.
func (s Status) IsPublished() bool {
	switch s {
	case StatusDraft, StatusHidden, StatusScheduled:
		return false
	}
	return true
}

// IsListed reports whether the page may appear in lists. Development lists everything.
func (s Status) IsListed(dev bool) bool {
	return s != StatusUnlisted || dev
}

func (s Status) IsVisible(dev bool) bool {
	return s.IsPublished() && s.IsListed(dev)
}

func (s Status) IsPreview() bool {
	return s == StatusPreview
}
