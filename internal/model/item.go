package model

import (
	"encoding/json"
	"time"
)

// ItemMedia carries only the media needed by listings.
type ItemMedia struct {
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Item is the metadata record for a folder or post. Folders may hold child
// items once nested into a tree.
type Item struct {
	Kind        Kind      `json:"type"`
	Path        string    `json:"path"`
	Permalink   string    `json:"permalink,omitempty"`
	Title       string    `json:"title"`
	ShortTitle  string    `json:"shortTitle,omitempty"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"-"`
	Order       *int      `json:"order,omitempty"`
	Status      Status    `json:"status,omitempty"`
	Github      string    `json:"github,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Media       ItemMedia `json:"media"`
	Slug        string    `json:"slug,omitempty"`
	Items       []*Item   `json:"items,omitempty"`
}

func (i *Item) IsFolder() bool { return i.Kind == KindFolder }
func (i *Item) IsPost() bool   { return i.Kind == KindPost }

// HasDate reports whether the item carries a publication date.
func (i *Item) HasDate() bool { return !i.Date.IsZero() }

// Link returns the permalink when set, otherwise the path.
func (i *Item) Link() string {
	if i.Permalink != "" {
		return i.Permalink
	}
	return i.Path
}

// DisplayTitle prefers the short title.
func (i *Item) DisplayTitle() string {
	if i.ShortTitle != "" {
		return i.ShortTitle
	}
	return i.Title
}

// HasTag reports whether the item is tagged with tag.
func (i *Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy without children.
func (i *Item) Clone() *Item {
	c := *i
	c.Items = nil
	return &c
}

func (i *Item) MarshalJSON() ([]byte, error) {
	type alias Item
	out := struct {
		*alias
		Date string `json:"date,omitempty"`
	}{alias: (*alias)(i)}
	if i.HasDate() {
		out.Date = i.Date.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}

func (i *Item) UnmarshalJSON(data []byte) error {
	type alias Item
	in := struct {
		*alias
		Date string `json:"date,omitempty"`
	}{alias: (*alias)(i)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Date == "" {
		i.Date = time.Time{}
		return nil
	}
	date, err := time.Parse(time.RFC3339, in.Date)
	if err != nil {
		return err
	}
	i.Date = date
	return nil
}

// TagGroup is a titled list of tags from tags.yaml.
type TagGroup struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// Tag is a tag with its usage count.
type Tag struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}
