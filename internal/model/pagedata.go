package model

// Crumb is one breadcrumb entry.
type Crumb struct {
	Path        string `json:"path,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// PageData is what a layout receives when rendering one page.
type PageData struct {
	SiteTitle   string
	BaseURL     string
	Site        *SiteData
	Page        *ContentItem
	Breadcrumbs []Crumb
	Siblings    []*Item
	Prev        *Item
	Next        *Item
	Tree        []*Item
	Params      map[string]interface{}
	Layout      string
	Extra       map[string]interface{}
}
