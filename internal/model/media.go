package model

// MediaSource is a media reference; frontmatter may give it as a bare src string.
type MediaSource struct {
	Src    string `yaml:"src" json:"src"`
	Width  string `yaml:"width,omitempty" json:"width,omitempty"`
	Height string `yaml:"height,omitempty" json:"height,omitempty"`
	Type   string `yaml:"type,omitempty" json:"type,omitempty"`
	Text   string `yaml:"text,omitempty" json:"text,omitempty"`
	Href   string `yaml:"href,omitempty" json:"href,omitempty"`
}

// UnmarshalYAML accepts either "path/to/file.jpg" or a mapping.
func (m *MediaSource) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var src string
	if err := unmarshal(&src); err == nil {
		*m = MediaSource{Src: src}
		return nil
	}
	type plain MediaSource
	var out plain
	if err := unmarshal(&out); err != nil {
		return err
	}
	*m = MediaSource(out)
	return nil
}

// IsZero reports whether no source was given.
func (m MediaSource) IsZero() bool {
	return m.Src == ""
}

// Media is the media block of a page's frontmatter.
type Media struct {
	Thumbnail string        `yaml:"thumbnail" json:"thumbnail,omitempty"`
	Featured  MediaSource   `yaml:"featured" json:"featured,omitempty"`
	Opengraph MediaSource   `yaml:"opengraph" json:"opengraph,omitempty"`
	Video     MediaSource   `yaml:"video" json:"video,omitempty"`
	Gallery   []MediaSource `yaml:"gallery" json:"gallery,omitempty"`
}

// Hero resolves the media chosen by the page's hero key.
func (m Media) Hero(key string) []MediaSource {
	switch key {
	case "featured":
		if !m.Featured.IsZero() {
			return []MediaSource{m.Featured}
		}
	case "opengraph":
		if !m.Opengraph.IsZero() {
			return []MediaSource{m.Opengraph}
		}
	case "video":
		if !m.Video.IsZero() {
			return []MediaSource{m.Video}
		}
	case "gallery":
		return m.Gallery
	}
	return nil
}
