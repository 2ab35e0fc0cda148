package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyConfig holds the content rules that are easier to manage in YAML
// than in env vars.
type PolicyConfig struct {
	NewsCategories   []string     `yaml:"news_categories"`
	SharespeareKinds []string     `yaml:"sharespeare_kinds"`
	EditPublished    string       `yaml:"edit_published"` // "deny" or "demote"
	Limits           LimitsConfig `yaml:"limits"`
	Media            MediaConfig  `yaml:"media"`
}

// LimitsConfig bounds payload sizes.
type LimitsConfig struct {
	TitleMax   int `yaml:"title_max"`
	BodyMax    int `yaml:"body_max"`
	CommentMax int `yaml:"comment_max"`
	MaxMedia   int `yaml:"max_media"`
}

// MediaConfig constrains objects referenced from posts.
type MediaConfig struct {
	MaxBytes     int64    `yaml:"max_bytes"`
	ContentTypes []string `yaml:"content_types"` // prefixes, e.g. "image/"
}

// DefaultPolicy returns the built-in rules.
func DefaultPolicy() *PolicyConfig {
	p := &PolicyConfig{}
	p.applyDefaults()
	return p
}

func (p *PolicyConfig) applyDefaults() {
	if len(p.NewsCategories) == 0 {
		p.NewsCategories = []string{"CAMPUS", "GLOBAL"}
	}
	if len(p.SharespeareKinds) == 0 {
		p.SharespeareKinds = []string{"POEM", "STORY", "ESSAY", "ART", "PHOTO", "MUSIC", "OTHER"}
	}
	if p.EditPublished == "" {
		p.EditPublished = "deny"
	}
	if p.Limits.TitleMax == 0 {
		p.Limits.TitleMax = 200
	}
	if p.Limits.BodyMax == 0 {
		p.Limits.BodyMax = 50000
	}
	if p.Limits.CommentMax == 0 {
		p.Limits.CommentMax = 2000
	}
	if p.Limits.MaxMedia == 0 {
		p.Limits.MaxMedia = 5
	}
	if p.Media.MaxBytes == 0 {
		p.Media.MaxBytes = 5 << 20
	}
	if len(p.Media.ContentTypes) == 0 {
		p.Media.ContentTypes = []string{"image/", "audio/", "video/", "application/pdf"}
	}
}

// LoadPolicy reads the YAML policy file at path. A missing file yields the
// defaults.
func LoadPolicy(path string) (*PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), nil
		}
		return nil, err
	}

	var p PolicyConfig
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	p.applyDefaults()

	if p.EditPublished != "deny" && p.EditPublished != "demote" {
		return nil, fmt.Errorf("%s: edit_published must be deny or demote, got %q", path, p.EditPublished)
	}
	return &p, nil
}
