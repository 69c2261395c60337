package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed curriculum.yaml
var defaultCurriculum []byte

// Module is one entry of the static course catalogue.
type Module struct {
	ID            int            `yaml:"id" json:"id"`
	Title         string         `yaml:"title" json:"title"`
	Description   string         `yaml:"description" json:"description"`
	Color         string         `yaml:"color" json:"color"`
	Sessions      int            `yaml:"sessions" json:"sessions"`
	SessionTitles map[int]string `yaml:"session_titles" json:"-"`
}

// Curriculum is the ordered module catalogue. Its order is the unlock order.
type Curriculum struct {
	Modules []Module `yaml:"modules" json:"modules"`
}

var ErrEmptyCurriculum = errors.New("curriculum has no modules")

// LoadCurriculum reads the catalogue from path, or the embedded default when path is empty.
func LoadCurriculum(path string) (Curriculum, error) {
	data := defaultCurriculum
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Curriculum{}, fmt.Errorf("read curriculum %s: %w", path, err)
		}
		data = raw
	}
	return ParseCurriculum(data)
}

func ParseCurriculum(data []byte) (Curriculum, error) {
	var cur Curriculum
	if err := yaml.Unmarshal(data, &cur); err != nil {
		return Curriculum{}, fmt.Errorf("parse curriculum: %w", err)
	}
	if err := cur.Validate(); err != nil {
		return Curriculum{}, err
	}
	return cur, nil
}

func (c Curriculum) Validate() error {
	if len(c.Modules) == 0 {
		return ErrEmptyCurriculum
	}
	seen := make(map[int]bool, len(c.Modules))
	for _, m := range c.Modules {
		if m.ID <= 0 {
			return fmt.Errorf("curriculum module %q: id must be positive", m.Title)
		}
		if seen[m.ID] {
			return fmt.Errorf("curriculum module %d: duplicate id", m.ID)
		}
		if m.Sessions < 0 {
			return fmt.Errorf("curriculum module %d: negative session count", m.ID)
		}
		for n := range m.SessionTitles {
			if n < 1 || n > m.Sessions {
				return fmt.Errorf("curriculum module %d: title for session %d out of range", m.ID, n)
			}
		}
		seen[m.ID] = true
	}
	return nil
}

// Module returns the catalogue entry for id.
func (c Curriculum) Module(id int) (Module, bool) {
	for _, m := range c.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// SessionTitle falls back to a generic title when the catalogue does not name the session.
func (m Module) SessionTitle(n int) string {
	if t, ok := m.SessionTitles[n]; ok && t != "" {
		return t
	}
	return fmt.Sprintf("Session %d", n)
}
