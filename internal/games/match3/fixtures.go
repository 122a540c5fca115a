package match3

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-match3/internal/config"
	engine "github.com/vovakirdan/tui-match3/internal/match3"
)

// BoardFile is the YAML layout of a fixture board.
//
//	name: l-shape
//	rows:
//	  - RGBYO
//	  - RBGOY
//
// Glyphs are R O Y G B P; '.' leaves a slot empty for the first refill.
type BoardFile struct {
	Name string   `yaml:"name"`
	Rows []string `yaml:"rows"`
}

// LoadBoard reads a fixture board from a YAML file.
func LoadBoard(path string) (*engine.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board %s: %w", path, err)
	}
	g, err := ParseBoard(data)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", path, err)
	}
	return g, nil
}

// ParseBoard decodes a fixture board from YAML.
func ParseBoard(data []byte) (*engine.Grid, error) {
	var bf BoardFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("failed to parse board: %w", err)
	}
	if len(bf.Rows) < config.MinBoardSize || len(bf.Rows) > config.MaxBoardSize {
		return nil, fmt.Errorf("board must have %d to %d rows, got %d",
			config.MinBoardSize, config.MaxBoardSize, len(bf.Rows))
	}
	if cols := len(bf.Rows[0]); cols < config.MinBoardSize || cols > config.MaxBoardSize {
		return nil, fmt.Errorf("board must have %d to %d columns, got %d",
			config.MinBoardSize, config.MaxBoardSize, cols)
	}
	return engine.ParseGrid(bf.Rows...)
}
