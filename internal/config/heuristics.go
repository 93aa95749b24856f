package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Band maps answer lengths strictly below Below to Score.
type Band struct {
	Below int `yaml:"below"`
	Score int `yaml:"score"`
}

// AnswerBands scores one free-text answer by its trimmed length.
// Steps are checked in order; lengths past the last step get Otherwise.
type AnswerBands struct {
	Steps     []Band `yaml:"steps"`
	Otherwise int    `yaml:"otherwise"`
}

// CodingHeuristics tunes the interview coding-score fallback.
type CodingHeuristics struct {
	MinimalDelta          int      `yaml:"minimal_delta"`
	SubstantialGrowth     int      `yaml:"substantial_growth"`
	LogicKeywords         []string `yaml:"logic_keywords"`
	DataStructureKeywords []string `yaml:"data_structure_keywords"`
	CommentPrefixes       []string `yaml:"comment_prefixes"`
	ScoreUnchanged        int      `yaml:"score_unchanged"`
	ScoreMinimal          int      `yaml:"score_minimal"`
	ScoreInsufficient     int      `yaml:"score_insufficient"`
	ScorePoor             int      `yaml:"score_poor"`
	ScoreBasic            int      `yaml:"score_basic"`
	ScoreGood             int      `yaml:"score_good"`
}

// PracticeHeuristics tunes practice-mode post-processing.
type PracticeHeuristics struct {
	PassScore            int    `yaml:"pass_score"`
	EfficiencyClampAbove int    `yaml:"efficiency_clamp_above"`
	EfficiencyPenalty    int    `yaml:"efficiency_penalty"`
	EfficiencyFloor      int    `yaml:"efficiency_floor"`
	ShortCodeLength      int    `yaml:"short_code_length"`
	CommentMarker        string `yaml:"comment_marker"`
}

// Heuristics groups every tunable constant of the fallback evaluators.
type Heuristics struct {
	Coding     CodingHeuristics   `yaml:"coding"`
	Technical  AnswerBands        `yaml:"technical"`
	Behavioral AnswerBands        `yaml:"behavioral"`
	Practice   PracticeHeuristics `yaml:"practice"`
}

// DefaultHeuristics returns the stock tuning.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		Coding: CodingHeuristics{
			MinimalDelta:          10,
			SubstantialGrowth:     50,
			LogicKeywords:         []string{"for", "while", "if", "return"},
			DataStructureKeywords: []string{"Map", "Set", "{}", "[]"},
			CommentPrefixes:       []string{"//", "/*"},
			ScoreUnchanged:        0,
			ScoreMinimal:          10,
			ScoreInsufficient:     20,
			ScorePoor:             25,
			ScoreBasic:            65,
			ScoreGood:             85,
		},
		Technical: AnswerBands{
			Steps:     []Band{{Below: 5, Score: 5}, {Below: 20, Score: 25}, {Below: 100, Score: 60}},
			Otherwise: 85,
		},
		Behavioral: AnswerBands{
			Steps:     []Band{{Below: 5, Score: 0}, {Below: 30, Score: 15}, {Below: 100, Score: 40}, {Below: 200, Score: 70}},
			Otherwise: 90,
		},
		Practice: PracticeHeuristics{
			PassScore:            70,
			EfficiencyClampAbove: 85,
			EfficiencyPenalty:    20,
			EfficiencyFloor:      40,
			ShortCodeLength:      100,
			CommentMarker:        "//",
		},
	}
}

// LoadHeuristics overlays the YAML file at path onto the defaults.
// An empty path returns the defaults unchanged.
func LoadHeuristics(path string) (Heuristics, error) {
	h := DefaultHeuristics()
	if path == "" {
		return h, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Heuristics{}, fmt.Errorf("op=config.LoadHeuristics: %w", err)
	}
	// #nosec G304 -- operator-supplied configuration path
	content, err := os.ReadFile(absPath)
	if err != nil {
		return Heuristics{}, fmt.Errorf("op=config.LoadHeuristics: %w", err)
	}
	if err := yaml.Unmarshal(content, &h); err != nil {
		return Heuristics{}, fmt.Errorf("op=config.LoadHeuristics: parse %s: %w", absPath, err)
	}
	if err := h.Validate(); err != nil {
		return Heuristics{}, fmt.Errorf("op=config.LoadHeuristics: %w", err)
	}
	return h, nil
}

// Validate checks that bands ascend and every score stays in [0,100].
func (h Heuristics) Validate() error {
	for name, b := range map[string]AnswerBands{"technical": h.Technical, "behavioral": h.Behavioral} {
		prev := 0
		for i, s := range b.Steps {
			if s.Below <= prev {
				return fmt.Errorf("%s band %d: thresholds must ascend", name, i)
			}
			if !inScoreRange(s.Score) {
				return fmt.Errorf("%s band %d: score %d out of range", name, i, s.Score)
			}
			prev = s.Below
		}
		if !inScoreRange(b.Otherwise) {
			return fmt.Errorf("%s otherwise score %d out of range", name, b.Otherwise)
		}
	}
	c := h.Coding
	for _, s := range []int{c.ScoreUnchanged, c.ScoreMinimal, c.ScoreInsufficient, c.ScorePoor, c.ScoreBasic, c.ScoreGood} {
		if !inScoreRange(s) {
			return fmt.Errorf("coding score %d out of range", s)
		}
	}
	if c.SubstantialGrowth < 0 || c.MinimalDelta < 0 {
		return fmt.Errorf("coding thresholds must be non-negative")
	}
	if !inScoreRange(h.Practice.PassScore) || !inScoreRange(h.Practice.EfficiencyFloor) {
		return fmt.Errorf("practice scores out of range")
	}
	return nil
}

func inScoreRange(v int) bool { return v >= 0 && v <= 100 }
