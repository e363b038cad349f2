// Package contract cleans converted contract text before staging.
//
// Cleaning is a fixed sequence of phases. Each phase holds declarative
// regex rules; extra rules loaded from YAML are appended to their phase.
// Whitespace collapse and trimming always run last.
package contract

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Phase orders cleaning rules.
type Phase string

// Phases, in the order they run.
const (
	// PhaseBlock removes multi-paragraph boilerplate.
	PhaseBlock Phase = "block"

	// PhasePage removes lines holding only a page number.
	PhasePage Phase = "page"

	// PhaseURL removes boilerplate URLs.
	PhaseURL Phase = "url"

	// PhaseNote removes single-line instructional notes.
	PhaseNote Phase = "note"
)

var phaseOrder = []Phase{PhaseBlock, PhasePage, PhaseURL, PhaseNote}

// IsValid returns true if the phase is recognised.
func (p Phase) IsValid() bool {
	for _, known := range phaseOrder {
		if p == known {
			return true
		}
	}
	return false
}

// Rule is one regex substitution.
type Rule struct {
	Name        string `yaml:"name"`
	Phase       Phase  `yaml:"phase"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// DefaultRules returns the built-in rules for Open Solar Contracts
// documents in English and French.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "osc_footer_en",
			Phase:   PhaseBlock,
			Pattern: `(?is)Open Solar Contracts v2\.0\..*?opensolarcontracts\.org/`,
		},
		{
			Name:    "osc_footer_fr",
			Phase:   PhaseBlock,
			Pattern: `(?is)Contrats Solaires Ouverts v2\.0\..*?opensolarcontracts\.org/`,
		},
		{
			Name:        "page_number_line",
			Phase:       PhasePage,
			Pattern:     `\n\s*\d+\s*\n`,
			Replacement: "\n\n",
		},
		{
			Name:    "osc_url",
			Phase:   PhaseURL,
			Pattern: `(?i)https?://opensolarcontracts\.org/\S*`,
		},
		{
			Name:    "user_note_en",
			Phase:   PhaseNote,
			Pattern: `(?i)User Note: To be determined on a jurisdiction specific basis\.`,
		},
		{
			Name:    "user_note_fr",
			Phase:   PhaseNote,
			Pattern: `(?i)Note de l['’]utilisateur\s*:\s*À déterminer[^.]*\.`,
		},
	}
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// Ensure Cleaner implements the interface.
var _ driven.TextCleaner = (*Cleaner)(nil)

// Cleaner applies compiled rules phase by phase.
type Cleaner struct {
	phases map[Phase][]compiledRule
}

// New compiles the default rules plus any extra rules.
func New(extra ...Rule) (*Cleaner, error) {
	c := &Cleaner{phases: make(map[Phase][]compiledRule)}
	for _, r := range append(DefaultRules(), extra...) {
		if err := c.add(r); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewFromFile compiles the default rules plus the rules in a YAML file.
// An empty path uses the defaults only.
func NewFromFile(path string) (*Cleaner, error) {
	if path == "" {
		return New()
	}
	rules, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return New(rules...)
}

func (c *Cleaner) add(r Rule) error {
	if !r.Phase.IsValid() {
		return fmt.Errorf("rule %q: unknown phase %q", r.Name, r.Phase)
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("rule %q: compile pattern: %w", r.Name, err)
	}
	c.phases[r.Phase] = append(c.phases[r.Phase], compiledRule{Rule: r, re: re})
	return nil
}

// Clean runs every phase in order, then collapses runs of three or more
// newlines into one blank line and trims the result.
func (c *Cleaner) Clean(text string) string {
	for _, phase := range phaseOrder {
		for _, r := range c.phases[phase] {
			text = r.re.ReplaceAllLiteralString(text, r.Replacement)
		}
	}
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Rules returns the rule names in the order they run.
func (c *Cleaner) Rules() []string {
	var names []string
	for _, phase := range phaseOrder {
		for _, r := range c.phases[phase] {
			names = append(names, r.Name)
		}
	}
	return names
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads extra rules from a YAML file of the form:
//
//	rules:
//	  - name: draft_watermark
//	    phase: block
//	    pattern: '(?i)DRAFT - NOT FOR EXECUTION'
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	for i, r := range f.Rules {
		if r.Name == "" {
			f.Rules[i].Name = fmt.Sprintf("%s#%d", path, i+1)
		}
	}
	return f.Rules, nil
}
