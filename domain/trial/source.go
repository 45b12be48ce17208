package trial

import (
	"fmt"
	"sort"

	"choicelab/domain/core"
)

// Source describes how one data file lays out trial data
type Source struct {
	Name              string       `yaml:"name" json:"name"`
	ParticipantColumn string       `yaml:"participant_column" json:"participant_column"`
	TrialColumn       string       `yaml:"trial_column" json:"trial_column"`
	ChoiceColumn      string       `yaml:"choice_column" json:"choice_column"`
	GainColumn        string       `yaml:"gain_column" json:"gain_column"`
	LossColumn        string       `yaml:"loss_column" json:"loss_column"`
	RTColumn          string       `yaml:"rt_column" json:"rt_column"`
	LossEncoding      LossEncoding `yaml:"loss_encoding" json:"loss_encoding"`
}

// Built-in profiles for the two export formats of the study
var (
	OriginalSource = Source{
		Name:              "original",
		ParticipantColumn: "Participant.Public.ID",
		TrialColumn:       "trial_nr",
		ChoiceColumn:      "choice",
		GainColumn:        "gain",
		LossColumn:        "loss",
		RTColumn:          "rt",
		LossEncoding:      LossPositive,
	}
	SimulatedSource = Source{
		Name:              "simulated",
		ParticipantColumn: "subjID",
		TrialColumn:       "trial",
		ChoiceColumn:      "choice",
		GainColumn:        "gain",
		LossColumn:        "loss",
		LossEncoding:      LossNegative,
	}
)

// RequiredColumns lists the columns a file must carry. The trial and rt
// columns are optional: file order is the trial order.
func (s Source) RequiredColumns() []string {
	return []string{s.ParticipantColumn, s.ChoiceColumn, s.GainColumn, s.LossColumn}
}

// Validate checks the profile itself, not a file
func (s Source) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("source profile has no name")
	}
	for _, c := range s.RequiredColumns() {
		if c == "" {
			return fmt.Errorf("source %q: participant, choice, gain and loss columns are required", s.Name)
		}
	}
	if err := s.LossEncoding.Validate(); err != nil {
		return fmt.Errorf("source %q: %w", s.Name, err)
	}
	return nil
}

// Registry resolves source profiles by name
type Registry struct {
	sources map[string]Source
}

// NewRegistry returns a registry seeded with the built-in profiles
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{
		OriginalSource.Name:  OriginalSource,
		SimulatedSource.Name: SimulatedSource,
	}}
}

// Register adds or replaces a profile after validating it
func (r *Registry) Register(s Source) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.sources[s.Name] = s
	return nil
}

// Lookup returns the named profile
func (r *Registry) Lookup(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return Source{}, fmt.Errorf("%w: %q", core.ErrUnknownSource, name)
	}
	return s, nil
}

// Names lists registered profiles in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
