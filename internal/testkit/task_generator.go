package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"choicelab/domain/core"
	"choicelab/domain/trial"
)

// TaskGeneratorConfig configures synthetic participants playing the n-armed
// reward/punishment task
type TaskGeneratorConfig struct {
	Participants   int                `json:"participants"`
	Trials         int                `json:"trials"`
	Arms           int                `json:"arms"`
	RewardProb     float64            `json:"reward_prob"`      // per-trial chance of a pure win
	PunishProb     float64            `json:"punish_prob"`      // per-trial chance of a pure loss
	StayAfterWin   float64            `json:"stay_after_win"`   // probability of repeating after a win
	ShiftAfterLoss float64            `json:"shift_after_loss"` // probability of switching after a loss
	MeanRT         float64            `json:"mean_rt"`
	SDRT           float64            `json:"sd_rt"`
	Encoding       trial.LossEncoding `json:"encoding"`
	IDPrefix       string             `json:"id_prefix"`
	Seed           int64              `json:"seed"`
}

// DefaultTaskConfig returns a 4-armed task with 20 participants of 80 trials
func DefaultTaskConfig() TaskGeneratorConfig {
	return TaskGeneratorConfig{
		Participants:   20,
		Trials:         80,
		Arms:           4,
		RewardProb:     0.4,
		PunishProb:     0.35,
		StayAfterWin:   0.75,
		ShiftAfterLoss: 0.6,
		MeanRT:         650,
		SDRT:           120,
		Encoding:       trial.LossPositive,
		IDPrefix:       "p",
		Seed:           42,
	}
}

// TaskGenerator produces deterministic participant sequences for a seed
type TaskGenerator struct {
	config TaskGeneratorConfig
	rng    *rand.Rand
}

// NewTaskGenerator creates a generator after validating the config
func NewTaskGenerator(config TaskGeneratorConfig) (*TaskGenerator, error) {
	if config.Arms < 2 {
		return nil, fmt.Errorf("task needs at least 2 arms, got %d", config.Arms)
	}
	if config.RewardProb < 0 || config.PunishProb < 0 || config.RewardProb+config.PunishProb > 1 {
		return nil, fmt.Errorf("reward (%.2f) and punish (%.2f) probabilities must be non-negative and sum to at most 1",
			config.RewardProb, config.PunishProb)
	}
	if err := config.Encoding.Validate(); err != nil {
		return nil, err
	}
	return &TaskGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}, nil
}

// Generate returns one sequence per participant
func (g *TaskGenerator) Generate() []trial.Sequence {
	seqs := make([]trial.Sequence, 0, g.config.Participants)
	for p := 0; p < g.config.Participants; p++ {
		id := core.ParticipantID(fmt.Sprintf("%s%03d", g.config.IDPrefix, p+1))
		seqs = append(seqs, g.participant(id))
	}
	return seqs
}

func (g *TaskGenerator) participant(id core.ParticipantID) trial.Sequence {
	seq := trial.Sequence{Participant: id, Trials: make([]trial.Trial, 0, g.config.Trials)}
	enc := g.config.Encoding

	choice := g.rng.Intn(g.config.Arms)
	for i := 0; i < g.config.Trials; i++ {
		if i > 0 {
			choice = g.nextChoice(choice, seq.Trials[i-1])
		}

		t := trial.Trial{Index: i + 1, Choice: armName(choice), RT: g.reactionTime()}
		switch u := g.rng.Float64(); {
		case u < g.config.RewardProb:
			t.Gain = 1
		case u < g.config.RewardProb+g.config.PunishProb:
			t.Loss = enc.Sentinel()
		}
		seq.Trials = append(seq.Trials, t)
	}
	return seq
}

func (g *TaskGenerator) nextChoice(prevChoice int, prev trial.Trial) int {
	enc := g.config.Encoding
	switch {
	case enc.IsPureWin(prev):
		if g.rng.Float64() < g.config.StayAfterWin {
			return prevChoice
		}
		return g.otherArm(prevChoice)
	case enc.IsPureLoss(prev):
		if g.rng.Float64() < g.config.ShiftAfterLoss {
			return g.otherArm(prevChoice)
		}
		return prevChoice
	default:
		return g.rng.Intn(g.config.Arms)
	}
}

func (g *TaskGenerator) otherArm(current int) int {
	next := g.rng.Intn(g.config.Arms - 1)
	if next >= current {
		next++
	}
	return next
}

func (g *TaskGenerator) reactionTime() float64 {
	if g.config.MeanRT <= 0 {
		return math.NaN()
	}
	rt := g.config.MeanRT + g.rng.NormFloat64()*g.config.SDRT
	return math.Max(rt, 150)
}

func armName(i int) string {
	return fmt.Sprintf("arm%d", i+1)
}

// Sequence builds a sequence from compact (choice, gain, loss) triples. It
// keeps test fixtures readable.
func Sequence(id string, rows ...[3]string) trial.Sequence {
	seq := trial.Sequence{Participant: core.ParticipantID(id)}
	for i, r := range rows {
		seq.Trials = append(seq.Trials, trial.Trial{
			Index:  i + 1,
			Choice: r[0],
			Gain:   atoi(r[1]),
			Loss:   atoi(r[2]),
			RT:     math.NaN(),
		})
	}
	return seq
}

func atoi(s string) int {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		panic(fmt.Sprintf("testkit: bad integer %q", s))
	}
	return v
}
