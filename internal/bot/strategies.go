package bot

import (
	"math/rand"

	"github.com/charmbracelet/log"

	"handcricket/internal/bot/brain"
	"handcricket/internal/domain"
)

// RandomBrain plays uniformly random moves and never learns. It is the
// baseline the adaptive agent is measured against.
type RandomBrain struct {
	seed    int64
	rng     *rand.Rand
	logger  *log.Logger
	memory  *brain.Memory
	profile *brain.OpponentProfile
	role    domain.Role
}

// NewRandomBrain creates a random opponent.
func NewRandomBrain(opts ...Option) *RandomBrain {
	o := buildOptions(opts)
	b := &RandomBrain{
		logger:  o.logger.WithPrefix("random"),
		memory:  brain.NewMemory(),
		profile: brain.NewOpponentProfile(),
	}
	if o.seed != nil {
		b.seed = *o.seed
	}
	b.Reset()
	return b
}

func (b *RandomBrain) Decide(ctx domain.DecisionContext) (Decision, error) {
	if err := ctx.Validate(); err != nil {
		return Decision{}, err
	}
	b.role = ctx.Role
	m := domain.MoveAt(b.rng.Intn(domain.K))
	b.logger.Debug("decided", "role", ctx.Role, "move", m)
	return Decision{
		Move:      m,
		Predicted: domain.NoMove,
		Consensus: domain.Uniform(),
		Choice:    Choice{Move: m, Role: ctx.Role, Randomized: true, Aggression: 1},
	}, nil
}

func (b *RandomBrain) Update(actual domain.Move, out bool) error {
	if _, err := domain.ParseMove(int(actual)); err != nil {
		return err
	}
	b.memory.RecordOutcome(actual)
	b.profile.RecordMove(b.role, actual, out)
	return nil
}

func (b *RandomBrain) Stats() Stats {
	return Stats{
		Turns: b.memory.Turns(),
		Favourite: map[domain.Role]domain.Move{
			domain.RoleScoring:   b.profile.Favourite(domain.RoleScoring),
			domain.RoleDefending: b.profile.Favourite(domain.RoleDefending),
		},
	}
}

func (b *RandomBrain) Reset() {
	b.rng = rand.New(rand.NewSource(b.seed))
	b.memory.Reset()
	b.profile.Reset()
	b.role = domain.RoleScoring
}
