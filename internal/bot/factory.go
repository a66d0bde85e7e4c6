package bot

// NewBrain creates an opponent for the given difficulty.
func NewBrain(d Difficulty, opts ...Option) (Brain, error) {
	d, err := ParseDifficulty(string(d))
	if err != nil {
		return nil, err
	}
	if d == DifficultyRandom {
		return NewRandomBrain(opts...), nil
	}
	return NewAgent(Preset(d), opts...)
}

// NewBrainWithConfig creates an adaptive agent from an explicit config,
// or a RandomBrain when d is DifficultyRandom.
func NewBrainWithConfig(d Difficulty, cfg Config, opts ...Option) (Brain, error) {
	if d == DifficultyRandom {
		return NewRandomBrain(opts...), nil
	}
	return NewAgent(cfg, opts...)
}
