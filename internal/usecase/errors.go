package usecase

import "errors"

var (
	// ErrInvalidProbability marks a sampled probability that left [0,1],
	// which means a predictor or feature pipeline is broken. Fatal to the
	// trial.
	ErrInvalidProbability = errors.New("probability outside [0,1]")

	// ErrRosterExhausted marks a substitution that cannot happen because the
	// budget or the bench ran out. Recoverable: the window is skipped.
	ErrRosterExhausted = errors.New("substitution budget or bench exhausted")

	// ErrTrialAborted wraps any fatal condition that stopped a trial early.
	ErrTrialAborted = errors.New("trial aborted")

	ErrUnknownTeam    = errors.New("team not in snapshot")
	ErrUnknownPlayer  = errors.New("player not in snapshot")
	ErrUnknownReferee = errors.New("referee not in snapshot")
)
