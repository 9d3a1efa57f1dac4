package macpo

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks value ranges the trainer relies on. All violations are returned together.
func (s Settings) Validate() error {
	var errs error
	check := func(key string, ok bool, format string, args ...any) {
		if !ok {
			errs = multierr.Append(errs, &InvalidSettingError{Key: key, Err: fmt.Errorf(format, args...)})
		}
	}

	a := s.Algorithm
	check("gamma", a.Gamma >= 0 && a.Gamma <= 1, "discount factor %v outside [0, 1]", a.Gamma)
	check("safety_gamma", a.SafetyGamma >= 0 && a.SafetyGamma <= 1, "discount factor %v outside [0, 1]", a.SafetyGamma)
	check("gae_lambda", a.GAELambda >= 0 && a.GAELambda <= 1, "lambda %v outside [0, 1]", a.GAELambda)
	check("actor_lr", a.ActorLR > 0, "learning rate must be positive, got %v", a.ActorLR)
	check("critic_lr", a.CriticLR > 0, "learning rate must be positive, got %v", a.CriticLR)
	check("kl_threshold", a.KLThreshold > 0, "trust region must be positive, got %v", a.KLThreshold)
	check("safety_bound", a.SafetyBound >= 0, "cost limit must not be negative, got %v", a.SafetyBound)
	check("line_search_fraction", a.LineSearchFraction > 0 && a.LineSearchFraction <= 1, "fraction %v outside (0, 1]", a.LineSearchFraction)
	check("accept_ratio", a.AcceptRatio > 0 && a.AcceptRatio <= 1, "ratio %v outside (0, 1]", a.AcceptRatio)
	check("ls_step", a.LineSearchSteps > 0, "line search needs at least one step, got %d", a.LineSearchSteps)
	check("clip_param", a.ClipParam >= 0, "must not be negative, got %v", a.ClipParam)
	check("ppo_epoch", a.PPOEpoch > 0, "must be positive, got %d", a.PPOEpoch)
	check("num_mini_batch", a.NumMiniBatch > 0, "must be positive, got %d", a.NumMiniBatch)

	e := s.Environment
	check("episode_length", e.EpisodeLength > 0, "must be positive, got %d", e.EpisodeLength)
	check("n_rollout_threads", e.RolloutThreads > 0, "must be positive, got %d", e.RolloutThreads)
	check("num_env_steps", e.NumEnvSteps > 0, "must be positive, got %d", e.NumEnvSteps)
	if e.NumAgents != nil {
		check("num_agents", *e.NumAgents > 0, "must be positive, got %d", *e.NumAgents)
	}

	p := s.Policy
	check("hidden_size", p.HiddenSize > 0, "must be positive, got %d", p.HiddenSize)
	check("layer_N", p.LayerN > 0, "must be positive, got %d", p.LayerN)
	if p.DataChunkLength != nil {
		check("data_chunk_length", *p.DataChunkLength > 0, "must be positive when set, got %d", *p.DataChunkLength)
	}

	return errs
}
