package macpo

// Settings is the typed view of a resolved MACPO configuration. It is built once
// per run and handed by value to the subsystems that consume it.
type Settings struct {
	Run         RunSettings         `yaml:",inline" json:"run" mapstructure:",squash"`
	Environment EnvironmentSettings `yaml:",inline" json:"environment" mapstructure:",squash"`
	Policy      PolicySettings      `yaml:",inline" json:"policy" mapstructure:",squash"`
	Algorithm   AlgorithmSettings   `yaml:",inline" json:"algorithm" mapstructure:",squash"`
}

// RunSettings controls experiment bookkeeping and hardware.
type RunSettings struct {
	AlgorithmName     string  `yaml:"algorithm_name" json:"algorithm_name" mapstructure:"algorithm_name"`
	ExperimentName    string  `yaml:"experiment_name" json:"experiment_name" mapstructure:"experiment_name"`
	Seed              int     `yaml:"seed" json:"seed" mapstructure:"seed"`
	RunDir            string  `yaml:"run_dir" json:"run_dir" mapstructure:"run_dir"`
	ModelDir          *string `yaml:"model_dir" json:"model_dir" mapstructure:"model_dir"`
	UseWandb          bool    `yaml:"use_wandb" json:"use_wandb" mapstructure:"use_wandb"`
	Cuda              bool    `yaml:"cuda" json:"cuda" mapstructure:"cuda"`
	CudaDeterministic bool    `yaml:"cuda_deterministic" json:"cuda_deterministic" mapstructure:"cuda_deterministic"`
	TrainingThreads   int     `yaml:"n_training_threads" json:"n_training_threads" mapstructure:"n_training_threads"`
	SaveInterval      int     `yaml:"save_interval" json:"save_interval" mapstructure:"save_interval"`
	UseEval           bool    `yaml:"use_eval" json:"use_eval" mapstructure:"use_eval"`
	EvalInterval      int     `yaml:"eval_interval" json:"eval_interval" mapstructure:"eval_interval"`
	EvalEpisodes      int     `yaml:"eval_episodes" json:"eval_episodes" mapstructure:"eval_episodes"`
	LogInterval       int     `yaml:"log_interval" json:"log_interval" mapstructure:"log_interval"`
	UseRender         bool    `yaml:"use_render" json:"use_render" mapstructure:"use_render"`
}

// EnvironmentSettings controls rollout collection.
type EnvironmentSettings struct {
	NumAgents            *int  `yaml:"num_agents" json:"num_agents" mapstructure:"num_agents"`
	RolloutThreads       int   `yaml:"n_rollout_threads" json:"n_rollout_threads" mapstructure:"n_rollout_threads"`
	EvalRolloutThreads   int   `yaml:"n_eval_rollout_threads" json:"n_eval_rollout_threads" mapstructure:"n_eval_rollout_threads"`
	NumEnvSteps          int64 `yaml:"num_env_steps" json:"num_env_steps" mapstructure:"num_env_steps"`
	EpisodeLength        int   `yaml:"episode_length" json:"episode_length" mapstructure:"episode_length"`
	UseObsInsteadOfState bool  `yaml:"use_obs_instead_of_state" json:"use_obs_instead_of_state" mapstructure:"use_obs_instead_of_state"`
	StackedFrames        int   `yaml:"stacked_frames" json:"stacked_frames" mapstructure:"stacked_frames"`
	UseStackedFrames     bool  `yaml:"use_stacked_frames" json:"use_stacked_frames" mapstructure:"use_stacked_frames"`
}

// PolicySettings describes the actor and critic networks.
type PolicySettings struct {
	SharePolicy             bool    `yaml:"share_policy" json:"share_policy" mapstructure:"share_policy"`
	UseCentralizedV         bool    `yaml:"use_centralized_V" json:"use_centralized_V" mapstructure:"use_centralized_V"`
	HiddenSize              int     `yaml:"hidden_size" json:"hidden_size" mapstructure:"hidden_size"`
	LayerN                  int     `yaml:"layer_N" json:"layer_N" mapstructure:"layer_N"`
	UseReLU                 bool    `yaml:"use_ReLU" json:"use_ReLU" mapstructure:"use_ReLU"`
	UsePopArt               bool    `yaml:"use_popart" json:"use_popart" mapstructure:"use_popart"`
	UseValueNorm            bool    `yaml:"use_valuenorm" json:"use_valuenorm" mapstructure:"use_valuenorm"`
	UseFeatureNormalization bool    `yaml:"use_feature_normalization" json:"use_feature_normalization" mapstructure:"use_feature_normalization"`
	UseOrthogonal           bool    `yaml:"use_orthogonal" json:"use_orthogonal" mapstructure:"use_orthogonal"`
	Gain                    float64 `yaml:"gain" json:"gain" mapstructure:"gain"`
	UseNaiveRecurrentPolicy bool    `yaml:"use_naive_recurrent_policy" json:"use_naive_recurrent_policy" mapstructure:"use_naive_recurrent_policy"`
	UseRecurrentPolicy      bool    `yaml:"use_recurrent_policy" json:"use_recurrent_policy" mapstructure:"use_recurrent_policy"`
	RecurrentN              int     `yaml:"recurrent_N" json:"recurrent_N" mapstructure:"recurrent_N"`
	// DataChunkLength is nil when the document leaves the value empty. What an
	// empty value means is up to the trainer, so it is not defaulted here.
	DataChunkLength *int    `yaml:"data_chunk_length" json:"data_chunk_length" mapstructure:"data_chunk_length"`
	StdXCoef        float64 `yaml:"std_x_coef" json:"std_x_coef" mapstructure:"std_x_coef"`
	StdYCoef        float64 `yaml:"std_y_coef" json:"std_y_coef" mapstructure:"std_y_coef"`
}

// AlgorithmSettings holds the optimizer, advantage estimation and
// trust-region parameters.
type AlgorithmSettings struct {
	ActorLR              float64 `yaml:"actor_lr" json:"actor_lr" mapstructure:"actor_lr"`
	CriticLR             float64 `yaml:"critic_lr" json:"critic_lr" mapstructure:"critic_lr"`
	OptimizerEps         float64 `yaml:"opti_eps" json:"opti_eps" mapstructure:"opti_eps"`
	WeightDecay          float64 `yaml:"weight_decay" json:"weight_decay" mapstructure:"weight_decay"`
	PPOEpoch             int     `yaml:"ppo_epoch" json:"ppo_epoch" mapstructure:"ppo_epoch"`
	UseClippedValueLoss  bool    `yaml:"use_clipped_value_loss" json:"use_clipped_value_loss" mapstructure:"use_clipped_value_loss"`
	ClipParam            float64 `yaml:"clip_param" json:"clip_param" mapstructure:"clip_param"`
	NumMiniBatch         int     `yaml:"num_mini_batch" json:"num_mini_batch" mapstructure:"num_mini_batch"`
	EntropyCoef          float64 `yaml:"entropy_coef" json:"entropy_coef" mapstructure:"entropy_coef"`
	ValueLossCoef        float64 `yaml:"value_loss_coef" json:"value_loss_coef" mapstructure:"value_loss_coef"`
	UseMaxGradNorm       bool    `yaml:"use_max_grad_norm" json:"use_max_grad_norm" mapstructure:"use_max_grad_norm"`
	MaxGradNorm          float64 `yaml:"max_grad_norm" json:"max_grad_norm" mapstructure:"max_grad_norm"`
	UseGAE               bool    `yaml:"use_gae" json:"use_gae" mapstructure:"use_gae"`
	Gamma                float64 `yaml:"gamma" json:"gamma" mapstructure:"gamma"`
	GAELambda            float64 `yaml:"gae_lambda" json:"gae_lambda" mapstructure:"gae_lambda"`
	UseProperTimeLimits  bool    `yaml:"use_proper_time_limits" json:"use_proper_time_limits" mapstructure:"use_proper_time_limits"`
	UseHuberLoss         bool    `yaml:"use_huber_loss" json:"use_huber_loss" mapstructure:"use_huber_loss"`
	UseValueActiveMasks  bool    `yaml:"use_value_active_masks" json:"use_value_active_masks" mapstructure:"use_value_active_masks"`
	UsePolicyActiveMasks bool    `yaml:"use_policy_active_masks" json:"use_policy_active_masks" mapstructure:"use_policy_active_masks"`
	HuberDelta           float64 `yaml:"huber_delta" json:"huber_delta" mapstructure:"huber_delta"`
	UseLinearLRDecay     bool    `yaml:"use_linear_lr_decay" json:"use_linear_lr_decay" mapstructure:"use_linear_lr_decay"`

	KLThreshold        float64 `yaml:"kl_threshold" json:"kl_threshold" mapstructure:"kl_threshold"`
	SafetyBound        float64 `yaml:"safety_bound" json:"safety_bound" mapstructure:"safety_bound"`
	SafetyGamma        float64 `yaml:"safety_gamma" json:"safety_gamma" mapstructure:"safety_gamma"`
	LineSearchFraction float64 `yaml:"line_search_fraction" json:"line_search_fraction" mapstructure:"line_search_fraction"`
	LineSearchSteps    int     `yaml:"ls_step" json:"ls_step" mapstructure:"ls_step"`
	AcceptRatio        float64 `yaml:"accept_ratio" json:"accept_ratio" mapstructure:"accept_ratio"`
	EPS                float64 `yaml:"EPS" json:"EPS" mapstructure:"EPS"`
	FractionCoef       float64 `yaml:"fraction_coef" json:"fraction_coef" mapstructure:"fraction_coef"`
	GStepDirCoef       float64 `yaml:"g_step_dir_coef" json:"g_step_dir_coef" mapstructure:"g_step_dir_coef"`
	BStepDirCoef       float64 `yaml:"b_step_dir_coef" json:"b_step_dir_coef" mapstructure:"b_step_dir_coef"`
}
