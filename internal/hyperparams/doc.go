// Package hyperparams loads MACPO hyperparameter documents. A document holds
// top-level scalar settings (the global defaults) and flat, named override
// blocks, one per simulation environment. Resolving a scenario copies the
// defaults and overwrites every key the scenario's block declares, producing a
// flat ResolvedConfig. Values keep the literal type they were written with:
// bool, int, float (including forms such as 1.e-8), string, or an explicit null
// for keys declared without a value.
package hyperparams
