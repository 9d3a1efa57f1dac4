// Package config loads the service's runtime configuration from multiple sources
// (YAML files, environment variables, CLI flags) with precedence: CLI flags >
// YAML config > Environment variables > Defaults. The hyperparameter document
// itself is not configuration; only its path and the scenario to select live here.
package config
