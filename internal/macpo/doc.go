// Package macpo turns a resolved hyperparameter config into the typed Settings
// a MACPO trainer consumes, and reports missing or malformed settings.
package macpo
