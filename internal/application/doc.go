// Package application provides application initialization and dependency wiring.
// It loads the hyperparameter document into storage, builds handlers, routers
// and the HTTP server, and starts the optional document watcher, keeping the
// main package focused on CLI parsing and orchestration.
package application
