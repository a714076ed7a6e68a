// Package tables registers the accident table kinds with the core registry.
// Import this package to ensure all table kinds are registered.
package tables

// This file exists to provide a single import point.
// Each table file uses init() to register its tables.
