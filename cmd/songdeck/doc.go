// Package main hosts the songdeck CLI entrypoint and command graph.
//
// The Cobra command tree reads pasted track links, runs the deck builder, and
// reports unresolved and low-confidence tracks. Configuration loading and
// logger setup live here so subcommands only translate flags into config
// overrides.
package main
