// Package app contains the core application logic. It wires the manifest,
// compiler and virtual machine into the two front-end modes (script run and
// REPL), decoupled from any specific entrypoint like a CLI.
package app
