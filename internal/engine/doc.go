// Package engine selects the post engine named by the settings. The engines
// themselves live in subpackages: socketio talks to a remote post server,
// command runs a local executable.
package engine
