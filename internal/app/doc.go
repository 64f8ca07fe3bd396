// Package app wires settings, the CAM session, the postprocessor registry and
// the post engine into the operations the command line exposes: structure
// reports, the postprocessor listing, single posts and batch runs. It is
// decoupled from any specific entrypoint.
package app
