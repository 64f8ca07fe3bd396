// Package batch postprocesses whole programs with several machines at once.
//
// Starting from a selected group, every direct child group is treated as a
// program and posted with each target of a profile ("3x", "4x", "5x"). In
// "auto" mode the profile is inferred from the program name. Output files are
// named after the program's short name (text before the first underscore)
// plus the target's extension.
package batch
