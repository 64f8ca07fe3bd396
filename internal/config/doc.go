// Package config defines the format-agnostic configuration model for the
// application: the user Settings and the CAM session Snapshot, plus the
// Loader interface that reads them from some source.
//
// Concrete implementations of the Loader, such as for HCL, are provided in
// separate packages.
package config
