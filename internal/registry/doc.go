// Package registry reads the catalog of installed postprocessors.
//
// The catalog is a plain text file maintained by the CAM installation (the
// template_post.dat convention): one postprocessor per line, fields
// separated by commas, '#' comments and blank lines allowed. Only the first
// two fields matter here: the display name and the path of the Tcl source,
// which usually starts with an environment placeholder such as
// ${UGII_CAM_POST_DIR}.
//
// Parsing is tolerant. Malformed lines are skipped and recorded, never
// fatal. A file that cannot be read produces a Catalog carrying a single
// human-readable diagnostic instead of an error return.
//
// Loading is memoized by Cache: the first result, success or failure, is
// kept until Reset is called.
package registry
