// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, decoding into
// the HCL-specific schema and translating that schema into the
// format-agnostic config model.
//
// Settings expressions are evaluated with an env() function and an env
// object exposing the process environment, so paths can be written as
// "${env("UGII_CAM_POST_DIR")}/template_post.dat".
package hcl
