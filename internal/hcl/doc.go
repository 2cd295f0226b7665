// Package hcl provides the HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, decoding the
// `namespace` blocks and compiling `transform` templates into functions.
package hcl
