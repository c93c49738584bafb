// Package hcl provides the HCL implementation of the config package's Loader
// and Converter. It parses platform description files, translates them into
// config.Model, and binds `config` block bodies to Go structs through cty.
package hcl
