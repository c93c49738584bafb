// Package config defines the format-agnostic platform description: which
// firmware volumes and hand-off data to boot with, the initial values of
// module configurations, and which components are enabled.
//
// Concrete loaders, such as the HCL one in internal/hcl, translate their
// source format into Model and hand back a Converter that binds raw
// configuration bodies to module-defined Go structs.
package config
