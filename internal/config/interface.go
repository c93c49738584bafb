package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific platform description loader.
type Loader interface {
	// Load reads every description file under paths, merges them into one
	// model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter binds raw configuration bodies to Go values.
type Converter interface {
	// DecodeBody evaluates args and stores them in the fields of target, a
	// pointer to a struct. Fields are matched by their `dxe` tag. Fields
	// without a matching argument keep their current value.
	DecodeBody(ctx context.Context, target any, args map[string]hcl.Expression) error
}
