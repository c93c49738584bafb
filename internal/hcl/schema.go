package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileSchema is the top-level structure of one platform description file.
type fileSchema struct {
	Core       *coreBlock        `hcl:"core,block"`
	HobList    *string           `hcl:"hob_list,optional"`
	Volumes    []*volumeBlock    `hcl:"firmware_volume,block"`
	GuidHobs   []*guidHobBlock   `hcl:"guid_hob,block"`
	Configs    []*configBlock    `hcl:"config,block"`
	Components []*componentBlock `hcl:"component,block"`
}

type coreBlock struct {
	NoDepexRequiresArch *bool    `hcl:"no_depex_requires_arch,optional"`
	Strict              *bool    `hcl:"strict,optional"`
	Untrusted           []string `hcl:"untrusted,optional"`
}

// volumeBlock is a `firmware_volume "<path>"` block. The path may name a
// directory of volumes.
type volumeBlock struct {
	Path string  `hcl:"path,label"`
	Base *string `hcl:"base,optional"`
}

// guidHobBlock carries its payload as hex, as text, or in a file.
type guidHobBlock struct {
	Name string  `hcl:"name,label"`
	Hex  *string `hcl:"hex,optional"`
	Text *string `hcl:"text,optional"`
	File *string `hcl:"file,optional"`
}

type configBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type componentBlock struct {
	Name    string `hcl:"name,label"`
	Enabled *bool  `hcl:"enabled,optional"`
}
