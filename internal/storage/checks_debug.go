//go:build !dxe_release

package storage

const accessChecks = true
