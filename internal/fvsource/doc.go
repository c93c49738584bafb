// Package fvsource reads firmware images from the host file system.
//
// Images may be stored raw or compressed with zstd (".zst") or gzip (".gz").
// Volumes that the hand-off list describes by base address are laid out in a
// sparse Memory image, which the core reads through io.ReaderAt.
package fvsource
