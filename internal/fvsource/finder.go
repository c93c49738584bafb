package fvsource

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// VolumeSuffixes are the file names FindVolumes picks up.
var VolumeSuffixes = []string{".fv", ".fv.zst", ".fv.gz", ".fd"}

// FindVolumes walks root and returns every firmware volume file in lexical
// order. A root that is a file is returned as is.
func FindVolumes(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if path == root || hasVolumeSuffix(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func hasVolumeSuffix(name string) bool {
	name = strings.ToLower(name)
	for _, s := range VolumeSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
