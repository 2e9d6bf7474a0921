// Package util is a set of utility variables or methods
package util

import (
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// SupportedExt holds the lower case image extensions the frame can display
var SupportedExt = mapset.NewSet(
	".jpeg", ".jpg",
	".png",
	".gif",
)

// IsSupported reports whether the file name carries a displayable image extension
func IsSupported(name string) bool {
	return SupportedExt.Contains(strings.ToLower(filepath.Ext(name)))
}
