package cli

import (
	"github.com/roach88/symtab/internal/manifest"
)

// manifestPaths expands args, or the configured manifest patterns when no
// args are given.
func (o *RootOptions) manifestPaths(args []string) ([]string, error) {
	patterns := args
	if len(patterns) == 0 {
		patterns = o.config().Manifests
	}
	return manifest.Match(patterns)
}
