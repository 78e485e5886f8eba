//go:build !windows

package progresso

import (
	"github.com/google/renameio/v2"
)

// writeArtifact replaces path atomically: data goes to a temporary file in
// the same directory which is then renamed over path.
func writeArtifact(path string, data []byte) error {
	return renameio.WriteFile(path, data, FileMode)
}
