//go:build windows

package progresso

import (
	"os"
)

// writeArtifact truncates and rewrites path. renameio has no Windows support,
// so a crash in the middle of this write can leave a truncated file.
func writeArtifact(path string, data []byte) error {
	return os.WriteFile(path, data, FileMode)
}
