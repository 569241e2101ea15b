package handlers

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mmhmddd/linah-store-server/internal/config"
)

// safeDeleteUpload removes a stored book image by its public path
// (e.g. "/uploads/<name>"), refusing anything that escapes the upload dir.
func safeDeleteUpload(relPath string) error {
	trimmed := strings.TrimSpace(relPath)
	if trimmed == "" {
		return nil
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, "/"))
	cleanRel = strings.TrimPrefix(cleanRel, "/")

	if !strings.HasPrefix(cleanRel, "uploads/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", relPath)
	}

	cleanBase := filepath.Clean(config.AppEnv.UploadDir)
	name := strings.TrimPrefix(cleanRel, "uploads/")
	targetPath := filepath.Join(cleanBase, filepath.FromSlash(name))
	cleanTarget := filepath.Clean(targetPath)
	if cleanTarget != cleanBase && !strings.HasPrefix(cleanTarget, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload dir: %s", relPath)
	}

	if err := os.Remove(cleanTarget); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return nil
}
