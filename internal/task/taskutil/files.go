package taskutil

import (
	"context"

	"github.com/tpodg/serverprep/internal/host"
)

// FileDiffers reports whether path is missing or holds something other than
// content.
func FileDiffers(ctx context.Context, files host.FileSystem, path, content string) (bool, error) {
	current, exists, err := files.ReadFile(ctx, path)
	if err != nil {
		return false, err
	}
	return !exists || current != content, nil
}
