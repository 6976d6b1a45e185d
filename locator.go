package web2pdf

import (
	"fmt"
	"os"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/mbrunel/go-web2pdf/internal/fileutil"
)

// chromeBinEnv overrides engine discovery (containerized environments).
const chromeBinEnv = "WEB2PDF_CHROME_BIN"

// resolveEnginePath locates the rendering-engine executable.
// Resolution order: explicit configured path, the WEB2PDF_CHROME_BIN
// environment variable, then the well-known install locations probed by
// rod's launcher. Fails with ErrEngineNotFound when nothing resolves.
func resolveEnginePath(configured string) (string, error) {
	if configured != "" {
		if !fileutil.FileExists(configured) {
			return "", fmt.Errorf("%w: %s", ErrEngineNotFound, configured)
		}
		return configured, nil
	}

	if bin := os.Getenv(chromeBinEnv); bin != "" {
		if !fileutil.FileExists(bin) {
			return "", fmt.Errorf("%w: $%s=%s", ErrEngineNotFound, chromeBinEnv, bin)
		}
		return bin, nil
	}

	if path, found := launcher.LookPath(); found {
		return path, nil
	}

	return "", fmt.Errorf("%w: no chrome/chromium installation detected", ErrEngineNotFound)
}
