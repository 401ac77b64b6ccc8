package director

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/cinematic/internal/system"
)

// GenerateSessionPath creates a timestamped session filename in dir
func GenerateSessionPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("session_%s.yaml", timestamp))
}

// FindLatestSession finds the most recent session file in dir
func FindLatestSession(dir string) (string, error) {
	return system.FindLatestFile(dir, ".yaml", ".yml")
}
