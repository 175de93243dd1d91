package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set through -ldflags "-X github.com/MrSnakeDoc/airwave/internal/version.Version=..." at build time.
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
	GoVersion = runtime.Version()
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "" && len(s.Value) >= 7 {
				Commit = s.Value[:7]
			}
		case "vcs.time":
			if BuildDate == "" {
				BuildDate = s.Value
			}
		}
	}
	if BuildDate == "" {
		BuildDate = time.Now().UTC().Format(time.RFC3339)
	}
}

// String describes the running build in one line.
func String() string {
	commit := Commit
	if commit == "" {
		commit = "none"
	}
	return fmt.Sprintf("airwave %s (commit=%s, built=%s, go=%s)", Version, commit, BuildDate, GoVersion)
}
