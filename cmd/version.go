package cmd

import (
	"fmt"
	"os"
)

// Version information (injected at build time via ldflags).
var (
	Version   = "development"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// runVersion prints version and environment information.
func runVersion() {
	fmt.Printf("askphys %s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)

	key := os.Getenv("GEMINI_API_KEY")
	if key != "" && len(key) > 8 {
		fmt.Printf("GEMINI_API_KEY: %s...%s (configured)\n", key[:4], key[len(key)-4:])
	} else if key != "" {
		fmt.Println("GEMINI_API_KEY: configured")
	} else {
		fmt.Println("GEMINI_API_KEY: not set")
	}
}
