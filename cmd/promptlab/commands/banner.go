package commands

import (
	"fmt"

	"github.com/promptlab/promptlab/logger"
	"github.com/promptlab/promptlab/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity int, dbPath string) {
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔═══════════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                               ║\n")
	fmt.Printf("   ║   ██████  ██████   ██████  ███    ███ ██████  ║\n")
	fmt.Printf("   ║   ██   ██ ██   ██ ██    ██ ████  ████ ██   ██ ║\n")
	fmt.Printf("   ║   ██████  ██████  ██    ██ ██ ████ ██ ██████  ║\n")
	fmt.Printf("   ║   ██      ██   ██ ██    ██ ██  ██  ██ ██      ║\n")
	fmt.Printf("   ║   ██      ██   ██  ██████  ██      ██ ██      ║\n")
	fmt.Printf("   ║                                               ║\n")
	fmt.Printf("   ║           L  A  B  O  R  A  T  O  R  Y        ║\n")
	fmt.Printf("   ║                                               ║\n")
	fmt.Printf("   ╚═══════════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ PromptLab Info ────────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:   %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Built:     %s\n", green, reset, versionInfo.BuildTime)
	fmt.Printf("%s│%s Verbosity: %s\n", green, reset, logger.LevelName(verbosity))
	if dbPath != "" {
		fmt.Printf("%s│%s Database:  %s\n", green, reset, dbPath)
	}
	fmt.Printf("%s└─────────────────────────────────────────────────┘%s\n", green, reset)

	fmt.Printf("\n%s%s✨ Refine, test, and save prompts from the web UI%s\n", yellow, bold, reset)
	fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
}
