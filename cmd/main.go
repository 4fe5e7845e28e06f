// FilePath: cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/config"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/server"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting IoT Dashboard Server v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"    ____      ______   ____             __  ",
		"   /  _/___  /_  __/  / __ \\____ ______/ /_ ",
		"   / // __ \\  / /    / / / / __ `/ ___/ __ \\",
		" _/ // /_/ / / /    / /_/ / /_/ (__  ) / / /",
		"/___/\\____/ /_/    /_____/\\__,_/____/_/ /_/ ",
		"............................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
