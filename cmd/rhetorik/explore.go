package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OFFIS-RIT/rhetorik/internal/tui"
	"github.com/OFFIS-RIT/rhetorik/internal/util"
	"github.com/OFFIS-RIT/rhetorik/pkg/interaction"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger/console"

	tea "github.com/charmbracelet/bubbletea"
)

func runExplore() {
	fs := flag.NewFlagSet("explore", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	initLogger()

	// the alternate screen owns the terminal, logs go to a file
	path := util.GetEnvString("RHETORIK_LOG_FILE", "")
	if path == "" {
		path = filepath.Join(dataDir(), "rhetorik.log")
	}
	fileLogger, f, err := console.NewFileLogger(path, util.GetEnvBool("DEBUG", false))
	if err != nil {
		logger.Fatal("Could not open log file", "path", path, "err", err)
	}
	defer f.Close()
	logger.Init(fileLogger)

	ctx, stop := signalContext()
	defer stop()

	pipeline, c, err := newPipeline(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	ticks := &tui.TickForwarder{}
	session := interaction.NewSession(interaction.WithOnTick(ticks.Tick))
	defer session.Close()

	program := tea.NewProgram(tui.NewApp(tui.NewCommands(ctx, pipeline, session)), tea.WithAltScreen(), tea.WithContext(ctx))
	ticks.Attach(program)

	logger.Info("[Explorer] Started", "log", path)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		logger.Error("[Explorer] Program failed", "err", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}
