package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"

	"sable/common"
	"sable/mods"
	"sable/report"
)

// Execute runs the main `sablec` application.
func Execute() {
	// Compilation cannot proceed without the sable path.
	if !initSablePath() {
		return
	}

	// Set up the argument parser and all its extended commands and arguments.
	cli := olive.NewCLI("sablec", "sablec is a tool for building Sable projects", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false,
		[]string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "compile source code", true)
	buildCmd.AddPrimaryArg("module-path", "the path to the module to build", true)
	buildCmd.AddStringArg("profile", "p", "the name of the profile to build", false)

	modCmd := cli.AddSubcommand("mod", "manage modules", true)
	modInitCmd := modCmd.AddSubcommand("init", "initialize a module", true)
	modInitCmd.AddPrimaryArg("module-name", "the name of the new module", true)

	cli.AddSubcommand("version", "print the Sable version", false)

	// Run the argument parser.
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.PrintErrorMessage("CLI Usage Error", err)
		return
	}

	// Process the inputed command line.
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		execBuildCommand(subResult, result.Arguments["loglevel"].(string))
	case "mod":
		execModCommand(subResult)
	case "version":
		report.PrintInfoMessage("Sable Version", common.SableVersion)
	}
}

// execBuildCommand executes the build subcommand and handles all errors.
func execBuildCommand(result *olive.ArgParseResult, loglevel string) {
	moduleRelPath, _ := result.PrimaryArg()

	modulePath, err := filepath.Abs(moduleRelPath)
	if err != nil {
		report.PrintErrorMessage("Path Error", err)
		return
	}

	selectedProfile := ""
	if profArgVal, ok := result.Arguments["profile"]; ok {
		selectedProfile = profArgVal.(string)
	}

	profile := &mods.BuildProfile{}
	mod, err := mods.LoadModule(modulePath, selectedProfile, profile)
	if err != nil {
		report.PrintErrorMessage("Module Load Error", err)
		return
	}

	rep := report.NewReporter(logLevelFromName(loglevel))

	c := NewCompiler(mod, profile, rep)
	c.Compile()
}

// execModCommand executes the `mod` subcommand and its subcommands.
func execModCommand(result *olive.ArgParseResult) {
	subcmdName, subResult, _ := result.Subcommand()

	workDir, err := os.Getwd()
	if err != nil {
		report.PrintErrorMessage("Path Error", err)
		return
	}

	switch subcmdName {
	case "init":
		modName, _ := subResult.PrimaryArg()
		if err := mods.InitModule(modName, workDir); err != nil {
			report.PrintErrorMessage("Module Init Error", err)
		}
	}
}

// logLevelFromName converts a log level name to its enumerated value.
func logLevelFromName(name string) int {
	switch name {
	case "silent":
		return report.LogLevelSilent
	case "error":
		return report.LogLevelError
	case "warn":
		return report.LogLevelWarn
	default:
		// Everything else (including invalid log levels) defaults to verbose.
		return report.LogLevelVerbose
	}
}

// -----------------------------------------------------------------------------

// initSablePath checks for a valid sable path and initializes its global
// value.
func initSablePath() bool {
	sablePath, ok := os.LookupEnv("SABLE_PATH")
	if !ok {
		report.PrintErrorMessage("Config Error", errors.New("missing SABLE_PATH environment variable"))
		return false
	}

	finfo, err := os.Stat(sablePath)
	if err != nil {
		report.PrintErrorMessage("Config Error", fmt.Errorf("error loading sable path: %s", err.Error()))
		return false
	}

	if !finfo.IsDir() {
		report.PrintErrorMessage("Config Error", errors.New("error loading sable path: must point to a directory"))
		return false
	}

	common.SablePath = sablePath
	return true
}
