package mods

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml"

	"sable/common"
)

// tomlModuleFile represents the module file as it is encoded in TOML.
type tomlModuleFile struct {
	Module *tomlModule `toml:"module"`
}

// tomlModule represents a Sable module as it is encoded in TOML.
type tomlModule struct {
	Name            string         `toml:"name"`
	RootFile        string         `toml:"root-file"`
	LocalImportDirs []string       `toml:"local-import-dirs,omitempty"`
	Version         string         `toml:"sable-version"`
	BuildProfiles   []*tomlProfile `toml:"profiles"`
}

// tomlProfile represents a build profile as it is encoded in TOML.
type tomlProfile struct {
	Name        string   `toml:"name"`
	TargetOS    string   `toml:"target-os"`
	TargetArch  string   `toml:"target-arch"`
	Debug       bool     `toml:"debug"`
	OutputPath  string   `toml:"output"`
	Format      string   `toml:"format"`
	DynamicLibs []string `toml:"dynamic-libs,omitempty"`
	StaticLibs  []string `toml:"static-libs,omitempty"`
	DefaultProf bool     `toml:"default"`
}

// osNames maps TOML OS name strings to enumerated OS values.
var osNames = map[string]int{
	"linux":   OSLinux,
	"windows": OSWindows,
	"darwin":  OSDarwin,
}

// archNames maps TOML arch name strings to enumerated arch values.
var archNames = map[string]int{
	"amd64": ArchAmd64,
	"arm64": ArchArm64,
}

// formatNames maps TOML format name strings to enumerated output formats.
var formatNames = map[string]int{
	"bin":  FormatBin,
	"obj":  FormatObj,
	"llvm": FormatLLVM,
}

// LoadModule loads and validates a module, selecting a build profile.  `path`
// is the path to the module directory.  `selectedProfile` may be empty, in
// which case the default profile is chosen.
func LoadModule(path, selectedProfile string, profile *BuildProfile) (*SableModule, error) {
	buff, err := os.ReadFile(filepath.Join(path, common.SableModuleFileName))
	if err != nil {
		return nil, err
	}

	tmf := &tomlModuleFile{}
	if err := toml.Unmarshal(buff, tmf); err != nil {
		return nil, err
	}

	if tmf.Module == nil {
		return nil, fmt.Errorf("missing [module] table in module at %s", path)
	}

	mod := &SableModule{
		ModuleRoot:      path,
		Name:            tmf.Module.Name,
		RootFile:        tmf.Module.RootFile,
		LocalImportDirs: tmf.Module.LocalImportDirs,
	}

	if err := validateModule(mod, tmf.Module); err != nil {
		return nil, err
	}

	if err := selectProfile(mod, tmf.Module, selectedProfile, profile); err != nil {
		return nil, err
	}

	return mod, nil
}

// validateModule checks that the top-level module contents are valid.
func validateModule(mod *SableModule, tm *tomlModule) error {
	if tm.Name == "" {
		return fmt.Errorf("missing module name for module at %s", mod.ModuleRoot)
	}

	if !IsValidIdentifier(tm.Name) {
		return errors.New("module name must be a valid identifier")
	}

	if tm.RootFile == "" {
		mod.RootFile = tm.Name + common.SableFileExt
	}

	return nil
}

// selectProfile picks and converts the build profile matching the selection.
func selectProfile(mod *SableModule, tm *tomlModule, selectedProfile string, profile *BuildProfile) error {
	if len(tm.BuildProfiles) == 0 {
		// No profiles: build with host defaults.
		*profile = defaultProfile(mod)
		return nil
	}

	for _, prof := range tm.BuildProfiles {
		if (selectedProfile != "" && prof.Name == selectedProfile) ||
			(selectedProfile == "" && prof.DefaultProf) {

			converted, err := convertProfile(prof)
			if err != nil {
				return fmt.Errorf("%s in module %s", err.Error(), tm.Name)
			}

			*profile = *converted
			return nil
		}
	}

	if selectedProfile != "" {
		return fmt.Errorf("module `%s` has no profile `%s`", tm.Name, selectedProfile)
	}

	return fmt.Errorf("module `%s` does not specify a default profile; `--profile` argument is required", tm.Name)
}

// convertProfile converts a TOML profile to a build profile.
func convertProfile(prof *tomlProfile) (*BuildProfile, error) {
	targetOS, ok := osNames[prof.TargetOS]
	if !ok {
		return nil, fmt.Errorf("unknown target os `%s`", prof.TargetOS)
	}

	targetArch, ok := archNames[prof.TargetArch]
	if !ok {
		return nil, fmt.Errorf("unknown target arch `%s`", prof.TargetArch)
	}

	format, ok := formatNames[prof.Format]
	if !ok {
		return nil, fmt.Errorf("unknown output format `%s`", prof.Format)
	}

	if prof.OutputPath == "" {
		return nil, errors.New("profile missing output path")
	}

	return &BuildProfile{
		Debug:        prof.Debug,
		TargetOS:     targetOS,
		TargetArch:   targetArch,
		OutputPath:   prof.OutputPath,
		OutputFormat: format,
		DynamicLibs:  prof.DynamicLibs,
		StaticLibs:   prof.StaticLibs,
	}, nil
}

// defaultProfile builds the host-default profile for a module.
func defaultProfile(mod *SableModule) BuildProfile {
	targetOS := OSLinux
	switch runtime.GOOS {
	case "windows":
		targetOS = OSWindows
	case "darwin":
		targetOS = OSDarwin
	}

	return BuildProfile{
		Debug:        true,
		TargetOS:     targetOS,
		TargetArch:   ArchAmd64,
		OutputPath:   filepath.Join(mod.ModuleRoot, "out"),
		OutputFormat: FormatBin,
	}
}
