package mods

import (
	"os"
	"path/filepath"
	"testing"

	"sable/common"
)

func TestInitAndLoadModule(t *testing.T) {
	dir := t.TempDir()

	if err := InitModule("demo", dir); err != nil {
		t.Fatalf("InitModule failed: %s", err)
	}

	if _, err := os.Stat(filepath.Join(dir, common.SableModuleFileName)); err != nil {
		t.Fatalf("module file not written: %s", err)
	}

	// Initializing twice fails.
	if err := InitModule("demo", dir); err == nil {
		t.Errorf("second InitModule succeeded")
	}

	profile := &BuildProfile{}
	mod, err := LoadModule(dir, "", profile)
	if err != nil {
		t.Fatalf("LoadModule failed: %s", err)
	}

	if mod.Name != "demo" || mod.RootFile != "demo"+common.SableFileExt {
		t.Errorf("module = %s/%s", mod.Name, mod.RootFile)
	}

	if profile.TargetOS != OSLinux || profile.OutputFormat != FormatBin || !profile.Debug {
		t.Errorf("default profile not selected: %+v", profile)
	}
}

func TestLoadModuleSelectsNamedProfile(t *testing.T) {
	dir := t.TempDir()

	modFile := `
[module]
name = "demo"
root-file = "main.sbl"
sable-version = "0.2.0"

[[module.profiles]]
name = "debug"
target-os = "linux"
target-arch = "amd64"
debug = true
output = "out/debug"
format = "llvm"
default = true

[[module.profiles]]
name = "release"
target-os = "linux"
target-arch = "amd64"
output = "out/release"
format = "bin"
dynamic-libs = ["c"]
`

	if err := os.WriteFile(filepath.Join(dir, common.SableModuleFileName), []byte(modFile), 0644); err != nil {
		t.Fatalf("write failed: %s", err)
	}

	profile := &BuildProfile{}
	if _, err := LoadModule(dir, "release", profile); err != nil {
		t.Fatalf("LoadModule failed: %s", err)
	}

	if profile.Debug || profile.OutputPath != "out/release" || len(profile.DynamicLibs) != 1 {
		t.Errorf("release profile not selected: %+v", profile)
	}

	// The default profile is chosen when no selection is given.
	if _, err := LoadModule(dir, "", profile); err != nil {
		t.Fatalf("LoadModule failed: %s", err)
	}

	if profile.OutputFormat != FormatLLVM {
		t.Errorf("default profile not selected")
	}

	// An unknown profile fails.
	if _, err := LoadModule(dir, "missing", profile); err == nil {
		t.Errorf("unknown profile selection succeeded")
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"demo", "my_mod", "A2"}
	invalid := []string{"", "2abc", "my-mod", "a b"}

	for _, name := range valid {
		if !IsValidIdentifier(name) {
			t.Errorf("%q rejected", name)
		}
	}

	for _, name := range invalid {
		if IsValidIdentifier(name) {
			t.Errorf("%q accepted", name)
		}
	}
}
