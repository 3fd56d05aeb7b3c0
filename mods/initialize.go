package mods

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"sable/common"
)

// InitModule creates a new module file in the given directory with a default
// build profile for the host.
func InitModule(name, dirPath string) error {
	if !IsValidIdentifier(name) {
		return fmt.Errorf("`%s` is not a valid module name", name)
	}

	modFilePath := filepath.Join(dirPath, common.SableModuleFileName)
	if _, err := os.Stat(modFilePath); err == nil {
		return fmt.Errorf("module already exists at %s", dirPath)
	}

	tmf := &tomlModuleFile{
		Module: &tomlModule{
			Name:     name,
			RootFile: name + common.SableFileExt,
			Version:  common.SableVersion,
			BuildProfiles: []*tomlProfile{
				{
					Name:        "debug",
					TargetOS:    "linux",
					TargetArch:  "amd64",
					Debug:       true,
					OutputPath:  "out/" + name,
					Format:      "bin",
					DefaultProf: true,
				},
			},
		},
	}

	buff, err := toml.Marshal(tmf)
	if err != nil {
		return err
	}

	return os.WriteFile(modFilePath, buff, 0644)
}
