package common

// SablePath is the path to the compiler directory (the parent directory to
// `modules`).  It is initialized from the SABLE_PATH environment variable.
var SablePath string = ""

// SableVersion is the current Sable version as a string.
const SableVersion string = "0.2.0"

// SableModuleFileName is the name for Sable module files.
const SableModuleFileName string = "sable-mod.toml"

// SableFileExt is the file extension for a Sable source file.
const SableFileExt string = ".sbl"
