package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"sable/ast"
	"sable/cimport"
	"sable/common"
	"sable/depm"
	"sable/generate"
	"sable/mods"
	"sable/report"
	"sable/syntax"
	"sable/typing"
	"sable/walk"
)

// Compiler orchestrates one compilation session: parsing the root file and
// its transitive imports, running semantic analysis, generating the output
// module, and invoking the system tools that finish the build.
type Compiler struct {
	rootModule *mods.SableModule
	profile    *mods.BuildProfile

	rep      *report.Reporter
	interner *typing.Interner
	sizes    *typing.Sizes
	analyzer *walk.Analyzer

	// counter is the session's node creation counter, shared by every parser.
	counter uint32

	// files maps absolute paths to loaded files, deduplicating imports.
	files map[string]*depm.SableFile
}

// NewCompiler creates a compiler for the given module and build profile.
func NewCompiler(mod *mods.SableModule, profile *mods.BuildProfile, rep *report.Reporter) *Compiler {
	interner := typing.NewInterner()
	sizes := typing.NewSizes(profile.PointerBits())

	c := &Compiler{
		rootModule: mod,
		profile:    profile,
		rep:        rep,
		interner:   interner,
		sizes:      sizes,
		files:      make(map[string]*depm.SableFile),
	}

	c.analyzer = walk.NewAnalyzer(rep, interner, sizes, cimport.StubAdapter{}, &c.counter)
	return c
}

// Compile runs the full compilation pipeline.
func (c *Compiler) Compile() {
	report.ReportCompileHeader(common.SableVersion, c.targetString())

	report.ReportBeginPhase("Parsing")
	rootPath := filepath.Join(c.rootModule.ModuleRoot, c.rootModule.RootFile)
	c.loadFile(rootPath, nil, nil)
	report.ReportEndPhase(c.rep.ShouldProceed())

	if !c.rep.ShouldProceed() {
		c.finish(false)
		return
	}

	report.ReportBeginPhase("Analyzing")
	c.analyzer.Analyze()
	report.ReportEndPhase(c.rep.ShouldProceed())

	if !c.rep.ShouldProceed() {
		c.finish(false)
		return
	}

	if c.analyzer.RootExport != nil && c.analyzer.MainFn == nil {
		c.rep.ReportCompileError(rootPath, c.rootModule.RootFile, nil,
			"exported executable has no `main` function")
		c.finish(false)
		return
	}

	report.ReportBeginPhase("Generating")
	ok := c.generateOutput()
	report.ReportEndPhase(ok)

	c.finish(ok)
}

// finish flushes diagnostics and prints the closing summary.
func (c *Compiler) finish(success bool) {
	c.rep.Flush()
	report.ReportCompilationFinished(success, c.rep.ErrorCount(), c.rep.WarningCount())
}

// -----------------------------------------------------------------------------

// loadFile parses one source file and, recursively, its imports.  Import
// cycles are tolerated: a file is parsed once and later importers are only
// recorded.
func (c *Compiler) loadFile(absPath string, importer *depm.SableFile, importNode *ast.Import) *depm.SableFile {
	if file, ok := c.files[absPath]; ok {
		if importer != nil && importNode != nil {
			file.Importers = append(file.Importers, depm.ImporterRef{File: importer, Node: importNode})
		}

		return file
	}

	reprPath, err := filepath.Rel(c.rootModule.ModuleRoot, absPath)
	if err != nil {
		reprPath = absPath
	}

	src, err := os.ReadFile(absPath)
	if err != nil {
		if importer != nil {
			c.rep.ReportCompileError(importer.AbsPath, importer.ReprPath, importNode.Span(),
				"unable to import '%s': %s", importNode.Path, err.Error())
		} else {
			c.rep.ReportStdError(reprPath, err)
		}

		return nil
	}

	parser := syntax.NewParser(c.rep, absPath, reprPath, string(src), &c.counter)
	root, ok := parser.ParseFile()
	if !ok {
		return nil
	}

	file := depm.NewFile(absPath, reprPath, root)
	c.files[absPath] = file
	c.analyzer.AddFile(file)

	if importer != nil && importNode != nil {
		file.Importers = append(file.Importers, depm.ImporterRef{File: importer, Node: importNode})
	}

	// Load imports depth-first so declaration propagation sees importers in
	// a stable order.
	c.loadImports(file)

	return file
}

// loadImports resolves and loads the files a parsed file imports.
func (c *Compiler) loadImports(file *depm.SableFile) {
	for _, decl := range file.Root.Decls {
		imp, ok := decl.(*ast.Import)
		if !ok {
			continue
		}

		importPath := c.resolveImportPath(file, imp.Path)
		if importPath == "" {
			c.rep.ReportCompileError(file.AbsPath, file.ReprPath, imp.Span(),
				"unable to locate import '%s'", imp.Path)
			continue
		}

		c.loadFile(importPath, file, imp)
	}
}

// resolveImportPath searches the importing file's directory, the module root,
// and the module's local import directories for the named file.
func (c *Compiler) resolveImportPath(file *depm.SableFile, path string) string {
	if !strings.HasSuffix(path, common.SableFileExt) {
		path += common.SableFileExt
	}

	searchDirs := append(
		[]string{filepath.Dir(file.AbsPath), c.rootModule.ModuleRoot},
		c.rootModule.LocalImportDirs...,
	)

	for _, dir := range searchDirs {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			absPath, err := filepath.Abs(candidate)
			if err == nil {
				return absPath
			}
		}
	}

	return ""
}

// -----------------------------------------------------------------------------

// generateOutput lowers the analyzed session and writes the build artifacts.
func (c *Compiler) generateOutput() bool {
	gen := generate.NewGenerator(c.analyzer, c.sizes)
	mod := gen.Generate()

	outPath := c.profile.OutputPath
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		c.rep.ReportStdError(outPath, err)
		return false
	}

	llPath := outPath + ".ll"
	if err := os.WriteFile(llPath, []byte(mod.String()), 0644); err != nil {
		c.rep.ReportStdError(llPath, err)
		return false
	}

	switch c.profile.OutputFormat {
	case mods.FormatLLVM:
		return true
	case mods.FormatObj:
		return c.runTool("llc", "-filetype=obj", "-o", outPath+".o", llPath)
	default:
		objPath := outPath + ".o"
		if !c.runTool("llc", "-filetype=obj", "-o", objPath, llPath) {
			return false
		}

		linkArgs := []string{"-o", outPath, objPath}
		for _, lib := range c.linkLibraries() {
			linkArgs = append(linkArgs, "-l"+lib)
		}

		return c.runTool("cc", linkArgs...)
	}
}

// linkLibraries collects the libraries from the build profile and the root
// export's `#link` directives.
func (c *Compiler) linkLibraries() []string {
	libs := append([]string{}, c.profile.DynamicLibs...)
	libs = append(libs, c.profile.StaticLibs...)

	if c.analyzer.RootExport != nil {
		for _, dir := range c.analyzer.RootExport.Directives {
			if dir.Name == "link" {
				libs = append(libs, dir.Param)
			}
		}
	}

	return libs
}

// runTool invokes an external build tool, reporting its failure output.
func (c *Compiler) runTool(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		c.rep.ReportStdError(name, fmt.Errorf("%s failed: %s\n%s", name, err.Error(), output))
		return false
	}

	return true
}

// targetString renders the build target for the compile header.
func (c *Compiler) targetString() string {
	osName := "linux"
	switch c.profile.TargetOS {
	case mods.OSWindows:
		osName = "windows"
	case mods.OSDarwin:
		osName = "darwin"
	}

	archName := "amd64"
	if c.profile.TargetArch == mods.ArchArm64 {
		archName = "arm64"
	}

	return osName + "/" + archName
}
