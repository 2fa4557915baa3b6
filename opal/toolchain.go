package opal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// runtimeStub is the C support code linked into every executable. It
// defines the helpers the generated IR declares.
const runtimeStub = `#include <stdio.h>

static char int_buffer[32];

char *int_to_string(int value) {
    snprintf(int_buffer, sizeof(int_buffer), "%d", value);
    return int_buffer;
}
`

// BuildExecutable compiles source to a native executable at outputPath.
// The textual IR is kept next to the executable as <outputPath>.ll; the
// intermediate object files are removed. Returns the path of the produced
// executable.
//
// Requires clang to assemble the IR and a system C compiler to link.
func BuildExecutable(ctx context.Context, source, outputPath string) (string, error) {
	cg := NewCodegen()
	module, err := cg.CompileSource(source)
	if err != nil {
		return "", err
	}

	irPath := outputPath + ".ll"
	if err := os.WriteFile(irPath, []byte(module.String()), 0o644); err != nil {
		return "", fmt.Errorf("write IR: %w", err)
	}

	objPath := outputPath + ".o"
	if err := runTool(ctx, "clang", "-O2", "-c", irPath, "-o", objPath); err != nil {
		return "", err
	}
	defer os.Remove(objPath)

	stubDir, err := os.MkdirTemp("", "opal-runtime-")
	if err != nil {
		return "", fmt.Errorf("create runtime dir: %w", err)
	}
	defer os.RemoveAll(stubDir)

	stubPath := filepath.Join(stubDir, "runtime.c")
	if err := os.WriteFile(stubPath, []byte(runtimeStub), 0o644); err != nil {
		return "", fmt.Errorf("write runtime stub: %w", err)
	}

	if err := runTool(ctx, systemLinker(), objPath, stubPath, "-o", outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// BuildExecutableFromFile reads a script and builds it. When outputPath is
// empty the executable lands next to the script, named after it without
// the extension.
func BuildExecutableFromFile(ctx context.Context, scriptPath, outputPath string) (string, error) {
	input, err := os.ReadFile(scriptPath)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	if outputPath == "" {
		base := filepath.Base(scriptPath)
		if ext := filepath.Ext(base); ext != "" {
			base = base[:len(base)-len(ext)]
		}
		outputPath = filepath.Join(filepath.Dir(scriptPath), base)
	}
	return BuildExecutable(ctx, string(input), outputPath)
}

func systemLinker() string {
	if runtime.GOOS == "windows" {
		return "gcc"
	}
	return "cc"
}

func runTool(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s %v: %w\n%s", name, args, err, out)
		}
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	return nil
}
