package main

import (
	"os"
	"path/filepath"
	"strings"

	"inkmail-cli/internal/cli"
)

func isDocPath(s string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(s))) {
	case ".md", ".markdown", ".json":
		return true
	}
	return false
}

func rewriteDirectEditArgs(argv []string) []string {
	// Convenience: `inkmail notes.md` works like `inkmail edit notes.md`.
	//
	// Persistent flags may come first (e.g. `inkmail --glyphs ascii notes.md`), so
	// look for the first positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--format":    true,
		"--log-file":  true,
		"--log-level": true,
		"--glyphs":    true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	insertEdit := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "edit")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isDocPath(argv[i+1]) {
				return insertEdit(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}
		if isDocPath(a) {
			return insertEdit(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectEditArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
