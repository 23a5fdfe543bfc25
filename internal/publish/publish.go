package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"inkmail-cli/internal/emailhtml"
	"inkmail-cli/internal/model"
)

type WriteOptions struct {
	// Formats lists the outputs to write: "md", "html", "json". Empty means all.
	Formats   []string
	Overwrite bool
	Pretty    bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// Write stores doc under toDir as <name>.<format> for every requested format.
func Write(doc model.Node, toDir, name string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return WriteResult{}, errors.New("missing name")
	}
	toDir = filepath.Clean(toDir)
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	formats := opt.Formats
	if len(formats) == 0 {
		formats = []string{"md", "html", "json"}
	}
	var res WriteResult
	for _, f := range formats {
		var b []byte
		switch f {
		case "md":
			b = []byte(Markdown(doc))
		case "html":
			s, err := emailhtml.Render(doc.Content)
			if err != nil {
				return res, err
			}
			b = []byte(s + "\n")
		case "json":
			j, err := doc.JSON(opt.Pretty)
			if err != nil {
				return res, err
			}
			b = append(j, '\n')
		default:
			return res, errors.New("unknown format: " + f)
		}
		path := filepath.Join(toDir, name+"."+f)
		if err := writeFile(path, b, opt.Overwrite); err != nil {
			return res, err
		}
		res.Written = append(res.Written, path)
	}
	return res, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}

// Load reads a document from disk. Markdown files (.md, .markdown) are
// parsed; anything else must be a content tree in JSON.
func Load(path string) (model.Node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return model.Node{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return ParseMarkdown(b), nil
	}
	return model.ParseDoc(b)
}
