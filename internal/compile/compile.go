// Package compile turns markdown files into HTML with link cards expanded.
package compile

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"go.uber.org/zap"

	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/internal/markdown"
)

// FrontMatter is the part of a document's YAML header this package reads.
type FrontMatter struct {
	Title    string `yaml:"title"`
	LinkCard struct {
		Target      string `yaml:"target"`
		ClassPrefix string `yaml:"class_prefix"`
	} `yaml:"linkcard"`
}

// Compiler renders documents one at a time, in order.
type Compiler struct {
	converter *markdown.Converter
	logger    *zap.Logger
}

func New(converter *markdown.Converter, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{converter: converter, logger: logger}
}

// Render strips front matter from source and converts the body, applying the
// document's linkcard overrides.
func (c *Compiler) Render(ctx context.Context, source []byte) ([]byte, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	ctx = markdown.WithOverrides(ctx, markdown.Overrides{
		Target:      entity.Target(meta.LinkCard.Target),
		ClassPrefix: meta.LinkCard.ClassPrefix,
	})
	return c.converter.Convert(ctx, body)
}

// File compiles src into dst, creating dst's directory.
func (c *Compiler) File(ctx context.Context, src, dst string) error {
	source, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	out, err := c.Render(ctx, source)
	if err != nil {
		return fmt.Errorf("compile %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	c.logger.Info("compiled document", zap.String("source", src), zap.String("output", dst))
	return nil
}

// Tree compiles every .md file under in (or in itself when it is a file) into
// out, mirroring the directory layout. It returns the number of files written
// and stops at the first failure.
func (c *Compiler) Tree(ctx context.Context, in, out string) (int, error) {
	info, err := os.Stat(in)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", in, err)
	}
	if !info.IsDir() {
		if err := c.File(ctx, in, filepath.Join(out, htmlName(filepath.Base(in)))); err != nil {
			return 0, err
		}
		return 1, nil
	}

	count := 0
	err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(in, path)
		if err != nil {
			return err
		}
		if err := c.File(ctx, path, filepath.Join(out, htmlName(rel))); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

func htmlName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".html"
}
