// Package fs writes exported documents to the local filesystem.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/probdoc"
)

// Ensure Exporter implements probdoc.Exporter at compile time.
var _ probdoc.Exporter = (*Exporter)(nil)

// Exporter writes one Markdown file per record under a root directory.
// Enhanced content is written as-is; original records are rendered with the
// raw template and a link back to their source.
type Exporter struct {
	root       string
	checklists probdoc.Checklists
	signature  string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithChecklists sets the checklists used to render original records.
func WithChecklists(c probdoc.Checklists) Option {
	return func(e *Exporter) {
		e.checklists = c
	}
}

// WithSignature appends sig to rendered original records.
func WithSignature(sig string) Option {
	return func(e *Exporter) {
		e.signature = sig
	}
}

// NewExporter creates a new Exporter writing under root.
func NewExporter(root string, opts ...Option) *Exporter {
	e := &Exporter{
		root:       root,
		checklists: probdoc.DefaultChecklists(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root returns the export directory.
func (e *Exporter) Root() string {
	return e.root
}

// Export writes content to its derived path. A file that already holds the
// same body is left untouched.
func (e *Exporter) Export(ctx context.Context, content probdoc.Content, target probdoc.ExportTarget) (*probdoc.ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if content == nil {
		return nil, probdoc.Errorf(probdoc.EINVALID, "content required")
	}
	rec := content.Record()
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if target.TopicName == "" {
		return nil, probdoc.Errorf(probdoc.EINVALID, "topic name required")
	}

	body, err := e.body(content)
	if err != nil {
		return nil, err
	}

	path := probdoc.ExportPath(e.root, target, rec.Title)
	res := &probdoc.ExportResult{Path: path, Hash: ComputeHash(body)}

	if existing, err := os.ReadFile(path); err == nil && ComputeHash(string(existing)) == res.Hash {
		return res, nil
	}

	if err := writeAtomic(path, []byte(body)); err != nil {
		return nil, err
	}
	res.Changed = true
	return res, nil
}

func (e *Exporter) body(content probdoc.Content) (string, error) {
	switch c := content.(type) {
	case *probdoc.Enhanced:
		if c.Markdown != "" {
			return c.Markdown, nil
		}
	case *probdoc.Original:
	default:
		return "", probdoc.Errorf(probdoc.EINVALID, "unsupported content type %T", content)
	}
	return probdoc.Render(content.Record(), probdoc.TemplateRaw, e.checklists.For(probdoc.TemplateRaw), probdoc.RenderOptions{
		Signature:     e.signature,
		IncludeSource: true,
	})
}

// writeAtomic writes data to a temporary file beside path and renames it
// into place, so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return probdoc.WrapError(probdoc.EIO, err, "failed to create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return probdoc.WrapError(probdoc.EIO, err, "failed to create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return probdoc.WrapError(probdoc.EIO, err, "failed to write %s", path)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return probdoc.WrapError(probdoc.EIO, err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return probdoc.WrapError(probdoc.EIO, err, "failed to write %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return probdoc.WrapError(probdoc.EIO, err, "failed to move %s into place", path)
	}
	return nil
}

// ComputeHash returns the hex xxhash of content.
func ComputeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}
