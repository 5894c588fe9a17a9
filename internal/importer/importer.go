// Package importer bulk-loads a directory of markdown files as note records.
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"notesync/internal/contextutil"
	"notesync/internal/markup"
	"notesync/internal/storage"
)

// RecordWriter stores records. storage.RecordStore satisfies it.
type RecordWriter interface {
	Upsert(ctx context.Context, rec *storage.Record) (*storage.Record, error)
}

// ScannedFile is a markdown file found under the import root.
type ScannedFile struct {
	RelPath string // Relative path from the root with forward slashes (e.g. "projects/meeting-notes.md")
	AbsPath string
}

// Result summarizes an import run.
type Result struct {
	Scanned  int
	Imported int
	Failed   int
}

// Importer turns markdown files into note records for one user.
type Importer struct {
	records  RecordWriter
	tenantID string
	userID   string
}

// New creates an Importer writing records owned by tenantID and userID.
func New(records RecordWriter, tenantID, userID string) *Importer {
	return &Importer{records: records, tenantID: tenantID, userID: userID}
}

// Scan walks root and returns all markdown files. Hidden directories (.obsidian, .git) are skipped.
func Scan(ctx context.Context, root string) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		files = append(files, ScannedFile{RelPath: filepath.ToSlash(relPath), AbsPath: path})
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return files, nil
}

// RecordID derives a stable record ID from a file's relative path, so importing the
// same directory again updates the existing records.
func RecordID(relPath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file:///"+relPath)).String()
}

// Import scans root and upserts one markdown note per file. Failures of single files are
// logged and counted; the run continues.
func (im *Importer) Import(ctx context.Context, root string) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := Scan(ctx, root)
	if err != nil {
		return Result{}, err
	}

	res := Result{Scanned: len(files)}
	for _, f := range files {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		if err := im.importFile(ctx, f); err != nil {
			logger.WarnContext(ctx, "failed to import file", "rel_path", f.RelPath, "error", err)
			res.Failed++
			continue
		}
		res.Imported++
	}

	logger.InfoContext(ctx, "import completed",
		"root", root, "scanned", res.Scanned, "imported", res.Imported, "failed", res.Failed)
	return res, nil
}

func (im *Importer) importFile(ctx context.Context, f ScannedFile) error {
	content, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	_, err = im.records.Upsert(ctx, &storage.Record{
		Key: storage.Key{
			TenantID: im.tenantID,
			UserID:   im.userID,
			RecordID: RecordID(f.RelPath),
		},
		Type:   storage.RecordTypeNote,
		Title:  markup.Title(content, filepath.Base(f.RelPath)),
		Text:   string(content),
		Format: storage.FormatMarkdown,
	})
	return err
}
