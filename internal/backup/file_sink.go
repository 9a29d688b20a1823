package backup

import (
	"context"

	"github.com/dmitrijs2005/archivist/internal/filex"
)

// FileSink writes backups into a local directory.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Name() string { return "file" }

// Store creates the directory when needed and writes the document there.
func (s *FileSink) Store(ctx context.Context, doc Document, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir, err := filex.EnsureDir(s.dir)
	if err != nil {
		return "", err
	}
	return filex.WriteFileAtomic(dir, FileName(doc.Timestamp), data)
}
