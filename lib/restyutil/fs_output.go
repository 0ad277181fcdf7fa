package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FilesystemOutput writes one file per recorded HTTP exchange into its own
// directory, created fresh for every output.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput creates a new dump-* directory inside dir. Nothing that
// already exists in dir is touched.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	out, err := os.MkdirTemp(dir, "dump-"+time.Now().Format("20060102-150405")+"-*")
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: out}, nil
}

// Dir is the directory the exchanges are written to.
func (o FilesystemOutput) Dir() string {
	return o.directory
}

func (o FilesystemOutput) Write(id string, contents string) {
	name := unsafeFilename.ReplaceAllString(id, "_") + ".txt"
	err := os.WriteFile(filepath.Join(o.directory, name), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
