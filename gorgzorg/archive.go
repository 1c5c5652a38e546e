package gorgzorg

import (
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// ArchiveMode selects the client-side archiving applied before a send.
type ArchiveMode int

const (
	// ArchiveNone sends the source as-is.
	ArchiveNone ArchiveMode = iota

	// ArchiveTar collapses the source into a plain tar artifact.
	ArchiveTar

	// ArchiveTarGzip collapses the source into a gzip-compressed tar
	// artifact.
	ArchiveTarGzip
)

// CreateArchive invokes the external tar binary to collapse path (or, when
// pattern is non-empty, every entry under path matching the pattern) into a
// single temporary artifact. It returns the artifact's path; the caller owns
// the file and must delete it on every exit path.
//
// Archiving is deliberately an external-command boundary: the artifact must
// be readable by a stock tar on the other side.
func CreateArchive(path string, pattern string, mode ArchiveMode, logger Logger) (string, error) {
	if logger == nil {
		logger = NoopLogger{}
	}

	out := archiveName(mode == ArchiveTarGzip)

	args := []string{"-cf", out}
	if mode == ArchiveTarGzip {
		args = []string{"-czf", out}
	}

	if pattern != "" {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return "", WrapErr(ErrInvalidArgs, err, "bad glob pattern "+pattern)
		}
		if len(matches) == 0 {
			return "", NewError(ErrArchive, "no files match "+pattern)
		}
		args = append(args, matches...)
	} else {
		args = append(args, path)
	}

	logger.Debug("archiving: tar %v", args)
	cmd := exec.Command("tar", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(out)
		return "", WrapErr(ErrArchive, errors.Wrapf(err, "tar: %s", output), "could not archive "+path)
	}

	return out, nil
}

// archiveName generates a collision-resistant artifact name in the system
// temp directory, e.g. gorged_1716406932451_0271.tar.gz.
func archiveName(compress bool) string {
	ext := ".tar"
	if compress {
		ext = ".tar.gz"
	}
	name := fmt.Sprintf("gorged_%d_%04d%s", time.Now().UnixMilli(), rand.Intn(10000), ext)
	return filepath.Join(os.TempDir(), name)
}
