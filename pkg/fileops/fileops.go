// Package fileops provides the file primitives the reconcile engine is built
// on: copying, existence polling and streaming checksums.
package fileops

import (
	"crypto/md5"  // #nosec G501 - checksum output, not authentication
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Exported constants.
const (
	// BufferSize is the size of the buffer used for file copy operations (32KB)
	BufferSize = 32 * 1024
	// DefaultDirPermissions is the default permission mode for created directories
	DefaultDirPermissions = 0o750
	// VisibilityPollInterval is how often Exists is re-checked while waiting
	// for a copy to land
	VisibilityPollInterval = 200 * time.Millisecond
)

// Exported variables.
var (
	ErrCopyCancelled = errors.New("copy cancelled")
	ErrNeverVisible  = errors.New("destination file never became visible")
)

// Checksums holds the digests of one file, hex encoded.
type Checksums struct {
	MD5    string
	SHA256 string
	SHA512 string
}

// CopyFile copies a file from src to dst, creating parent directories and
// preserving the modification time. If cancel is closed mid-copy the partial
// destination file is removed and ErrCopyCancelled is returned.
func CopyFile(src, dst string, cancel <-chan struct{}) (int64, error) {
	sourceFile, err := os.Open(src) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", src, err)
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	dstDir := filepath.Dir(dst)

	err = os.MkdirAll(dstDir, DefaultDirPermissions)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
	}

	destFile, err := os.Create(dst) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	copyCompleted := false

	defer func() {
		_ = destFile.Close()
		// If the copy was cancelled or failed, don't leave a partial file
		if !copyCompleted {
			_ = os.Remove(dst)
		}
	}()

	written, err := copyLoop(sourceFile, destFile, cancel)
	if err != nil {
		return written, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	err = destFile.Close()
	if err != nil {
		return written, fmt.Errorf("failed to close destination file %s: %w", dst, err)
	}

	// Preserve modification time so renamed-candidate matching keeps working
	// on later runs
	err = os.Chtimes(dst, sourceInfo.ModTime(), sourceInfo.ModTime())
	if err != nil {
		return written, fmt.Errorf("failed to preserve modification time for %s: %w", dst, err)
	}

	copyCompleted = true

	return written, nil
}

// Exists reports whether a regular file exists at the path.
func Exists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

// WaitVisible polls for the path to exist, up to the timeout. It absorbs
// destination filesystems that make fresh writes visible asynchronously.
// Returns ErrNeverVisible when the timeout elapses first.
func WaitVisible(path string, timeout time.Duration, cancel <-chan struct{}) error {
	deadline := time.Now().Add(timeout)

	for {
		if Exists(path) {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrNeverVisible, path)
		}

		select {
		case <-cancel:
			return ErrCopyCancelled
		case <-time.After(VisibilityPollInterval):
		}
	}
}

// ComputeChecksums streams the file once through MD5, SHA256 and SHA512.
func ComputeChecksums(path string) (*Checksums, error) {
	file, err := os.Open(path) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	md5Hash := md5.New() // #nosec G401 - checksum output, not authentication
	sha256Hash := sha256.New()
	sha512Hash := sha512.New()

	_, err = io.Copy(io.MultiWriter(md5Hash, sha256Hash, sha512Hash), file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s for hashing: %w", path, err)
	}

	return &Checksums{
		MD5:    hex.EncodeToString(md5Hash.Sum(nil)),
		SHA256: hex.EncodeToString(sha256Hash.Sum(nil)),
		SHA512: hex.EncodeToString(sha512Hash.Sum(nil)),
	}, nil
}

// checkCancellation checks if the copy operation has been cancelled.
func checkCancellation(cancel <-chan struct{}) error {
	if cancel == nil {
		return nil
	}

	select {
	case <-cancel:
		return ErrCopyCancelled
	default:
		return nil
	}
}

// copyLoop performs the buffered copy with cancellation checks.
func copyLoop(sourceFile, destFile *os.File, cancel <-chan struct{}) (int64, error) {
	var written int64

	buf := make([]byte, BufferSize)

	for {
		err := checkCancellation(cancel)
		if err != nil {
			return written, err
		}

		nr, err := sourceFile.Read(buf) //nolint:varnamelen // nr is idiomatic for bytes read
		if nr > 0 {
			nw, werr := destFile.Write(buf[0:nr]) //nolint:varnamelen // nw is idiomatic for bytes written
			if werr != nil {
				return written, fmt.Errorf("failed to write to destination: %w", werr)
			}

			if nr != nw {
				return written, fmt.Errorf("short write: %w", io.ErrShortWrite)
			}

			written += int64(nw)
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return written, fmt.Errorf("failed to read from source: %w", err)
		}
	}

	return written, nil
}
