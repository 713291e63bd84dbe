// Package checksum prints content digests for a single file.
package checksum

import (
	"fmt"
	"io"

	"github.com/pkovacs/cloudkeeper/pkg/fileops"
)

// Report computes the supported digests of path and writes them to out, one
// per line, in a fixed order.
func Report(path string, out io.Writer) error {
	sums, err := fileops.ComputeChecksums(path)
	if err != nil {
		return fmt.Errorf("unable to checksum %s: %w", path, err)
	}

	fmt.Fprintf(out, "MD5:    %s\n", sums.MD5)
	fmt.Fprintf(out, "SHA256: %s\n", sums.SHA256)
	fmt.Fprintf(out, "SHA512: %s\n", sums.SHA512)

	return nil
}
