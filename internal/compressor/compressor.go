// Package compressor packs comparison artifacts into a single lz4
// compressed tar stream for one-click download.
package compressor

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
)

// Bundle writes files into dst as a tar archive compressed with lz4.
// Entries are stored under their base names.
func Bundle(dst string, files ...string) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}

	zw := lz4.NewWriter(out)
	tw := tar.NewWriter(zw)
	for _, path := range files {
		if err := addFile(tw, path); err != nil {
			out.Close()
			return err
		}
	}
	if err := tw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("compression failed: %w", err)
	}
	return out.Close()
}

func addFile(tw *tar.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to build header for %s: %w", path, err)
	}
	hdr.Name = filepath.Base(path)
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", path, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to add %s: %w", path, err)
	}
	return nil
}

// ReadBundle decompresses a bundle and returns its entries by name.
func ReadBundle(src string) (map[string][]byte, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer f.Close()

	out := make(map[string][]byte)
	tr := tar.NewReader(lz4.NewReader(f))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decompression failed: %w", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", hdr.Name, err)
		}
		out[hdr.Name] = data
	}
}
