package archive

import (
	"archive/tar"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ryanmoran/gitferry/internal"
)

// TextSuffix marks an archive wrapped in a transport-safe base64 layer.
const TextSuffix = ".txt"

// Pack archives the directory tree rooted at srcDir into destPath. When
// destPath ends in ".txt" the gzipped tar is base64-encoded so the file
// survives text-only transfer channels.
func Pack(srcDir, destPath string) error {
	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create archive %q: %w\nCheck disk space and permissions", destPath, err)
	}
	defer file.Close()

	var w io.Writer = file
	var encoder io.WriteCloser
	if strings.HasSuffix(destPath, TextSuffix) {
		encoder = base64.NewEncoder(base64.StdEncoding, file)
		w = encoder
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	if err := addTree(tw, srcDir); err != nil {
		return fmt.Errorf("failed to archive %q: %w", srcDir, err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finalize tar stream: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finalize gzip stream: %w", err)
	}
	if encoder != nil {
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to finalize base64 encoding: %w", err)
		}
	}

	return file.Close()
}

// Unpack extracts an archive created by Pack into destDir, detecting the
// optional base64 layer from the filename.
func Unpack(srcPath, destDir string) error {
	file, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open archive %q: %w", srcPath, err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(srcPath, TextSuffix) {
		r = base64.NewDecoder(base64.StdEncoding, file)
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to read archive %q: %w\nThe file may be truncated or not a migration archive", srcPath, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive entry: %w", err)
		}

		target, err := securePath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create directory for %q: %w", target, err)
			}
			if err := writeFile(target, tr, os.FileMode(header.Mode)); err != nil {
				return err
			}
		}
	}
}

// Latest returns the newest archive in dir, by the timestamp parsed from
// the filename rather than modification time, so copying files across
// the air gap cannot reorder them.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, internal.ArchivePrefix+"_*"))
	if err != nil {
		return "", fmt.Errorf("failed to glob archives in %q: %w", dir, err)
	}

	var best string
	var bestTimestamp time.Time
	for _, match := range matches {
		timestamp, ok := archiveTimestamp(filepath.Base(match))
		if !ok {
			continue
		}
		if best == "" || timestamp.After(bestTimestamp) || (timestamp.Equal(bestTimestamp) && match > best) {
			best = match
			bestTimestamp = timestamp
		}
	}

	if best == "" {
		return "", fmt.Errorf("no migration archive found in %q\nExpected a file named %s_<timestamp>.tar.gz or .tar.gz.txt", dir, internal.ArchivePrefix)
	}

	return best, nil
}

func archiveTimestamp(name string) (time.Time, bool) {
	name = strings.TrimSuffix(name, TextSuffix)
	if !strings.HasSuffix(name, ".tar.gz") {
		return time.Time{}, false
	}
	return internal.ParseStampSuffix(name, ".tar.gz")
}

func addTree(tw *tar.Writer, srcDir string) error {
	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if relPath == "." {
			return nil
		}

		name := filepath.ToSlash(relPath)

		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		if info.IsDir() {
			return tw.WriteHeader(&tar.Header{
				Name:     name + "/",
				Mode:     int64(info.Mode()),
				ModTime:  info.ModTime(),
				Typeflag: tar.TypeDir,
			})
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", path, err)
		}
		defer file.Close()

		header := &tar.Header{
			Name:    name,
			Mode:    int64(info.Mode()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write header for %s: %w", name, err)
		}

		if _, err := io.Copy(tw, file); err != nil {
			return fmt.Errorf("failed to write file %s: %w", name, err)
		}

		return nil
	})
}

// securePath rejects entries that would escape the extraction root.
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes the extraction directory", name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", target, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("failed to extract file %q: %w", target, err)
	}

	return file.Close()
}
