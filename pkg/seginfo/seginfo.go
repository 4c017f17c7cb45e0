// Package seginfo provides utilities for discovering and naming the
// append-only segment files that back the store.
//
// Filename format: <file_id>.log
//
// Where file_id is a monotonically increasing positive integer assigned in
// the order segments are created. Lexicographic sorting of these names does
// not, in general, match numeric order (e.g. "10.log" < "9.log"
// lexicographically), so discovery always parses and sorts numerically
// rather than relying on filename string order.
//
// Example filenames:
//
//	1.log
//	2.log
//	42.log
package seginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/iamnilotpal/ignite-kv/pkg/filesys"
)

const extension = ".log"

// GetLatestSegmentInfo discovers every segment file in dir and returns the
// file_id and os.FileInfo of the one with the highest id.
//
// Returns:
//   - uint64: the highest file_id found (0 if no segments exist).
//   - os.FileInfo: metadata for that segment (nil if no segments exist).
//   - error: any error encountered while reading the directory.
func GetLatestSegmentInfo(dir string) (uint64, os.FileInfo, error) {
	ids, err := ListSegmentIDs(dir)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list segment ids in %s: %w", dir, err)
	}

	if len(ids) == 0 {
		return 0, nil, nil
	}

	latest := ids[len(ids)-1]
	info, err := GetFileInfo(filepath.Join(dir, GenerateName(latest)))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to stat segment %d: %w", latest, err)
	}

	return latest, info, nil
}

// ListSegmentIDs returns every segment file_id present in dir, sorted
// ascending. A directory with no "*.log" files returns an empty, non-nil
// slice.
func ListSegmentIDs(dir string) ([]uint64, error) {
	searchPattern := filepath.Join(dir, "*"+extension)

	matches, err := filesys.ReadDir(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", searchPattern, err)
	}

	ids := make([]uint64, 0, len(matches))
	for _, match := range matches {
		id, err := ParseSegmentID(match)
		if err != nil {
			continue // Not a well-formed segment filename; ignore it.
		}
		ids = append(ids, id)
	}

	slices.Sort(ids)
	return ids, nil
}

// GenerateName returns the on-disk filename for the given segment id.
func GenerateName(id uint64) string {
	return fmt.Sprintf("%d%s", id, extension)
}

// ParseSegmentID extracts the file_id from a segment filename or path.
func ParseSegmentID(fullPath string) (uint64, error) {
	_, filename := filepath.Split(fullPath)

	if !strings.HasSuffix(filename, extension) {
		return 0, fmt.Errorf("filename %s does not end in %s", filename, extension)
	}

	stem := strings.TrimSuffix(filename, extension)
	id, err := strconv.ParseUint(stem, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse segment id %q: %w", stem, err)
	}

	return id, nil
}

// GetFileInfo safely retrieves file system metadata for a given path.
func GetFileInfo(filePath string) (os.FileInfo, error) {
	file, err := os.OpenFile(filePath, os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info for %s: %w", filePath, err)
	}

	return stat, nil
}
