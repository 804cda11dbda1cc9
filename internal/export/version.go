package export

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

var versionPattern = regexp.MustCompile(`_v(\d+)\.(csv|json)$`)

// NextVersion returns one more than the highest version found in dir's
// file names, or 1 when dir is missing or has no versioned files.
func NextVersion(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 1, nil
		}
		return 0, fmt.Errorf("scan export dir: %w", err)
	}

	highest := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := versionPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v > highest {
			highest = v
		}
	}
	return highest + 1, nil
}

// NeutralFile names the neutral track export for version v.
func NeutralFile(v int) string {
	return fmt.Sprintf("neutral_results_v%d.csv", v)
}

// SubjectFile names a subject track export. An empty group yields the
// ungrouped name.
func SubjectFile(group string, v int) string {
	if group == "" {
		return fmt.Sprintf("subject_results_v%d.csv", v)
	}
	return fmt.Sprintf("subject_%s_results_v%d.csv", group, v)
}

// SnapshotFile names the subject snapshot for version v.
func SnapshotFile(v int) string {
	return fmt.Sprintf("personas_v%d.json", v)
}
