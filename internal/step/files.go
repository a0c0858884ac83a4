package step

import (
	"cmp"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gorewood/bmadflow/internal/output"
)

// stepName matches "step-" + optional short tag + "-" + number + optional
// continuation letter, e.g. step-03-x.md, step-v-01-x.md, step-01b-x.md.
var stepName = regexp.MustCompile(`^step-(?:([a-z]{1,3})-)?(\d+)([a-z])?`)

// Name is the ordering information carried by a step filename.
type Name struct {
	Tag    string // "v" in step-v-01, empty for plain steps
	Number int
	Suffix string // "b" in step-01b, empty for primary steps
}

// Primary reports whether the step is a primary step rather than a
// lettered continuation of one.
func (n Name) Primary() bool {
	return n.Suffix == ""
}

// ParseName extracts ordering information from a step filename.
func ParseName(filename string) (Name, bool) {
	m := stepName.FindStringSubmatch(filename)
	if m == nil {
		return Name{}, false
	}
	number, err := strconv.Atoi(m[2])
	if err != nil {
		return Name{}, false
	}
	return Name{Tag: m[1], Number: number, Suffix: m[3]}, true
}

type listed struct {
	file string
	name Name
}

func scan(dir string) ([]listed, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, output.ContentError("cannot read steps directory "+dir, err)
	}

	var steps []listed
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		if name, ok := ParseName(entry.Name()); ok {
			steps = append(steps, listed{file: entry.Name(), name: name})
		}
	}

	slices.SortFunc(steps, func(a, b listed) int {
		return cmp.Or(cmp.Compare(a.name.Number, b.name.Number), strings.Compare(a.file, b.file))
	})
	return steps, nil
}

// List returns the step filenames in dir sorted by step number, then by
// filename. Files not following the step naming convention are ignored.
func List(dir string) ([]string, error) {
	steps, err := scan(dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(steps))
	for _, s := range steps {
		files = append(files, s.file)
	}
	return files, nil
}

// First returns the path of the first step in dir.
func First(dir string) (string, error) {
	files, err := List(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", output.ContentError("no step files found in "+dir, nil)
	}
	return filepath.Join(dir, files[0]), nil
}

// Count returns the number of primary steps in dir. Lettered continuations
// such as step-01b are not counted; tagged families such as step-v-01 are.
func Count(dir string) (int, error) {
	steps, err := scan(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, s := range steps {
		if s.name.Primary() {
			n++
		}
	}
	return n, nil
}

// Lookup returns the path of the first primary step numbered number in dir.
func Lookup(dir string, number int) (string, error) {
	steps, err := scan(dir)
	if err != nil {
		return "", err
	}
	for _, s := range steps {
		if s.name.Number == number && s.name.Primary() {
			return filepath.Join(dir, s.file), nil
		}
	}
	return "", output.ContentError("no step "+strconv.Itoa(number)+" in "+dir, nil)
}
