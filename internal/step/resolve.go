package step

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// Resolve substitutes every {{key}} and {key} placeholder for the given
// variables. Unknown placeholders are left as they are.
func Resolve(text string, vars map[string]string) string {
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		text = strings.ReplaceAll(text, "{{"+key+"}}", vars[key])
		text = strings.ReplaceAll(text, "{"+key+"}", vars[key])
	}
	return text
}

// Successor returns the reference to the step after u: the header's
// nextStepFile when set, otherwise the next file in u's directory listing as
// "./<file>". ok is false when u is the last step.
func Successor(u *Unit) (ref string, ok bool, err error) {
	if u.Frontmatter.NextStepFile != "" {
		return u.Frontmatter.NextStepFile, true, nil
	}

	files, err := List(filepath.Dir(u.Path))
	if err != nil {
		return "", false, err
	}
	idx := slices.Index(files, filepath.Base(u.Path))
	if idx < 0 || idx == len(files)-1 {
		return "", false, nil
	}
	return "./" + files[idx+1], true, nil
}

// bundlePrefixes mark references relative to the content bundle root.
var bundlePrefixes = []string{"bmm/", "core/"}

// ResolvePath turns a successor reference into an absolute path.
// Absolute references pass through, bundle references (bmm/..., core/...)
// resolve against bundleRoot, and everything else, including ./ and ../,
// resolves against the directory of currentFile.
func ResolvePath(ref, currentFile, bundleRoot string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	for _, prefix := range bundlePrefixes {
		if strings.HasPrefix(ref, prefix) {
			return filepath.Join(bundleRoot, filepath.FromSlash(ref))
		}
	}
	return filepath.Join(filepath.Dir(currentFile), filepath.FromSlash(ref))
}
