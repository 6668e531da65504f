package patch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Stats counts the characters a diff inserts and deletes.
type Stats struct {
	Inserted int
	Deleted  int
}

// Changed reports whether the diff contains any edit.
func (s Stats) Changed() bool { return s.Inserted > 0 || s.Deleted > 0 }

// GenerateDiff returns the changes from before to after in diff-match-patch
// text format, headed by "# patch for <label>". It returns "" when the two
// renderings are equal after normalization. Both inputs are normalized first
// so line-ending and trailing-whitespace noise never shows up as a change.
func GenerateDiff(label, before, after string) string {
	before, after = normalize(before), normalize(after)
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	patchText := dmp.PatchToText(dmp.PatchMake(before, diffs))
	if patchText == "" {
		return ""
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# patch for %s\n", label)
	out.WriteString(patchText)
	out.WriteString("\n")
	return out.String()
}

// Summarize counts inserted and deleted characters between before and after.
func Summarize(before, after string) Stats {
	dmp := diffmatchpatch.New()
	var s Stats
	for _, d := range dmp.DiffMain(normalize(before), normalize(after), false) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Inserted += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			s.Deleted += len([]rune(d.Text))
		}
	}
	return s
}

// Apply applies a patch produced by GenerateDiff to before. It reports an
// error if any hunk fails to apply.
func Apply(before, patchText string) (string, error) {
	body := patchText
	if strings.HasPrefix(body, "# patch for ") {
		if idx := strings.Index(body, "\n"); idx >= 0 {
			body = body[idx+1:]
		}
	}
	body = strings.TrimRight(body, "\n")
	if body == "" {
		return normalize(before), nil
	}

	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(body + "\n")
	if err != nil {
		return "", fmt.Errorf("parsing patch: %w", err)
	}
	out, applied := dmp.PatchApply(patches, normalize(before))
	for i, ok := range applied {
		if !ok {
			return "", fmt.Errorf("patch hunk %d did not apply", i)
		}
	}
	return out, nil
}

// normalize trims trailing whitespace from each line and converts CRLF to LF.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
