package git

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/gerunddev/git-auto-commit/internal/log"
)

// renameThreshold is the similarity git needs to pair a delete with an add.
const renameThreshold = "-M50%"

// Status is the single-letter change kind shown to the user.
type Status byte

const (
	StatusAdded    Status = 'A'
	StatusModified Status = 'M'
	StatusDeleted  Status = 'D'
	StatusRenamed  Status = 'R'
)

func (s Status) String() string { return string(s) }

// FileChange is one changed path.
type FileChange struct {
	Status      Status
	Path        string
	OldPath     string // set for renames
	DiffIgnored bool   // binary, lock or minified: listed, but no diff body
}

// String renders the change as shown to users and the model, e.g.
// "M main.go" or "R old.go → new.go".
func (f FileChange) String() string {
	if f.OldPath != "" {
		return f.Status.String() + " " + f.OldPath + " → " + f.Path
	}
	return f.Status.String() + " " + f.Path
}

// ChangeSet is the set of changes a commit message is generated for.
type ChangeSet struct {
	Files  []FileChange
	Diff   string
	Staged bool
}

// Size returns the diff payload size in bytes.
func (cs *ChangeSet) Size() int {
	return len(cs.Diff)
}

// Source names where the changes came from.
func (cs *ChangeSet) Source() string {
	if cs.Staged {
		return "staged changes"
	}
	return "unstaged changes"
}

// Paths returns every path touched, old sides of renames included.
func (cs *ChangeSet) Paths() []string {
	paths := make([]string, 0, len(cs.Files))
	for _, f := range cs.Files {
		if f.OldPath != "" {
			paths = append(paths, f.OldPath)
		}
		paths = append(paths, f.Path)
	}
	return paths
}

// Changes returns staged changes, or the unstaged and untracked changes when
// nothing is staged. contextLines sets the unified diff context.
func (c *Client) Changes(ctx context.Context, contextLines int) (*ChangeSet, error) {
	staged, err := c.trackedChanges(ctx, true, contextLines)
	if err != nil {
		return nil, err
	}
	if len(staged.Files) > 0 {
		staged.render()
		return staged.ChangeSet, nil
	}

	unstaged, err := c.trackedChanges(ctx, false, contextLines)
	if err != nil {
		return nil, err
	}
	if err := c.addUntracked(ctx, unstaged, contextLines); err != nil {
		return nil, err
	}
	if len(unstaged.Files) == 0 {
		return nil, ErrNoChanges
	}
	unstaged.render()
	return unstaged.ChangeSet, nil
}

// sectionedChangeSet is a change set whose diff is still split per file.
type sectionedChangeSet struct {
	*ChangeSet
	sections map[string]string // keyed by FileChange.Path
}

func (c *Client) trackedChanges(ctx context.Context, staged bool, contextLines int) (*sectionedChangeSet, error) {
	nameArgs := []string{"diff", "--name-status", "-z", renameThreshold}
	patchArgs := diffArgs(contextLines, renameThreshold)
	if staged {
		nameArgs = insertAfter(nameArgs, "diff", "--cached")
		patchArgs = insertAfter(patchArgs, "diff", "--cached")
	}

	scs := &sectionedChangeSet{
		ChangeSet: &ChangeSet{Staged: staged},
		sections:  make(map[string]string),
	}

	out, err := c.runCommand(ctx, nameArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list changed files: %w", err)
	}
	files, err := parseNameStatus(out)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return scs, nil
	}

	patch, err := c.runCommand(ctx, patchArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to diff changes: %w", err)
	}

	sections := splitPatch(patch)
	for i := range files {
		f := &files[i]
		body, ok := sections[f.Path]
		if !ok {
			log.Debug("no diff section for file", "path", f.Path)
		}
		f.DiffIgnored = ShouldIgnoreDiff(f.Path) || isBinaryPatch(body)
		scs.sections[f.Path] = body
	}
	scs.Files = files
	return scs, nil
}

// addUntracked appends untracked, non-ignored files as additions.
func (c *Client) addUntracked(ctx context.Context, scs *sectionedChangeSet, contextLines int) error {
	out, err := c.runCommand(ctx, "ls-files", "--others", "--exclude-standard", "-z")
	if err != nil {
		return fmt.Errorf("failed to list untracked files: %w", err)
	}

	added := false
	for _, p := range strings.Split(out, "\x00") {
		if p == "" {
			continue
		}
		f := FileChange{Status: StatusAdded, Path: p, DiffIgnored: ShouldIgnoreDiff(p)}
		if !f.DiffIgnored {
			body, err := c.untrackedDiff(ctx, p, contextLines)
			if err != nil {
				return err
			}
			f.DiffIgnored = isBinaryPatch(body)
			scs.sections[p] = body
		}
		scs.Files = append(scs.Files, f)
		added = true
	}

	if added {
		sort.SliceStable(scs.Files, func(i, j int) bool { return scs.Files[i].Path < scs.Files[j].Path })
	}
	return nil
}

// untrackedDiff diffs a new file against /dev/null. git exits 1 when the
// inputs differ, which is the expected outcome here.
func (c *Client) untrackedDiff(ctx context.Context, p string, contextLines int) (string, error) {
	stdout, stderr, err := c.commandRunner(ctx, c.workDir, "git",
		diffArgs(contextLines, "--no-index", "--", "/dev/null", p)...)
	if err != nil && exitCode(err) != 1 {
		return "", fmt.Errorf("failed to diff untracked file %s: %w", p, c.wrapError("diff", stderr, err))
	}
	return strings.TrimRight(stdout, "\n"), nil
}

// render assembles the diff text in file order, replacing ignored bodies
// with a one-line note.
func (s *sectionedChangeSet) render() {
	var b strings.Builder
	for _, f := range s.Files {
		if f.DiffIgnored {
			fmt.Fprintf(&b, "--- %s (diff ignored)\n", f.Path)
			continue
		}
		body := s.sections[f.Path]
		if body == "" {
			continue
		}
		b.WriteString(body)
		b.WriteByte('\n')
	}
	s.Diff = strings.TrimRight(b.String(), "\n")
}

// parseNameStatus parses `git diff --name-status -z` output.
func parseNameStatus(out string) ([]FileChange, error) {
	fields := strings.Split(strings.TrimSuffix(out, "\x00"), "\x00")
	var files []FileChange
	for i := 0; i < len(fields); i++ {
		code := fields[i]
		if code == "" {
			continue
		}
		next := func() (string, error) {
			i++
			if i >= len(fields) {
				return "", fmt.Errorf("truncated name-status output after %q", code)
			}
			return fields[i], nil
		}

		switch code[0] {
		case 'R', 'C':
			oldPath, err := next()
			if err != nil {
				return nil, err
			}
			newPath, err := next()
			if err != nil {
				return nil, err
			}
			if code[0] == 'C' {
				files = append(files, FileChange{Status: StatusAdded, Path: newPath})
			} else {
				files = append(files, FileChange{Status: StatusRenamed, Path: newPath, OldPath: oldPath})
			}
		case 'A', 'M', 'D', 'T':
			p, err := next()
			if err != nil {
				return nil, err
			}
			status := Status(code[0])
			if code[0] == 'T' {
				status = StatusModified
			}
			files = append(files, FileChange{Status: status, Path: p})
		default:
			// Unmerged or unknown entries carry one path; skip it.
			p, err := next()
			if err != nil {
				return nil, err
			}
			log.Debug("skipping change with unsupported status", "status", code, "path", p)
		}
	}
	return files, nil
}

// diffArgs builds a patch command whose layout does not depend on user
// diff settings such as diff.noprefix or diff.mnemonicPrefix.
func diffArgs(contextLines int, extra ...string) []string {
	args := []string{
		"-c", "core.quotepath=off", "diff",
		"--no-color", "--no-ext-diff", "--src-prefix=a/", "--dst-prefix=b/",
		"-U" + strconv.Itoa(contextLines),
	}
	return append(args, extra...)
}

// splitPatch splits a multi-file patch into per-file sections keyed by the
// path of the file's new side (old side for deletions).
func splitPatch(patch string) map[string]string {
	sections := make(map[string]string)
	var cur []string
	flush := func() {
		if len(cur) == 0 {
			return
		}
		if p, ok := sectionPath(cur); ok {
			sections[p] = strings.Join(cur, "\n")
		} else {
			log.Debug("unparseable diff header", "header", cur[0])
		}
	}
	for _, line := range strings.Split(strings.TrimRight(patch, "\n"), "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			flush()
			cur = cur[:0:0]
		}
		if len(cur) > 0 || strings.HasPrefix(line, "diff --git ") {
			cur = append(cur, line)
		}
	}
	flush()
	return sections
}

// sectionPath reads the path a patch section describes from its extended
// header lines. git C-quotes names containing quotes, backslashes or control
// characters, so every name is unquoted before use.
func sectionPath(lines []string) (string, bool) {
	var oldPath string
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "@@") {
			break
		}
		switch {
		case strings.HasPrefix(line, "rename to "):
			return unquotePath(strings.TrimPrefix(line, "rename to ")), true
		case strings.HasPrefix(line, "copy to "):
			return unquotePath(strings.TrimPrefix(line, "copy to ")), true
		case strings.HasPrefix(line, "+++ "):
			if p := patchFileName(strings.TrimPrefix(line, "+++ "), "b/"); p != "" {
				return p, true
			}
		case strings.HasPrefix(line, "--- "):
			oldPath = patchFileName(strings.TrimPrefix(line, "--- "), "a/")
		}
	}
	if oldPath != "" {
		return oldPath, true
	}
	return headerPath(strings.TrimPrefix(lines[0], "diff --git "))
}

// patchFileName parses a ---/+++ file name. /dev/null yields "".
func patchFileName(name, prefix string) string {
	// git appends a tab to unquoted names that contain spaces.
	name = unquotePath(strings.TrimSuffix(name, "\t"))
	if name == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(name, prefix)
}

// headerPath parses the new side of "a/<old> b/<new>". It is only needed
// for sections without ---/+++ lines (binary files, mode changes), where
// both sides name the same file.
func headerPath(rest string) (string, bool) {
	if strings.HasPrefix(rest, `"`) {
		q, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return "", false
		}
		rest = strings.TrimPrefix(rest[len(q):], " ")
		return strings.TrimPrefix(unquotePath(rest), "b/"), true
	}
	if i := strings.Index(rest, ` "`); i >= 0 {
		return strings.TrimPrefix(unquotePath(rest[i+1:]), "b/"), true
	}
	// "a/<p> b/<p>": both halves share one length.
	if n := len(rest) - 5; n > 0 && n%2 == 0 {
		oldSide, newSide := rest[:n/2+2], rest[n/2+3:]
		if strings.HasPrefix(oldSide, "a/") && strings.HasPrefix(newSide, "b/") && oldSide[2:] == newSide[2:] {
			return newSide[2:], true
		}
	}
	if i := strings.LastIndex(rest, " b/"); i >= 0 {
		return rest[i+3:], true
	}
	return "", false
}

// unquotePath undoes git's C-style quoting; unquoted names pass through.
func unquotePath(s string) string {
	if !strings.HasPrefix(s, `"`) {
		return s
	}
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}

// isBinaryPatch reports whether git declined to print a textual diff.
func isBinaryPatch(section string) bool {
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ") {
			return true
		}
		if line == "GIT binary patch" {
			return true
		}
	}
	return false
}

// ShouldIgnoreDiff reports whether a file's diff body is noise: lock files
// and minified assets.
func ShouldIgnoreDiff(p string) bool {
	lower := strings.ToLower(p)
	base := path.Base(lower)

	switch {
	case path.Ext(lower) == ".lock":
		return true
	case strings.HasSuffix(lower, "-lock.json"), strings.HasSuffix(lower, "-lock.yaml"):
		return true
	case base == "go.sum":
		return true
	case strings.HasSuffix(lower, ".min.js"), strings.HasSuffix(lower, ".min.css"),
		strings.HasSuffix(lower, "-min.js"), strings.HasSuffix(lower, "-min.css"):
		return true
	}
	return false
}

func insertAfter(args []string, after, value string) []string {
	for i, a := range args {
		if a == after {
			out := make([]string, 0, len(args)+1)
			out = append(out, args[:i+1]...)
			out = append(out, value)
			return append(out, args[i+1:]...)
		}
	}
	return append(args, value)
}
