// Package frontmatter edits and reads the YAML frontmatter block at the top of
// a Markdown or MDX story.
//
// The block sits between the first two lines that consist solely of "---".
// Edits are line based so that every byte outside the edited line, including
// line endings and the body, is preserved.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNoFrontmatter is returned when the content has no delimited
	// frontmatter block.
	ErrNoFrontmatter = errors.New("no frontmatter block")

	// ErrNoAnchor is returned when the frontmatter has neither an image
	// line to replace nor a date line to insert after.
	ErrNoAnchor = errors.New("frontmatter has no image or date line")
)

const delimiter = "---"

// block locates the frontmatter within a list of lines.
type block struct {
	open  int // index of the opening delimiter line
	close int // index of the closing delimiter line
}

// splitLines splits content into lines, each keeping its own terminator.
func splitLines(content []byte) [][]byte {
	return bytes.SplitAfter(content, []byte("\n"))
}

// trimEOL strips a trailing "\n" or "\r\n".
func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}

// eol returns the terminator of line, or "" for an unterminated last line.
func eol(line []byte) []byte {
	return line[len(trimEOL(line)):]
}

func findBlock(lines [][]byte) (block, error) {
	b := block{open: -1, close: -1}
	for i, line := range lines {
		if string(trimEOL(line)) != delimiter {
			continue
		}
		if b.open < 0 {
			b.open = i
			continue
		}
		b.close = i
		return b, nil
	}
	return b, ErrNoFrontmatter
}

// SetImage sets the frontmatter image line to "image: value". An existing
// image line is replaced; otherwise the line is inserted right after the
// date line. Content outside that one line is returned unchanged.
func SetImage(content []byte, value string) ([]byte, error) {
	lines := splitLines(content)

	b, err := findBlock(lines)
	if err != nil {
		return nil, err
	}

	imageAt, dateAt := -1, -1
	for i := b.open + 1; i < b.close; i++ {
		line := lines[i]
		if imageAt < 0 && bytes.HasPrefix(line, []byte("image:")) {
			imageAt = i
		}
		if dateAt < 0 && bytes.HasPrefix(line, []byte("date:")) {
			dateAt = i
		}
	}

	var out bytes.Buffer
	out.Grow(len(content) + len(value) + 16)

	switch {
	case imageAt >= 0:
		for i, line := range lines {
			if i == imageAt {
				out.WriteString("image: " + value)
				out.Write(eol(line))
				continue
			}
			out.Write(line)
		}
	case dateAt >= 0:
		for i, line := range lines {
			out.Write(line)
			if i == dateAt {
				out.WriteString("image: " + value)
				out.Write(eol(line))
			}
		}
	default:
		return nil, ErrNoAnchor
	}

	return out.Bytes(), nil
}

// PatchFile applies SetImage to the file at path, keeping its permissions. It
// reports whether the file content changed; an unchanged file is not
// rewritten.
func PatchFile(path, value string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat story file: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read story file: %w", err)
	}

	patched, err := SetImage(content, value)
	if err != nil {
		return false, err
	}
	if bytes.Equal(content, patched) {
		return false, nil
	}

	if err := os.WriteFile(path, patched, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write story file: %w", err)
	}
	return true, nil
}

// Split returns the raw YAML between the delimiters and the body after the
// closing delimiter.
func Split(content []byte) (front []byte, body []byte, err error) {
	lines := splitLines(content)

	b, err := findBlock(lines)
	if err != nil {
		return nil, nil, err
	}

	front = bytes.Join(lines[b.open+1:b.close], nil)
	body = bytes.Join(lines[b.close+1:], nil)
	return front, body, nil
}
