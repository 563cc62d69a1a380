// Package diff renders unified diffs between a document and its rewritten
// form using github.com/pmezard/go-difflib.
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines around each hunk.
const DefaultContext = 3

// Options controls patch generation.
type Options struct {
	// Context lines per hunk. A negative value means DefaultContext.
	Context int

	// MaxBytes limits the combined input size. Larger inputs produce a
	// placeholder patch. 0 means no limit.
	MaxBytes int
}

// Unified returns a unified patch turning a into b. The flag reports that
// the patch was omitted because the inputs exceed MaxBytes. Identical
// inputs produce an empty patch.
func Unified(aName, bName string, a, b []byte, opt Options) (patch string, oversize bool, err error) {
	if opt.MaxBytes > 0 && len(a)+len(b) > opt.MaxBytes {
		return omitted(aName, bName), true, nil
	}

	ctx := opt.Context
	if ctx < 0 {
		ctx = DefaultContext
	}

	u := difflib.UnifiedDiff{
		A:        splitLines(string(a)),
		B:        splitLines(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	patch, err = difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", false, fmt.Errorf("failed to compute diff: %w", err)
	}
	return patch, false, nil
}

// splitLines keeps the newline on each line, which difflib expects.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", aName, bName)
}
