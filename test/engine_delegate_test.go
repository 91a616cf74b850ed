package test

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// TestEngine_DelegateMethodComplexity keeps Engine methods in the root
// engine_*.go files thin. Anything longer than maxLines probably carries
// flow logic that belongs in internal/flows.
//
// Exceptions must name a reason so they stay reviewable.
func TestEngine_DelegateMethodComplexity(t *testing.T) {
	const maxLines = 25

	exceptions := map[string]struct {
		limit  int
		reason string
	}{
		"flowDeps": {80, "wiring function"},
	}
	for name, exc := range exceptions {
		if exc.reason == "" {
			t.Errorf("exception %q missing reason", name)
		}
	}

	files, err := filepath.Glob("../engine*.go")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no engine files found")
	}

	funcSig := regexp.MustCompile(`^func \(e \*Engine\) ([A-Za-z]\w*)\(`)
	seen := 0

	for _, filename := range files {
		if strings.HasSuffix(filename, "_test.go") {
			continue
		}
		f, err := os.Open(filename)
		if err != nil {
			t.Fatalf("open %s: %v", filename, err)
		}

		type methodInfo struct {
			name  string
			start int
			depth int
		}

		scanner := bufio.NewScanner(f)
		lineNum := 0
		var current *methodInfo

		for scanner.Scan() {
			lineNum++
			line := scanner.Text()

			if current == nil {
				if m := funcSig.FindStringSubmatch(line); m != nil {
					seen++
					current = &methodInfo{
						name:  m[1],
						start: lineNum,
						depth: strings.Count(line, "{") - strings.Count(line, "}"),
					}
					if current.depth <= 0 {
						current = nil
					}
				}
				continue
			}

			current.depth += strings.Count(line, "{") - strings.Count(line, "}")
			if current.depth > 0 {
				continue
			}
			length := lineNum - current.start + 1
			limit := maxLines
			if exc, ok := exceptions[current.name]; ok {
				limit = exc.limit
			}
			if length > limit {
				t.Errorf("%s:%d: method %s is %d lines (limit %d); move flow logic to internal/flows/",
					filename, current.start, current.name, length, limit)
			}
			current = nil
		}
		if err := scanner.Err(); err != nil {
			t.Fatalf("scan %s: %v", filename, err)
		}
		f.Close()
	}

	if seen == 0 {
		t.Fatal("no Engine methods found")
	}
}
