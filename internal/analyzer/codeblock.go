package analyzer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"clawscan/internal/report"
)

var codeBlockParser = goldmark.New()

type codeBlock struct {
	code      string
	startLine int // 1-based line of the block's first code line inside the source
}

// extractCodeBlocks parses source as markdown and returns every fenced
// code block's content and the 1-based line number of its first code
// line (the line after the opening fence), using goldmark's AST segment
// offsets instead of a hand-rolled fence scanner.
func extractCodeBlocks(source []byte) []codeBlock {
	doc := codeBlockParser.Parser().Parse(text.NewReader(source))
	var blocks []codeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := fcb.Lines()
		if lines.Len() == 0 {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		first := lines.At(0)
		startLine := 1 + bytes.Count(source[:first.Start], []byte("\n"))
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}
		blocks = append(blocks, codeBlock{code: buf.String(), startLine: startLine})
		return ast.WalkContinue, nil
	})
	return blocks
}

// runCodeBlockPipeline writes each fenced block in source to its own
// block_<i>.sh in a scoped temp directory, runs the code analyzers
// against that directory, and rewrites the resulting findings onto
// SKILL.md's coordinate space. The temp directory is removed on every
// exit path; a failure in any one sub-analyzer is swallowed so the rest
// still contribute findings.
func runCodeBlockPipeline(source []byte, codeAnalyzers []Analyzer) ([]report.Finding, error) {
	blocks := extractCodeBlocks(source)
	if len(blocks) == 0 {
		return nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "clawscan-codeblock-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	for i, b := range blocks {
		name := fmt.Sprintf("block_%d.sh", i)
		_ = os.WriteFile(filepath.Join(tmpDir, name), []byte(b.code), 0o644)
	}

	var findings []report.Finding
	for _, ca := range codeAnalyzers {
		result, err := ca.Analyze(tmpDir)
		if err != nil {
			continue
		}
		for _, f := range result {
			findings = append(findings, rewriteCodeBlockFinding(f, blocks))
		}
	}
	return findings, nil
}

func rewriteCodeBlockFinding(f report.Finding, blocks []codeBlock) report.Finding {
	idx, ok := blockIndexFromFile(f.File)
	newLine := 0
	if ok && f.Line > 0 && idx < len(blocks) {
		newLine = blocks[idx].startLine + f.Line - 1
	}
	f.File = "SKILL.md"
	f.Line = newLine
	f.Message = "[In code block] " + f.Message
	return f
}

func blockIndexFromFile(file string) (int, bool) {
	base := filepath.Base(file)
	if !strings.HasPrefix(base, "block_") || !strings.HasSuffix(base, ".sh") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(base, "block_"), ".sh"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// firstHeadingText walks source's markdown AST for its first heading
// (ATX or setext, any level) and returns the text of its direct plain-text
// children, or "" if there is none. Text inside inline markup such as
// emphasis or code spans is not included.
func firstHeadingText(source []byte) string {
	doc := codeBlockParser.Parser().Parse(text.NewReader(source))
	var heading string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || heading != "" {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		heading = buf.String()
		return ast.WalkStop, nil
	})
	return heading
}
