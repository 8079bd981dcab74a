package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jeffanddom/organizex/internal/filetype"
)

func TestParseRules(t *testing.T) {
	t.Run("enables every organizable type by default", func(t *testing.T) {
		rules, err := parseRules(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rules) != len(filetype.Organizable()) {
			t.Errorf("expected %d rules, got %d", len(filetype.Organizable()), len(rules))
		}
		if rules[filetype.Other] {
			t.Error("expected Other to be excluded")
		}
	})

	t.Run("matches names case-insensitively", func(t *testing.T) {
		rules, err := parseRules([]string{"images", " Documents "})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rules) != 2 || !rules[filetype.Images] || !rules[filetype.Documents] {
			t.Errorf("unexpected rules: %v", rules)
		}
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		if _, err := parseRules([]string{"spreadsheets"}); err == nil {
			t.Error("expected error for unknown type")
		}
	})
}

func TestPrinter(t *testing.T) {
	newCmd := func(asJSON bool) (*cobra.Command, *bytes.Buffer) {
		cmd := &cobra.Command{}
		cmd.Flags().Bool("json", asJSON, "")
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		return cmd, &buf
	}

	t.Run("writes JSON when requested", func(t *testing.T) {
		cmd, buf := newCmd(true)
		p := newPrinter(cmd)
		if err := p.emit(map[string]int{"files": 3}, func() { t.Error("human output should not run") }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"files": 3`) {
			t.Errorf("unexpected output: %s", buf.String())
		}
	})

	t.Run("writes human output otherwise", func(t *testing.T) {
		cmd, buf := newCmd(false)
		p := newPrinter(cmd)
		if err := p.emit(nil, func() { p.printf("hello\n") }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "hello\n" {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})
}
