package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeffanddom/organizex/internal/duplicates"
	"github.com/jeffanddom/organizex/internal/filetype"
)

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <path>",
		Short: "Analyze a folder",
		Long: `Analyze a folder: file counts, size, type distribution, the largest
and oldest files, a health score and suggested cleanup actions.

Paths may be aliases such as "downloads" or "desktop".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.coordinator.Scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			return p.emit(report, func() {
				p.printf("%s\n", report.RootPath)
				p.printf("  %s files in %s folders, %s\n",
					humanize.Comma(report.TotalFiles), humanize.Comma(report.TotalFolders),
					humanize.IBytes(uint64(report.TotalSize)))
				p.printf("  Health score: %d/100\n\n", report.Health.Score)

				p.printf("File types:\n")
				p.fileTypes(report.FileTypes)

				if len(report.Largest) > 0 {
					p.printf("\nLargest files:\n")
					for _, f := range report.Largest {
						p.printf("  %-10s %s\n", humanize.IBytes(uint64(f.Size)), f.Path)
					}
				}
				if len(report.Health.Issues) > 0 {
					p.printf("\nIssues:\n")
					for _, issue := range report.Health.Issues {
						p.printf("  - %s\n", issue)
					}
				}
				if len(report.Actions) > 0 {
					p.printf("\nSuggested actions:\n")
					for _, action := range report.Actions {
						p.printf("  - %s (~%d XP)\n", action.Description, action.EstimatedXP)
					}
				}
				if report.Warnings > 0 {
					p.printf("\n%d entries could not be read\n", report.Warnings)
				}
			})
		},
	}
}

func duplicatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duplicates <path>",
		Short: "Find files with identical content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.coordinator.FindDuplicates(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			if err := p.emit(report, func() {
				if len(report.Groups) == 0 {
					p.printf("No duplicates found in %s\n", report.Root)
					return
				}
				for _, g := range report.Groups {
					p.printf("%d. %s (%s each, %d copies)\n", g.ID, g.Name, humanize.IBytes(uint64(g.Size)), len(g.Files))
					for i, f := range g.Files {
						marker := "delete"
						if i == 0 {
							marker = "keep"
						}
						p.printf("     [%s] %s\n", marker, f.Path)
					}
				}
				p.printf("\n%d groups, %d redundant files, %s reclaimable\n",
					report.Summary.Groups, report.Summary.DuplicateFiles,
					humanize.IBytes(uint64(report.Summary.WastedBytes)))
			}); err != nil {
				return err
			}

			remove, _ := cmd.Flags().GetBool("delete")
			if !remove || len(report.Groups) == 0 {
				return nil
			}

			result, err := a.coordinator.DeleteFiles(cmd.Context(), duplicates.DefaultDeletions(report.Groups))
			if err != nil {
				return err
			}
			return p.emit(result, func() {
				p.printf("\n✓ Deleted %d files, freed %s\n", result.Deleted, humanize.IBytes(uint64(result.BytesFreed)))
				p.errors(result.Errors)
				p.progression(result.Progression)
			})
		},
	}

	cmd.Flags().Bool("delete", false, "Delete every copy except the oldest in each group")
	return cmd
}

func organizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize <path>",
		Short: "Move files into per-type folders",
		Long: `Move the files directly inside a folder into subfolders named after
their type (Images, Documents, ...). Existing names are never overwritten.

Without --types every type except Other is organized. Aliases such as
"downloads" are accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, _ := cmd.Flags().GetStringSlice("types")
			rules, err := parseRules(names)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.coordinator.Organize(cmd.Context(), args[0], rules)
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			return p.emit(report, func() {
				p.printf("✓ Organized %d files in %s\n", report.Organized, report.Root)
				for _, m := range report.Moves {
					p.printf("  %s -> %s\n", m.From, m.To)
				}
				p.errors(report.Errors)
				p.progression(report.Progression)
			})
		},
	}

	cmd.Flags().StringSlice("types", nil, "File types to organize, e.g. Images,Documents")
	return cmd
}

// parseRules enables the named types, or every organizable type when none
// are named
func parseRules(names []string) (map[filetype.Label]bool, error) {
	rules := make(map[filetype.Label]bool)
	if len(names) == 0 {
		for _, label := range filetype.Organizable() {
			rules[label] = true
		}
		return rules, nil
	}

	for _, name := range names {
		label, ok := matchLabel(name)
		if !ok {
			return nil, fmt.Errorf("unknown file type: %s", name)
		}
		rules[label] = true
	}
	return rules, nil
}

func matchLabel(name string) (filetype.Label, bool) {
	for _, label := range filetype.Labels() {
		if strings.EqualFold(string(label), strings.TrimSpace(name)) {
			return label, true
		}
	}
	return "", false
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file>...",
		Short: "Delete files and earn cleanup XP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.coordinator.DeleteFiles(cmd.Context(), args)
			if err != nil {
				return err
			}

			p := newPrinter(cmd)
			return p.emit(result, func() {
				p.printf("✓ Deleted %d files, freed %s\n", result.Deleted, humanize.IBytes(uint64(result.BytesFreed)))
				p.errors(result.Errors)
				p.progression(result.Progression)
			})
		},
	}
}
