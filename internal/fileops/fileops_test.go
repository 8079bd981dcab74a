package fileops_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jeffanddom/organizex/internal/fileops"
	"github.com/jeffanddom/organizex/internal/filetype"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/storage"
	"github.com/jeffanddom/organizex/tests/testutil"
)

func allTypes() map[filetype.Label]bool {
	rules := make(map[filetype.Label]bool)
	for _, label := range filetype.Organizable() {
		rules[label] = true
	}
	return rules
}

func TestOperator_Organize(t *testing.T) {
	ctx := context.Background()
	op := fileops.New(logging.Nop())

	t.Run("moves files into type folders", func(t *testing.T) {
		root := t.TempDir()
		testutil.MustWriteFile(t, filepath.Join(root, "photo.jpg"), "jpg")
		testutil.MustWriteFile(t, filepath.Join(root, "report.pdf"), "pdf")
		testutil.MustWriteFile(t, filepath.Join(root, "nested", "song.mp3"), "mp3")

		result, err := op.Organize(ctx, root, allTypes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Organized != 2 {
			t.Errorf("expected 2 files organized, got %d", result.Organized)
		}
		if result.FileTypes[filetype.Images] != 1 || result.FileTypes[filetype.Documents] != 1 {
			t.Errorf("unexpected type counts: %v", result.FileTypes)
		}
		testutil.MustExist(t, filepath.Join(root, "Images", "photo.jpg"))
		testutil.MustExist(t, filepath.Join(root, "Documents", "report.pdf"))
		testutil.MustExist(t, filepath.Join(root, "nested", "song.mp3"))
		testutil.MustNotExist(t, filepath.Join(root, "photo.jpg"))
	})

	t.Run("resolves name collisions", func(t *testing.T) {
		root := t.TempDir()
		testutil.MustWriteFile(t, filepath.Join(root, "Images", "a.jpg"), "existing")
		testutil.MustWriteFile(t, filepath.Join(root, "Images", "a_1.jpg"), "existing too")
		testutil.MustWriteFile(t, filepath.Join(root, "a.jpg"), "new")

		result, err := op.Organize(ctx, root, allTypes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Organized != 1 {
			t.Fatalf("expected 1 file organized, got %d", result.Organized)
		}
		expected := filepath.Join(result.Root, "Images", "a_2.jpg")
		if result.Moves[0].To != expected {
			t.Errorf("expected move to %s, got %s", expected, result.Moves[0].To)
		}
		testutil.MustExist(t, filepath.Join(root, "Images", "a.jpg"))
		testutil.MustExist(t, filepath.Join(root, "Images", "a_2.jpg"))
	})

	t.Run("produces a_1 for a single collision", func(t *testing.T) {
		root := t.TempDir()
		testutil.MustWriteFile(t, filepath.Join(root, "Images", "a.jpg"), "existing")
		testutil.MustWriteFile(t, filepath.Join(root, "a.jpg"), "new")

		if _, err := op.Organize(ctx, root, allTypes()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testutil.MustExist(t, filepath.Join(root, "Images", "a_1.jpg"))
	})

	t.Run("appends the counter to dotfile names", func(t *testing.T) {
		root := t.TempDir()
		testutil.MustWriteFile(t, filepath.Join(root, "Other", ".bashrc"), "existing")
		testutil.MustWriteFile(t, filepath.Join(root, "Other", ".bashrc_1"), "existing too")

		backend, err := storage.NewLocalFSBackend(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer backend.Close()

		got, err := fileops.FreeName(ctx, backend, "Other", ".bashrc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Other/.bashrc_2" {
			t.Errorf("expected Other/.bashrc_2, got %s", got)
		}
	})

	t.Run("leaves dotfiles without an extension in place", func(t *testing.T) {
		root := t.TempDir()
		testutil.MustWriteFile(t, filepath.Join(root, ".jpg"), "hidden")

		result, err := op.Organize(ctx, root, allTypes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Organized != 0 {
			t.Errorf("expected nothing organized, got %d", result.Organized)
		}
		testutil.MustExist(t, filepath.Join(root, ".jpg"))
	})

	t.Run("respects disabled types", func(t *testing.T) {
		root := t.TempDir()
		testutil.MustWriteFile(t, filepath.Join(root, "photo.jpg"), "jpg")
		testutil.MustWriteFile(t, filepath.Join(root, "report.pdf"), "pdf")

		result, err := op.Organize(ctx, root, map[filetype.Label]bool{filetype.Documents: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Organized != 1 {
			t.Errorf("expected 1 file organized, got %d", result.Organized)
		}
		testutil.MustExist(t, filepath.Join(root, "photo.jpg"))
	})

	t.Run("fails for missing root", func(t *testing.T) {
		_, err := op.Organize(ctx, filepath.Join(t.TempDir(), "missing"), allTypes())
		if !errors.Is(err, storage.ErrPathNotFound) {
			t.Errorf("expected ErrPathNotFound, got %v", err)
		}
	})
}

func TestOperator_Delete(t *testing.T) {
	ctx := context.Background()
	op := fileops.New(logging.Nop())

	t.Run("deletes files and reports bytes freed", func(t *testing.T) {
		root := t.TempDir()
		a := filepath.Join(root, "a.bin")
		b := filepath.Join(root, "b.bin")
		testutil.MustWriteSized(t, a, 1024)
		testutil.MustWriteSized(t, b, 2048)

		result, err := op.Delete(ctx, []string{a, b})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Deleted != 2 || result.BytesFreed != 3072 {
			t.Errorf("unexpected result: %+v", result)
		}
		if len(result.Errors) != 0 {
			t.Errorf("expected no errors, got %v", result.Errors)
		}
		testutil.MustNotExist(t, a)
	})

	t.Run("reports missing files and continues", func(t *testing.T) {
		root := t.TempDir()
		missing := filepath.Join(root, "missing.txt")
		present := filepath.Join(root, "present.txt")
		testutil.MustWriteFile(t, present, "x")

		result, err := op.Delete(ctx, []string{missing, present})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Deleted != 1 {
			t.Errorf("expected 1 deleted, got %d", result.Deleted)
		}
		if len(result.Errors) != 1 || result.Errors[0] != "File not found: "+missing {
			t.Errorf("unexpected errors: %v", result.Errors)
		}
	})

	t.Run("refuses directories", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "dir")
		testutil.MustWriteFile(t, filepath.Join(dir, "keep.txt"), "x")

		result, err := op.Delete(ctx, []string{dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Deleted != 0 || len(result.Errors) != 1 {
			t.Errorf("unexpected result: %+v", result)
		}
		testutil.MustExist(t, dir)
	})
}
