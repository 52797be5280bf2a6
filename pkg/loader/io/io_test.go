package io

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/signalgraph/signalgraph/pkg/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func relPaths(files []loader.NoteFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	sort.Strings(out)
	return out
}

func newLoader(t *testing.T, root string, exts ...string) *IONoteLoader {
	t.Helper()
	l, err := NewIONoteLoader(NewIONoteLoaderParams{Root: root, Extensions: exts})
	require.NoError(t, err)
	return l
}

func TestDiscoverFindsNotesRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "2024-01-01.md", "a")
	writeFile(t, root, "daily/2024-01-02.md", "b")
	writeFile(t, root, "deep/er/ideas.md", "c")
	writeFile(t, root, "image.png", "x")
	writeFile(t, root, ".obsidian/workspace.md", "hidden")
	writeFile(t, root, "daily/.draft.md", "hidden")

	l := newLoader(t, root)
	discovery, err := l.Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-01.md", "daily/2024-01-02.md", "deep/er/ideas.md"}, relPaths(discovery.Files))
	assert.Empty(t, discovery.Skipped)
	for _, f := range discovery.Files {
		assert.True(t, filepath.IsAbs(f.Path))
		assert.Same(t, l, f.Loader)
	}
}

func TestDiscoverHonoursExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "b.txt", "b")
	writeFile(t, root, "c.org", "c")

	discovery, err := newLoader(t, root, "md", ".txt").Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.txt"}, relPaths(discovery.Files))
}

func TestDiscoverEmptyRoot(t *testing.T) {
	discovery, err := newLoader(t, t.TempDir()).Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, discovery.Files)
}

func TestDiscoverMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := newLoader(t, root).Discover(context.Background())
	require.Error(t, err)

	var de *loader.DiscoveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, root, de.Root)
}

func TestDiscoverRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "note.md", "x")

	_, err := newLoader(t, filepath.Join(root, "note.md")).Discover(context.Background())
	var de *loader.DiscoveryError
	require.ErrorAs(t, err, &de)
}

func TestDiscoverSkipsUnreadableSubdirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	writeFile(t, root, "ok.md", "fine")
	writeFile(t, root, "locked/secret.md", "nope")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	discovery, err := newLoader(t, root).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ok.md"}, relPaths(discovery.Files))
	require.Len(t, discovery.Skipped, 1)
	assert.Equal(t, "locked", discovery.Skipped[0].Path)
}

func TestDiscoverCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader(t, root).Discover(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetFileTextCachesByVersion(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "first")
	l := newLoader(t, root)
	ctx := context.Background()

	discovery, err := l.Discover(ctx)
	require.NoError(t, err)
	require.Len(t, discovery.Files, 1)
	file := discovery.Files[0]

	text, err := file.GetText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", string(text))

	// Same version key serves the cached bytes even after the file changes.
	writeFile(t, root, "a.md", "second, longer")
	text, err = l.GetFileText(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, "first", string(text))

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(root, "a.md"), later, later))
	discovery, err = l.Discover(ctx)
	require.NoError(t, err)
	text, err = discovery.Files[0].GetText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second, longer", string(text))

	l.cacheMu.RLock()
	assert.Len(t, l.cache, 1)
	l.cacheMu.RUnlock()
}

func TestGetFileTextMissing(t *testing.T) {
	l := newLoader(t, t.TempDir())
	_, err := l.GetFileText(context.Background(), loader.NoteFile{Path: filepath.Join(l.Root(), "gone.md")})
	assert.Error(t, err)
}

func TestGetSource(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "daily/2024-01-01.md", "# Day\n#tag")
	writeFile(t, filepath.Dir(root), "outside.md", "secret")
	l := newLoader(t, root)
	ctx := context.Background()

	content, err := l.GetSource(ctx, "daily/2024-01-01.md")
	require.NoError(t, err)
	assert.Equal(t, "# Day\n#tag", string(content))

	_, err = l.GetSource(ctx, "../outside.md")
	assert.ErrorIs(t, err, loader.ErrPathEscape)

	_, err = l.GetSource(ctx, "daily/../../outside.md")
	assert.ErrorIs(t, err, loader.ErrPathEscape)

	_, err = l.GetSource(ctx, "missing.md")
	assert.ErrorIs(t, err, loader.ErrNotFound)

	_, err = l.GetSource(ctx, "daily")
	assert.ErrorIs(t, err, loader.ErrNotFound)
}

func TestSymlinksStayInsideRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	base := t.TempDir()
	root := filepath.Join(base, "notes")
	writeFile(t, root, "real.md", "inside [[Target]]")
	writeFile(t, base, "secret.md", "outside")
	require.NoError(t, os.Symlink(filepath.Join(root, "real.md"), filepath.Join(root, "alias.md")))
	require.NoError(t, os.Symlink(filepath.Join(base, "secret.md"), filepath.Join(root, "leak.md")))

	l := newLoader(t, root)
	ctx := context.Background()

	discovery, err := l.Discover(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alias.md", "real.md"}, relPaths(discovery.Files))
	require.Len(t, discovery.Skipped, 1)
	assert.Equal(t, "leak.md", discovery.Skipped[0].Path)

	content, err := l.GetSource(ctx, "alias.md")
	require.NoError(t, err)
	assert.Equal(t, "inside [[Target]]", string(content))

	_, err = l.GetSource(ctx, "leak.md")
	assert.ErrorIs(t, err, loader.ErrPathEscape)
}

func TestSymlinkedRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	base := t.TempDir()
	real := filepath.Join(base, "real")
	writeFile(t, real, "a.md", "a")
	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(real, link))

	l := newLoader(t, link)
	discovery, err := l.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, relPaths(discovery.Files))

	content, err := l.GetSource(context.Background(), "a.md")
	require.NoError(t, err)
	assert.Equal(t, "a", string(content))
}
