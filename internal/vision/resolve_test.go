package vision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lungsight/apiserver/config"
	"github.com/stretchr/testify/require"
)

func TestResolveImageRef(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"img1.jpg", "image2.jpg", "3.jpg", "img4.png", "scan.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	outside := filepath.Join(t.TempDir(), "other.jpg")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	c := NewClassifier(config.ModelConfig{ImageDir: dir})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"existing_path", outside, outside},
		{"file_in_dir", "scan.jpg", filepath.Join(dir, "scan.jpg")},
		{"spoken_reference", "image 1", filepath.Join(dir, "img1.jpg")},
		{"ordinal_reference", "the 1st xray", filepath.Join(dir, "img1.jpg")},
		{"bare_name", "img1", filepath.Join(dir, "img1.jpg")},
		{"second_pattern", "picture 2 please", filepath.Join(dir, "image2.jpg")},
		{"bare_number", "3", filepath.Join(dir, "3.jpg")},
		{"png_fallback", "xray 4", filepath.Join(dir, "img4.png")},
		{"quoted_input", `"scan.jpg"`, filepath.Join(dir, "scan.jpg")},
		{"unresolvable", "image 99", "image 99"},
		{"no_number", "latest scan", "latest scan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, c.ResolveImageRef(tt.input))
		})
	}
}

func TestResolveImageRefIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "img7.jpg"), 0o755))

	c := NewClassifier(config.ModelConfig{ImageDir: dir})
	require.Equal(t, "image 7", c.ResolveImageRef("image 7"))
}
