// Package testutil provides file-tree helpers shared by the seda
// test suites.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// SkipOnWindows skips the test when running on Windows.
func SkipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}
}

// CreateFile creates a file with the given content in the specified
// directory, creating parent directories as needed. It fails the test
// if the file cannot be created.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	return CreateBinaryFile(t, dir, name, []byte(content))
}

// CreateBinaryFile creates a file with raw byte content.
func CreateBinaryFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	return path
}

// CreateDir creates a directory in the specified parent directory.
// It fails the test if the directory cannot be created.
func CreateDir(t *testing.T, parent, name string) string {
	t.Helper()

	path := filepath.Join(parent, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", path, err)
	}
	return path
}

// ReadFile reads the content of a file and returns it as a string.
// It fails the test if the file cannot be read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	return string(ReadBinaryFile(t, path))
}

// ReadBinaryFile reads the raw content of a file.
func ReadBinaryFile(t *testing.T, path string) []byte {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return content
}

// FileExists checks if a file exists and is not a directory.
func FileExists(t *testing.T, path string) bool {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// SampleTree creates the standard test fixture: a small project with
// text files, a binary file, and an ignorable cache directory. It
// returns the tree root.
func SampleTree(t *testing.T) string {
	t.Helper()

	root := CreateDir(t, t.TempDir(), "sample_project")
	CreateFile(t, root, "README.md", "# Sample Project\n\nThis is a test project.\n")
	CreateFile(t, root, "src/util.py", "def hello():\n    return 'Hello'\n")
	CreateBinaryFile(t, root, "img/logo.png", SampleBinary(200))
	CreateFile(t, root, "__pycache__/util.cpython-311.pyc", "fake pyc content")
	return root
}

// SampleBinary returns n bytes that are guaranteed not to be valid
// UTF-8.
func SampleBinary(n int) []byte {
	data := make([]byte, n)
	data[0] = 0xff
	data[1] = 0xfe
	for i := 2; i < n; i++ {
		data[i] = byte(i * 7)
	}
	return data
}
