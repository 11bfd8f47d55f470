package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"notes.pdf", true},
		{"NOTES.PDF", true},
		{"thesis.docx", true},
		{"readme.md", true},
		{"plain.txt", true},
		{"image.png", false},
		{"archive.zip", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.path); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestText_Unsupported(t *testing.T) {
	_, err := Text("diagram.svg")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Text(.svg) error = %v, want ErrUnsupported", err)
	}
}

func TestText_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mechanics.txt")
	const content = "Newton's second law: F = ma.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != content {
		t.Errorf("Text = %q, want %q", got, content)
	}
}

func TestText_Missing(t *testing.T) {
	_, err := Text(filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Fatal("Text on missing file: want error, got nil")
	}
	if errors.Is(err, ErrUnsupported) {
		t.Fatal("missing file should not map to ErrUnsupported")
	}
}

// writeDocx builds a minimal DOCX archive containing the given
// WordprocessingML body paragraphs.
func writeDocx(t *testing.T, dir, name, documentXML string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestText_Docx(t *testing.T) {
	const doc = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Work-energy theorem</w:t></w:r></w:p>
    <w:p><w:r><w:t>W = </w:t></w:r><w:r><w:t>ΔK</w:t></w:r></w:p>
  </w:body>
</w:document>`

	path := writeDocx(t, t.TempDir(), "theorem.docx", doc)
	got, err := Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	want := "Work-energy theorem\nW = ΔK\n"
	if got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
}

func TestText_DocxTabsAndBreaks(t *testing.T) {
	const doc = `<w:document xmlns:w="ns">
<w:body><w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p></w:body>
</w:document>`

	path := writeDocx(t, t.TempDir(), "layout.docx", doc)
	got, err := Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if want := "a\tb\nc\n"; got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
}

func TestText_DocxMissingDocumentXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/styles.xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte("<styles/>"))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	_, err = Text(path)
	if err == nil || !strings.Contains(err.Error(), "document.xml") {
		t.Fatalf("Text = %v, want missing document.xml error", err)
	}
}
