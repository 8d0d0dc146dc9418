package processor

import "testing"

func TestIsPDF(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"statement.pdf", true},
		{"STATEMENT.PDF", true},
		{"scan.jpg", false},
		{"archive.pdf.zip", false},
	}
	for _, tc := range cases {
		if got := IsPDF(tc.path); got != tc.want {
			t.Errorf("IsPDF(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestMimeTypeForFile(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"doc.pdf", "application/pdf"},
		{"scan.png", "image/png"},
		{"scan.webp", "image/webp"},
		{"scan.jpg", "image/jpeg"},
		{"noext", "image/jpeg"},
	}
	for _, tc := range cases {
		if got := MimeTypeForFile(tc.path); got != tc.want {
			t.Errorf("MimeTypeForFile(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
