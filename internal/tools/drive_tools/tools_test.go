package drive_tools

import (
	"strings"
	"testing"

	"github.com/wkhart/workspace-mcp/internal/drive"
)

func TestFormatFileInfo(t *testing.T) {
	file := drive.FileInfo{
		ID:           "file-1",
		Name:         "report.pdf",
		MimeType:     "application/pdf",
		Size:         2048,
		ModifiedTime: "2026-08-24T09:00:00Z",
		WebViewLink:  "https://drive.google.com/file/d/file-1/view",
	}

	got := formatFileInfo(file)

	for _, want := range []string{"file-1", "report.pdf", "application/pdf", "2048 bytes", "2026-08-24T09:00:00Z", "https://drive.google.com/file/d/file-1/view"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatFileInfo() missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatFileInfo_Folder(t *testing.T) {
	folder := drive.FileInfo{
		ID:       "folder-1",
		Name:     "Reports",
		MimeType: drive.FolderMimeType,
	}

	got := formatFileInfo(folder)

	if !strings.Contains(got, drive.FolderMimeType) {
		t.Errorf("expected folder MIME type in output, got:\n%s", got)
	}
	// Folders report no size
	if strings.Contains(got, "Size:") {
		t.Errorf("expected no Size line for zero-size entry, got:\n%s", got)
	}
}
