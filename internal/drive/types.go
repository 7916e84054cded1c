package drive

import (
	drive "google.golang.org/api/drive/v3"
)

// FolderMimeType is the MIME type Drive uses for folders.
const FolderMimeType = "application/vnd.google-apps.folder"

// FileInfo is a simplified Drive file for listing.
type FileInfo struct {
	ID           string
	Name         string
	MimeType     string
	Size         int64
	ModifiedTime string
	WebViewLink  string
	Parents      []string
}

func toFileInfo(f *drive.File) FileInfo {
	if f == nil {
		return FileInfo{}
	}
	return FileInfo{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		ModifiedTime: f.ModifiedTime,
		WebViewLink:  f.WebViewLink,
		Parents:      f.Parents,
	}
}
