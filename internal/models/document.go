// internal/models/document.go
package models

import "time"

// Document is a reviewable document attached to an application. Versions are
// appended, never mutated; CurrentVersion points into the version list.
type Document struct {
	ID             string            `json:"id"`
	ApplicationID  string            `json:"applicationId"`
	DocumentName   string            `json:"documentName"`
	DocumentType   string            `json:"documentType"`
	Status         string            `json:"status"`
	CurrentVersion int               `json:"currentVersion"`
	ReviewNotes    string            `json:"reviewNotes,omitempty"`
	ReviewedBy     string            `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time        `json:"reviewedAt,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	Versions       []DocumentVersion `json:"versions"`
}

// DocumentVersion is one uploaded revision of a document.
type DocumentVersion struct {
	ID            string    `json:"id"`
	VersionNumber int       `json:"versionNumber"`
	FilePath      string    `json:"filePath"`
	FileName      string    `json:"fileName"`
	FileSize      int64     `json:"fileSize"`
	MimeType      string    `json:"mimeType,omitempty"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// CurrentVersionOf returns the version matching the document's current
// pointer, or the latest upload when the pointer does not resolve.
func CurrentVersionOf(doc Document) *DocumentVersion {
	for i := range doc.Versions {
		if doc.Versions[i].VersionNumber == doc.CurrentVersion {
			return &doc.Versions[i]
		}
	}
	if len(doc.Versions) == 0 {
		return nil
	}
	latest := &doc.Versions[0]
	for i := range doc.Versions {
		if doc.Versions[i].VersionNumber > latest.VersionNumber {
			latest = &doc.Versions[i]
		}
	}
	return latest
}
