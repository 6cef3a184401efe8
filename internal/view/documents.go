// internal/view/documents.go
package view

import (
	"strings"
	"time"
	"unicode"

	"vyapara-admin/internal/common/storage"
	"vyapara-admin/internal/models"
)

// DocumentEntry is one row of the merged document view: database-tracked
// documents reconciled with what is actually present in the object store.
type DocumentEntry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	UploadDate  time.Time `json:"uploadDate"`
	StoragePath string    `json:"storagePath,omitempty"`
}

// MergeDocuments reconciles document table rows with the applicant's storage
// folder. A table row is matched to a storage object when the object's name
// contains the document's name, case-insensitively and with filename
// separators folded to spaces, so "Business Plan" matches
// "business_plan_v2.pdf". A row with no storage counterpart keeps the file
// path of its current version when one is recorded. Storage objects with no
// table counterpart become
// synthetic "Pending" entries with a humanized name and a filename-keyword
// type guess.
func MergeDocuments(docs []models.Document, objects []storage.Object, applicantID string, now time.Time) []DocumentEntry {
	matched := make(map[string]bool)

	entries := make([]DocumentEntry, 0, len(docs)+len(objects))
	for _, d := range docs {
		entry := DocumentEntry{
			ID:         d.ID,
			Name:       d.DocumentName,
			Type:       d.DocumentType,
			Status:     humanizeStatus(d.Status),
			UploadDate: d.CreatedAt,
		}
		if obj := findMatch(objects, d.DocumentName); obj != nil {
			matched[strings.ToLower(obj.Name)] = true
			entry.StoragePath = applicantID + "/" + obj.Name
		} else if v := models.CurrentVersionOf(d); v != nil {
			// no listed object for this row, but the version history still
			// knows where the latest upload lives
			entry.StoragePath = v.FilePath
		}
		entries = append(entries, entry)
	}

	for _, obj := range objects {
		if obj.Name == "" || matched[strings.ToLower(obj.Name)] {
			continue
		}
		uploaded := obj.LastModified
		if uploaded.IsZero() {
			uploaded = now
		}
		entries = append(entries, DocumentEntry{
			ID:          obj.Name,
			Name:        HumanizeFileName(obj.Name),
			Type:        GuessDocType(obj.Name),
			Status:      "Pending",
			UploadDate:  uploaded,
			StoragePath: applicantID + "/" + obj.Name,
		})
	}
	return entries
}

func findMatch(objects []storage.Object, docName string) *storage.Object {
	if docName == "" {
		return nil
	}
	needle := matchKey(docName)
	for i := range objects {
		if objects[i].Name == "" {
			continue
		}
		if strings.Contains(matchKey(objects[i].Name), needle) {
			return &objects[i]
		}
	}
	return nil
}

// matchKey lowercases a name and folds underscores and hyphens to spaces, so
// document names and filenames compare on words rather than separators.
func matchKey(name string) string {
	return strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(name))
}

// HumanizeFileName turns "business_plan_v2.pdf" into "Business Plan V2".
func HumanizeFileName(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)

	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// GuessDocType classifies a file by name keywords.
func GuessDocType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "permit"):
		return "Permit"
	case strings.Contains(lower, "plan"):
		return "Plan"
	case strings.Contains(lower, "report"):
		return "Report"
	case strings.Contains(lower, "form"):
		return "Form"
	default:
		return "Document"
	}
}

// humanizeStatus renders a stored status string for display: underscores
// become spaces and each word is capitalized. Empty statuses read "Pending".
func humanizeStatus(status string) string {
	if status == "" {
		status = "pending"
	}
	words := strings.Fields(strings.ReplaceAll(status, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
