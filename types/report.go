package types

import "time"

// ReportRequest carries the synthesized free-text content of a chest X-ray
// report. Empty fields fall back to fixed placeholders at render time.
type ReportRequest struct {
	PatientName string `json:"patient_name"`
	AgeSex      string `json:"age_sex"`
	RefBy       string `json:"ref_by"`
	Date        string `json:"date"`
	XrayNo      string `json:"xray_no"`
	ExamTitle   string `json:"exam_title"`
	Findings    string `json:"findings"`
	Conclusion  string `json:"conclusion"`
	Advice      string `json:"advice"`
}

// ReportArtifact records one saved report version in the artifact index.
type ReportArtifact struct {
	ID        int       `json:"id" db:"id"`
	Filename  string    `json:"filename" db:"filename"`
	Version   int       `json:"version" db:"version"`
	SizeBytes int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
