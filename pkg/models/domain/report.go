package domain

// Report represents a printable analysis of a filtered dataset
type Report struct {
	Title    string
	Dataset  string
	Mode     PeriodMode
	Metric   string
	Total    float64
	Sections []ReportSection
}

// ReportSection represents a logical section in the report
type ReportSection struct {
	Title   string
	Summary map[string]interface{}
	Details []ReportDetail
}

// ReportDetail represents detailed information within a section
type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}
