package loader

// Skip is an input row the loader could not turn into a record.
type Skip struct {
	Line   int    `json:"line" yaml:"line"`
	Reason string `json:"reason" yaml:"reason"`
}

// FileReport describes the loading of one dataset file.
type FileReport struct {
	Dataset string `json:"dataset" yaml:"dataset"`
	Path    string `json:"path" yaml:"path"`
	Format  string `json:"format" yaml:"format"`
	Rows    int    `json:"rows" yaml:"rows"`
	Loaded  int    `json:"loaded" yaml:"loaded"`
	Skipped []Skip `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

func (r *FileReport) skip(line int, reason string) {
	r.Skipped = append(r.Skipped, Skip{Line: line, Reason: reason})
}

// Report collects the file reports of a load.
type Report struct {
	Files []FileReport `json:"files" yaml:"files"`
}

// Skipped is the number of rows skipped across all files.
func (r *Report) Skipped() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Skipped)
	}
	return n
}

// File returns the report of the named dataset.
func (r *Report) File(dataset string) (FileReport, bool) {
	for _, f := range r.Files {
		if f.Dataset == dataset {
			return f, true
		}
	}
	return FileReport{}, false
}
