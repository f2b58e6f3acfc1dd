package altupdater

type Document struct {
	Path    string `json:"path"`
	RelPath string `json:"rel_path"`
	Content []byte `json:"-"`
}

type FileResult struct {
	Path          string   `json:"path"`
	Changed       bool     `json:"changed"`
	Pruned        bool     `json:"pruned,omitempty"`
	DepthExceeded bool     `json:"depth_exceeded,omitempty"`
	Updates       []Update `json:"updates,omitempty"`
	Skipped       string   `json:"skipped,omitempty"`
	Error         string   `json:"error,omitempty"`
}

type RunParams struct {
	CSVPath    string `json:"csv_path"`
	JSONRoot   string `json:"json_root"`
	ReportsDir string `json:"reports_dir"`
	DryRun     bool   `json:"dry_run"`
	Backup     bool   `json:"backup"`
	RewriteSrc bool   `json:"rewrite_src"`
}

type RunResult struct {
	RunID         string       `json:"run_id"`
	CSVPath       string       `json:"csv"`
	JSONRoot      string       `json:"json_root"`
	Mode          string       `json:"mode"`
	Alts          int          `json:"alts"`
	TotalFiles    int          `json:"total_json_files_scanned"`
	ChangedFiles  int          `json:"changed_files"`
	RewriteSrc    bool         `json:"rewrite_src_enabled"`
	DryRun        bool         `json:"dry_run"`
	Files         []FileResult `json:"files"`
	ModifiedFiles []string     `json:"modified_files"`
	Errors        []string     `json:"errors,omitempty"`
}

// Updates returns every update of the run, ordered by file then by emission
// order within the file.
func (r *RunResult) Updates() []Update {
	var all []Update
	for _, f := range r.Files {
		all = append(all, f.Updates...)
	}
	return all
}

type ResolveResult struct {
	Source   string `json:"source"`
	Alt      string `json:"alt"`
	Table    string `json:"table"`
	Rewrite  string `json:"rewrite_to,omitempty"`
	Resolved bool   `json:"resolved"`
}
