package api

// ComponentStatus describes one backend subsystem in a health report.
type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health is the response of GET /api/health.
type Health struct {
	Backend        ComponentStatus `json:"backend"`
	Database       ComponentStatus `json:"database"`
	LLM            ComponentStatus `json:"llm"`
	CodebaseLoaded bool            `json:"codebase_loaded"`
	FileCount      int             `json:"file_count"`
}

// OK reports whether every subsystem is operational.
func (h Health) OK() bool {
	return h.Backend.Status == StatusOK &&
		h.Database.Status == StatusOK &&
		h.LLM.Status == StatusOK
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Snippet is a cited code excerpt attached to an answer. Line bounds are
// either both set (1-based, inclusive, StartLine <= EndLine) or both zero.
type Snippet struct {
	File        string `json:"file"`
	Description string `json:"description,omitempty"`
	StartLine   int    `json:"start_line,omitempty"`
	EndLine     int    `json:"end_line,omitempty"`
	Code        string `json:"code"`
}

// HasLines reports whether the snippet carries a line range.
func (s Snippet) HasLines() bool {
	return s.StartLine > 0 && s.EndLine > 0
}

// IngestResult is the response of POST /api/upload and POST /api/github.
type IngestResult struct {
	Message   string   `json:"message"`
	Source    string   `json:"source"`
	FileCount int      `json:"file_count"`
	Files     []string `json:"files"`
}

// Answer is the response of POST /api/ask.
type Answer struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Tags      []string  `json:"tags"`
	Snippets  []Snippet `json:"snippets"`
	Timestamp string    `json:"timestamp"`
}

// RefactorResult is the response of POST /api/refactor.
type RefactorResult struct {
	Suggestions string    `json:"suggestions"`
	Snippets    []Snippet `json:"snippets"`
}

// HistoryEntry is one stored Q&A record returned by GET /api/history.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Tags      []string  `json:"tags"`
	Snippets  []Snippet `json:"snippets"`
	Source    string    `json:"source"`
	CreatedAt string    `json:"created_at"`
}

// Manifest is the response of GET /api/files.
type Manifest struct {
	Files     []string `json:"files"`
	FileCount int      `json:"file_count"`
}

// FileContent is the response of GET /api/files/{path}.
type FileContent struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	LineCount int    `json:"line_count"`
}
