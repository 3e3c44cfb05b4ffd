package types

// TaskType is the closed set of categories a query can be routed to.
type TaskType string

const (
	TaskExplanation TaskType = "explanation"
	TaskAnalysis    TaskType = "analysis"
	TaskExtraction  TaskType = "extraction"
	TaskSummary     TaskType = "summary"

	// DefaultTaskType is the fallback category when classification is ambiguous.
	DefaultTaskType = TaskExplanation
)

// AllTaskTypes lists every valid task type.
var AllTaskTypes = []TaskType{TaskExplanation, TaskAnalysis, TaskExtraction, TaskSummary}

// ParseTaskType returns the TaskType matching s and whether it is a member
// of the enumeration.
func ParseTaskType(s string) (TaskType, bool) {
	for _, t := range AllTaskTypes {
		if string(t) == s {
			return t, true
		}
	}
	return DefaultTaskType, false
}

// GenerateOptions controls a single generation call.
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// RetrievedPassage is a query-scoped view over a chunk. Relevance is
// 1 - distance clamped to [0, 1].
type RetrievedPassage struct {
	Text      string  `json:"text"`
	Distance  float32 `json:"distance"`
	Relevance float32 `json:"relevance"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// QueryResult is the outermost result of the query pipeline. ProcessQuery
// always returns a well-formed QueryResult, never an error.
type QueryResult struct {
	Answer           string             `json:"answer"`
	TaskType         TaskType           `json:"task_type"`
	OriginalSections []RetrievedPassage `json:"original_sections"`
	Status           string             `json:"status"`
}

// ProcessResult reports the outcome of document ingestion.
type ProcessResult struct {
	Status          string `json:"status"`
	DocumentID      string `json:"document_id"`
	TotalChunks     int    `json:"total_chunks"`
	TotalCharacters int    `json:"total_characters"`
	Error           string `json:"error,omitempty"`
}
