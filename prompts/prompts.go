// Package prompts holds the model prompt templates. Templates are embedded
// markdown files so prompt wording can be reviewed and diffed without
// touching Go code.
package prompts

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/vuongle/docquery-be/types"
)

//go:embed templates/*.md
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.md"))

// Data carries the values substituted into a prompt template. Context is the
// concatenated passage text, ConversationContext the digest of recent turns
// (empty for a fresh conversation).
type Data struct {
	DocumentType        string
	Query               string
	Context             string
	ConversationContext string
}

// Classification renders the routing prompt for a user query.
func Classification(data Data) (string, error) {
	return render("classify.md", data)
}

// ForTask renders the answering prompt for the given task type.
func ForTask(task types.TaskType, data Data) (string, error) {
	switch task {
	case types.TaskExplanation:
		return render("explanation.md", data)
	case types.TaskAnalysis:
		return render("analysis.md", data)
	case types.TaskExtraction:
		return render("extraction.md", data)
	case types.TaskSummary:
		return render("summary.md", data)
	default:
		return "", fmt.Errorf("no prompt template for task type %q", task)
	}
}

func render(name string, data Data) (string, error) {
	if data.DocumentType == "" {
		data.DocumentType = "document"
	}
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return sb.String(), nil
}
