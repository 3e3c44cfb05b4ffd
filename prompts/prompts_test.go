package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuongle/docquery-be/types"
)

func TestClassificationPrompt(t *testing.T) {
	prompt, err := Classification(Data{
		Query:               "what data is collected",
		DocumentType:        "privacy policy",
		ConversationContext: "Previous conversation context:\nQ: earlier",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Classify this document question into ONE category:")
	assert.Contains(t, prompt, `Current Query: "what data is collected"`)
	assert.Contains(t, prompt, "privacy policy")
	assert.Contains(t, prompt, "Q: earlier")
	assert.Contains(t, prompt, "Answer with ONE word only:")
}

func TestForTaskRendersEveryTask(t *testing.T) {
	data := Data{Query: "the question", Context: "the passages"}
	for _, task := range types.AllTaskTypes {
		prompt, err := ForTask(task, data)
		require.NoError(t, err, "task: %s", task)
		assert.Contains(t, prompt, "the question")
		assert.Contains(t, prompt, "the passages")
	}
}

func TestForTaskUnknownTask(t *testing.T) {
	_, err := ForTask(types.TaskType("translation"), Data{})
	assert.Error(t, err)
}

func TestDocumentTypeDefaults(t *testing.T) {
	prompt, err := ForTask(types.TaskExplanation, Data{Query: "q", Context: "c"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "document")
}
