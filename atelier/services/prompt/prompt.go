// Package prompt assembles the text sent to the completion model. Two
// templates exist: initial creation for a fresh transcript, iterative
// edit once a conversation (and code) already exists.
package prompt

import (
	"fmt"

	"atelier/atelier/types"
)

const initialTemplate = `You are an expert React and Tailwind CSS developer. Create a single, self-contained React component using TypeScript (TSX) and vanilla CSS based on the user's request.

**Constraints:**
- Provide the TSX code and CSS code separately.
- The component should be functional and use hooks.
- Do not include any external dependencies other than React.
- The generated TSX must be a single default export.

**Output Format:**
Respond ONLY with a single minified JSON object containing two keys: "tsx" and "css". Example: {"tsx":"...","css":"..."}

**User Request:**
%q`

const editTemplate = `You are an expert React and Tailwind CSS developer. Your task is to modify the provided component code based on the user's request.

**Existing TSX Code:**
` + "```tsx\n%s\n```" + `

**Existing CSS Code:**
` + "```css\n%s\n```" + `

**Modification Request:**
%q

**Instructions:**
- Apply the change to the code. Provide the complete, updated TSX and CSS.
- Respond ONLY with a single minified JSON object containing two keys: "tsx" and "css". Example: {"tsx":"...","css":"..."}`

// Build picks the template from the transcript length: one message is
// an initial creation, anything longer is an edit of the current code.
func Build(history types.ChatHistory, currentCode *types.GeneratedCode) (string, error) {
	if len(history) == 0 {
		return "", types.ErrEmptyHistory
	}

	lastUserMessage := history[len(history)-1].Content

	if len(history) <= 1 {
		return fmt.Sprintf(initialTemplate, lastUserMessage), nil
	}

	code := types.GeneratedCode{}
	if currentCode != nil {
		code = *currentCode
	}
	return fmt.Sprintf(editTemplate, code.TSX, code.CSS, lastUserMessage), nil
}
