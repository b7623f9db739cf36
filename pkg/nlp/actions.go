package nlp

import "regexp"

// ActionPlaceholder replaces every parenthetical stage direction in cleaned text.
const ActionPlaceholder = "[Action]"

// actionPattern is non-greedy and does not balance nesting: the first ")" after a
// "(" closes the group.
var actionPattern = regexp.MustCompile(`(?s)\((.*?)\)`)

// ExtractActions returns the text inside each parenthetical group, left to right.
// Text without groups yields an empty, non-nil slice.
func ExtractActions(text string) []string {
	matches := actionPattern.FindAllStringSubmatch(text, -1)
	actions := make([]string, 0, len(matches))
	for _, m := range matches {
		actions = append(actions, m[1])
	}
	return actions
}

// CleanActions replaces each parenthetical group with ActionPlaceholder and leaves
// every other character where it was.
func CleanActions(text string) string {
	return actionPattern.ReplaceAllLiteralString(text, ActionPlaceholder)
}
