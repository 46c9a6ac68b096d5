package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DynamicRule is a user-authored extraction rule: a regex plus message
// templates applied when it matches. The persisted JSON shape is stable; the
// rule editor and the settings store both speak it.
type DynamicRule struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Category            string `json:"category"`
	Regex               string `json:"regex"`
	TitleTemplate       string `json:"titleTemplate"`
	DescriptionTemplate string `json:"descriptionTemplate"`
	Icon                string `json:"icon"`
	IsBuiltIn           bool   `json:"isBuiltIn"`
}

// NewDynamicRule returns a rule with editor defaults and a fresh ID.
func NewDynamicRule() DynamicRule {
	return DynamicRule{
		ID:                  uuid.NewString(),
		Name:                "New Rule",
		Category:            "CUSTOM",
		TitleTemplate:       "Match Found",
		DescriptionTemplate: "Captured: {1}",
		Icon:                "Activity24",
	}
}

// Expand substitutes {1}, {2}, ... placeholders in the rule's title and
// description templates with the corresponding capture group values.
// groups[0] is the full match and is not substituted.
func (r DynamicRule) Expand(groups []string) (title, description string) {
	title, description = r.TitleTemplate, r.DescriptionTemplate
	for i := 1; i < len(groups); i++ {
		ph := fmt.Sprintf("{%d}", i)
		title = strings.ReplaceAll(title, ph, groups[i])
		description = strings.ReplaceAll(description, ph, groups[i])
	}
	return title, description
}
