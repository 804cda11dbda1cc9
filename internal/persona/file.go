package persona

import (
	"fmt"
	"os"

	"github.com/abhisek/surveysim/internal/llm"
	"github.com/abhisek/surveysim/internal/survey"
	"github.com/tidwall/gjson"
)

// LoadFile reads a {"personas":[...]} subject list, as written by
// export.WriteSnapshot or by hand.
func LoadFile(path string) ([]survey.Subject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subjects: %w", err)
	}
	if err := llm.ValidateJSON(PersonasSchema, data); err != nil {
		return nil, fmt.Errorf("subjects file %s: %w", path, err)
	}
	subjects := decodeSubjects(gjson.GetBytes(data, "personas"), "")
	if len(subjects) == 0 {
		return nil, fmt.Errorf("subjects file %s has no personas", path)
	}
	return subjects, nil
}
