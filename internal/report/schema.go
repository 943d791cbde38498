package report

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/scheduler"
	"github.com/invopop/jsonschema"
)

// ManualInput is the document a MANUAL allocation is submitted as.
type ManualInput struct {
	WorkerID       string            `json:"workerId" jsonschema:"minLength=1"`
	TaskID         string            `json:"taskId,omitempty"`
	Title          string            `json:"title,omitempty"`
	TotalHours     float64           `json:"totalHours" jsonschema:"exclusiveMinimum=0"`
	Deadline       string            `json:"deadline,omitempty" jsonschema:"description=YYYY-MM-DD or ISO timestamp"`
	TimestampAware bool              `json:"timestampAware,omitempty"`
	Entries        []scheduler.Entry `json:"entries" jsonschema:"minItems=1"`
}

var (
	dayType   = reflect.TypeOf(calendar.Day{})
	clockType = reflect.TypeOf(calendar.Clock(0))
)

// ManualEntriesSchema returns the JSON schema of ManualInput.
func ManualEntriesSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case dayType:
				return &jsonschema.Schema{Type: "string", Format: "date"}
			case clockType:
				return &jsonschema.Schema{
					Type:        "string",
					Pattern:     `^\d{1,2}\s*([hH:]\s*(\d{1,2})?)?$`,
					Description: "time of day such as 7h30 or 07:30",
				}
			}
			return nil
		},
	}
	s := r.Reflect(&ManualInput{})
	s.Title = "Manual allocation"
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	return out, nil
}

// DecodeManualInput reads a ManualInput document. Unknown fields are
// rejected.
func DecodeManualInput(r io.Reader) (*ManualInput, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var in ManualInput
	if err := dec.Decode(&in); err != nil {
		return nil, &scheduler.ValidationError{Field: "entries", Message: fmt.Sprintf("decoding manual input: %v", err)}
	}
	if in.WorkerID == "" {
		return nil, &scheduler.ValidationError{Field: "workerId", Message: "is required"}
	}
	if len(in.Entries) == 0 {
		return nil, &scheduler.ValidationError{Field: "entries", Message: "at least one entry is required"}
	}
	return &in, nil
}
