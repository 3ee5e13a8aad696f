package prompt

import (
	_ "embed"
	"encoding/json"
	"io"
	"strings"

	"github.com/fwojciec/probdoc"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed sections.schema.json
var sectionsSchemaJSON string

var sectionsSchema = gojsonschema.NewStringLoader(sectionsSchemaJSON)

// LoadChecklists reads a JSON object mapping template kind names to ordered
// section lists and merges it over the defaults. The document is checked
// against an embedded JSON Schema first; violations are EINVALID and name
// every offending field.
func LoadChecklists(r io.Reader) (probdoc.Checklists, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, probdoc.WrapError(probdoc.EIO, err, "failed to read section checklists")
	}

	result, err := gojsonschema.Validate(sectionsSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, probdoc.WrapError(probdoc.EINVALID, err, "section checklists are not valid JSON")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.Field()+": "+e.Description())
		}
		return nil, probdoc.Errorf(probdoc.EINVALID, "invalid section checklists: %s", strings.Join(msgs, "; "))
	}

	var raw map[string]probdoc.Checklist
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, probdoc.WrapError(probdoc.EINVALID, err, "failed to decode section checklists")
	}

	out := probdoc.DefaultChecklists()
	for name, list := range raw {
		kind, err := probdoc.ParseTemplateKind(name)
		if err != nil {
			return nil, err
		}
		out[kind] = list
	}
	return out, nil
}
