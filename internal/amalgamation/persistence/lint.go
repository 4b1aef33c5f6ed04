package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/mantonx/amalgam/internal/amalgamation"
	amerrors "github.com/mantonx/amalgam/internal/errors"
)

// documentSchema describes the structure of the settings document. It is
// stricter than Load: unknown keys and wrongly typed values are reported.
const documentSchema = `
#Entry: {
	className: string & !=""
	disabled:  bool
}

#Ordering: {
	order?: [...#Entry] | null
}

#Group: {
	scraperGroupName?: string
	overallOrdering?:  #Ordering | null
	customOrderings?:  {[string]: #Ordering} | null
}

#Document: [string]: #Group
`

// LintDocument reports every structural problem in a settings document,
// plus group names outside the closed set and override fields that Load
// would drop. It does not resolve source identifiers.
func LintDocument(data []byte) []error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	if !json.Valid(trimmed) {
		return []error{amerrors.NewCorruptDocument("settings document is not valid JSON", nil)}
	}

	var problems []error

	ctx := cuecontext.New()
	schema := ctx.CompileString(documentSchema).LookupPath(cue.ParsePath("#Document"))
	if err := schema.Err(); err != nil {
		return []error{fmt.Errorf("invalid document schema: %w", err)}
	}

	value := ctx.CompileBytes(trimmed)
	if err := value.Err(); err != nil {
		return []error{amerrors.NewCorruptDocument("settings document cannot be read", err)}
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		for _, e := range cueerrors.Errors(err) {
			problems = append(problems, e)
		}
	}

	// Type mismatches were reported above; keep whatever decoded.
	var groups map[string]*struct {
		CustomOrderings map[string]json.RawMessage `json:"customOrderings"`
	}
	if err := json.Unmarshal(trimmed, &groups); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return append(problems, amerrors.NewCorruptDocument("settings document cannot be read", err))
		}
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		group, err := amalgamation.ParseGroupName(key)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		gd := groups[key]
		if gd == nil {
			continue
		}
		fields := make([]string, 0, len(gd.CustomOrderings))
		for field := range gd.CustomOrderings {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			if !group.HasField(field) {
				problems = append(problems, amerrors.NewUnknownField(key, field))
			}
		}
	}

	return problems
}
