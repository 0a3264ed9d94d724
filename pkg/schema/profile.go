package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// ErrInvalidProfile is returned when a profile document does not satisfy #Profile.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile is the export/import document for one module's settings.
type Profile struct {
	Module          string         `json:"module,omitempty" yaml:"module,omitempty"`
	UpstreamVersion string         `json:"upstream_version,omitempty" yaml:"upstream_version,omitempty"`
	Settings        map[string]any `json:"settings" yaml:"settings"`
}

// ProfileSchema renders the CUE definition #Profile for the Module-scope attributes.
func (s *Schema) ProfileSchema() string {
	var b strings.Builder
	b.WriteString("// Generated from the OpenXR Toolkit attribute table ")
	b.WriteString(UpstreamVersion)
	b.WriteString(".\n#Profile: {\n")
	b.WriteString("\tmodule?:           string\n")
	b.WriteString("\tupstream_version?: string\n")
	b.WriteString("\tsettings: {\n")
	for _, def := range s.ordered[ScopeModule] {
		fmt.Fprintf(&b, "\t\t%s?: %s\n", strconv.Quote(def.Name), cueConstraint(def))
	}
	b.WriteString("\t}\n}\n")
	return b.String()
}

func cueConstraint(def AttributeDefinition) string {
	switch def.Type {
	case TypeEnumeratedInteger:
		alts := make([]string, 0, 2*len(def.Legal))
		for _, lv := range def.Legal {
			alts = append(alts, strconv.Quote(lv.Label))
		}
		for _, lv := range def.Legal {
			alts = append(alts, strconv.FormatInt(lv.Ordinal, 10))
		}
		return strings.Join(alts, " | ")
	case TypeInteger:
		c := "int"
		if def.Min != nil {
			c += fmt.Sprintf(" & >=%d", *def.Min)
		}
		if def.Max != nil {
			c += fmt.Sprintf(" & <=%d", *def.Max)
		}
		return c
	case TypeFlag:
		return "bool | 0 | 1"
	case TypeStringList:
		return "[...string]"
	}
	return "_"
}

// ValidateProfile checks p against #Profile. Settings are rewritten in place
// to the spelling #Profile expects: integral JSON numbers become ints,
// attribute names take their table case, labels and flag words are matched
// ignoring case and numeric strings become numbers.
func (s *Schema) ValidateProfile(p *Profile) error {
	if p == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidProfile)
	}
	settings := make(map[string]any, len(p.Settings))
	for k, v := range p.Settings {
		v = normalize(v)
		if def, err := s.Lookup(ScopeModule, k); err == nil {
			k = def.Name
			v = canonical(def, v)
		}
		if _, dup := settings[k]; dup {
			return fmt.Errorf("%w: setting %q given more than once", ErrInvalidProfile, k)
		}
		settings[k] = v
	}
	p.Settings = settings

	ctx := cuecontext.New()
	compiled := ctx.CompileString(s.ProfileSchema())
	if err := compiled.Err(); err != nil {
		return fmt.Errorf("failed to compile profile schema: %w", err)
	}
	def := compiled.LookupPath(cue.ParsePath("#Profile"))

	doc := map[string]any{"settings": p.Settings}
	if p.Module != "" {
		doc["module"] = p.Module
	}
	if p.UpstreamVersion != "" {
		doc["upstream_version"] = p.UpstreamVersion
	}
	data := ctx.Encode(doc)
	if err := data.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	if err := def.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.TrimSpace(cueerrors.Details(err, nil)))
	}
	return nil
}

// canonical rewrites a string setting into the form #Profile constrains. A
// string matching a legal label stays a label even when it is numeric.
func canonical(def AttributeDefinition, v any) any {
	text, ok := v.(string)
	if !ok {
		return v
	}
	switch def.Type {
	case TypeEnumeratedInteger:
		if lv, ok := def.LegalByLabel(strings.TrimSpace(text)); ok {
			return lv.Label
		}
	case TypeFlag:
		if on, ok := ParseFlagWord(text); ok {
			return on
		}
	case TypeInteger:
	default:
		return v
	}
	if n, ok := ParseNumber(text); ok {
		return n
	}
	return v
}

// normalize turns decoder output into the narrowest Go type: integral floats
// become int64 and lists become []any of normalised items.
func normalize(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case int:
		return int64(t)
	case []string:
		out := make([]any, 0, len(t))
		for _, s := range t {
			out = append(out, s)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			out = append(out, normalize(item))
		}
		return out
	default:
		return v
	}
}
