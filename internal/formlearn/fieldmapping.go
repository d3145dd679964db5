package formlearn

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// BuildFieldMapping matches each visible field's name against the chosen
// request body, per spec §4.7: direct name first, then camelCase and
// snake_case variants. GraphQL mappings target "variables.<field>";
// server-action mappings exclude the "_action" field; JSON-RPC mappings
// target "params.<field>".
func BuildFieldMapping(fields []DetectedField, det TransportDetection, body []byte) map[string]string {
	mapping := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.Name == "_action" {
			continue
		}
		wireKey, _ := resolveWireKey(f.Name, det, body)
		mapping[f.Name] = wireKey
	}
	return mapping
}

func resolveWireKey(name string, det TransportDetection, body []byte) (string, bool) {
	candidates := []string{name, toCamelCase(name), toSnakeCase(name)}

	prefix := ""
	switch det.Transport {
	case patternmodel.TransportGraphQL:
		prefix = "variables."
	case patternmodel.TransportJSONRPC:
		prefix = "params."
	}

	for _, c := range candidates {
		key := prefix + c
		if gjson.GetBytes(body, key).Exists() {
			return key, true
		}
	}
	// No evidence in the capture; still record a best-effort mapping so a
	// replay has somewhere to put the value.
	return prefix + candidates[0], false
}

// ApplyFieldMapping builds a wire-ready request body from submission data
// and a learned field mapping, per spec §4.7: the body is constructed per
// transport. JSON-encoded transports (REST-JSON, GraphQL, JSON-RPC,
// server-action) use sjson so nested "variables."/"params." paths are
// created without a hand-rolled path-splitting tree-builder; urlencoded
// and multipart forms get their own wire shape, matching whatever the
// submit request's Content-Type actually promises. contentType is only
// populated for encodings whose Content-Type carries state (multipart's
// boundary) — callers should prefer it over a static header when set.
func ApplyFieldMapping(mapping map[string]string, data map[string]interface{}, encoding patternmodel.Encoding) (body []byte, contentType string, err error) {
	switch encoding {
	case patternmodel.EncodingURLEncoded:
		body, err = applyURLEncoded(mapping, data)
		return body, "", err
	case patternmodel.EncodingMultipart:
		return applyMultipart(mapping, data)
	default:
		body, err = applyJSON(mapping, data)
		return body, "", err
	}
}

func applyJSON(mapping map[string]string, data map[string]interface{}) ([]byte, error) {
	body := []byte("{}")
	var err error
	for field, wireKey := range mapping {
		v, ok := data[field]
		if !ok {
			continue
		}
		body, err = sjson.SetBytes(body, wireKey, v)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

func applyURLEncoded(mapping map[string]string, data map[string]interface{}) ([]byte, error) {
	values := url.Values{}
	for field, wireKey := range mapping {
		v, ok := data[field]
		if !ok {
			continue
		}
		values.Set(wireKey, fmt.Sprint(v))
	}
	return []byte(values.Encode()), nil
}

func applyMultipart(mapping map[string]string, data map[string]interface{}) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, wireKey := range mapping {
		v, ok := data[field]
		if !ok {
			continue
		}
		if err := w.WriteField(wireKey, fmt.Sprint(v)); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func toCamelCase(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) == 1 {
		return name
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func toSnakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
