package formlearn

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DetectionScript is evaluated inside the browser page to enumerate a
// form's fields. selector narrows to one form; empty means "the first
// form on the page".
func DetectionScript(selector string) string {
	sel := selector
	if sel == "" {
		sel = "form"
	}
	return fmt.Sprintf(`(() => {
  const form = document.querySelector(%q);
  if (!form) return null;
  const stableSelector = (el) => el.id ? ('#' + el.id) : (el.name ? ('[name="' + el.name + '"]') : el.tagName.toLowerCase());
  const fields = [];
  const fileFields = [];
  const csrfFields = [];
  form.querySelectorAll('input, select, textarea').forEach((el) => {
    const name = el.name || el.id || '';
    if (!name) return;
    if (el.type === 'file') {
      fileFields.push({fieldName: name, accept: el.accept || '', multiple: !!el.multiple});
      return;
    }
    const field = {name, type: el.type || el.tagName.toLowerCase(), required: !!el.required, value: el.value || '', selector: stableSelector(el)};
    if (el.type === 'hidden' && /csrf|token|authenticity/i.test(name)) {
      csrfFields.push(field);
    }
    fields.push(field);
  });
  const trigger = form.querySelector('button[type="submit"]') || form.querySelector('input[type="submit"]') || form.querySelector('button');
  return {
    action: form.action || '',
    method: (form.method || 'get').toUpperCase(),
    enctype: fileFields.length > 0 ? 'multipart/form-data' : (form.enctype || ''),
    fields,
    fileFields,
    csrfFields,
    submitTrigger: trigger ? stableSelector(trigger) : '',
  };
})()`, sel)
}

var detectedFormSchema = gojsonschema.NewStringLoader(`{
  "type": "object",
  "required": ["fields"],
  "properties": {
    "action": {"type": "string"},
    "method": {"type": "string"},
    "enctype": {"type": "string"},
    "fields": {"type": "array"},
    "fileFields": {"type": "array"},
    "csrfFields": {"type": "array"},
    "submitTrigger": {"type": "string"}
  }
}`)

// ParseDetectedForm decodes the raw value returned by Evaluate, validating
// its shape against detectedFormSchema first: a page can return arbitrary
// JS values, and a hand-rolled detection script elsewhere on the page
// (or a compromised page) should fail loudly here rather than panic
// deeper in the pipeline on a type assertion.
func ParseDetectedForm(raw interface{}) (*DetectedForm, error) {
	if raw == nil {
		return nil, fmt.Errorf("formlearn: no form found for selector")
	}
	body, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("formlearn: re-marshal detection result: %w", err)
	}

	result, err := gojsonschema.Validate(detectedFormSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("formlearn: validate detection result: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("formlearn: detection result shape invalid: %s", strings.Join(msgs, "; "))
	}

	var form DetectedForm
	if err := json.Unmarshal(body, &form); err != nil {
		return nil, fmt.Errorf("formlearn: decode detection result: %w", err)
	}
	return &form, nil
}
