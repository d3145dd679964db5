package language

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractFieldByCategory looks up category's value in a JSON-shaped
// response, given the page's detected language. Each alias is tried
// first as a direct top-level key, then as a case-insensitive key; the
// first non-null match wins. Uses gjson's path lookup rather than
// unmarshaling into a map, consistent with how contentMapping fields
// elsewhere in the core are resolved by symbolic path.
func ExtractFieldByCategory(data []byte, category FieldCategory, lang string) (interface{}, bool) {
	aliases := Aliases(category, lang)
	if len(aliases) == 0 {
		return nil, false
	}

	root := gjson.ParseBytes(data)

	for _, alias := range aliases {
		if v := root.Get(alias); v.Exists() && !v.IsNull() {
			return v.Value(), true
		}
	}

	var found interface{}
	matched := false
	root.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		for _, alias := range aliases {
			if strings.EqualFold(k, alias) && !value.IsNull() {
				found = value.Value()
				matched = true
				return false
			}
		}
		return true
	})

	return found, matched
}
