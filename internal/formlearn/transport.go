package formlearn

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

var graphqlMutationNameRe = regexp.MustCompile(`mutation\s+(\w+)`)

// TransportDetection is the result of classifying a captured mutation
// request, per spec §4.7's ordered transport-detection rules.
type TransportDetection struct {
	Transport    patternmodel.Transport
	MutationName string // populated for GraphQL
	ServerAction string // "nextjs" | "remix", populated for server-action
}

// DetectTransport classifies req in the fixed order the spec mandates:
// server action, then GraphQL, then JSON-RPC, with REST as the catch-all.
func DetectTransport(req CapturedRequest) TransportDetection {
	if det, ok := detectServerAction(req); ok {
		return det
	}
	if det, ok := detectGraphQL(req); ok {
		return det
	}
	if det, ok := detectJSONRPC(req); ok {
		return det
	}
	return TransportDetection{Transport: patternmodel.TransportREST}
}

func detectServerAction(req CapturedRequest) (TransportDetection, bool) {
	if req.Method != "POST" {
		return TransportDetection{}, false
	}
	if headerValue(req.Headers, "Next-Action") != "" {
		return TransportDetection{Transport: patternmodel.TransportServerAction, ServerAction: "nextjs"}, true
	}
	if gjson.GetBytes(req.Body, "_action").Exists() {
		return TransportDetection{Transport: patternmodel.TransportServerAction, ServerAction: "remix"}, true
	}
	ct := headerValue(req.Headers, "Content-Type")
	formEncoded := strings.Contains(ct, "application/x-www-form-urlencoded") || strings.Contains(ct, "multipart/form-data")
	if formEncoded && samePath(req.PageURL, req.URL) {
		return TransportDetection{Transport: patternmodel.TransportServerAction, ServerAction: "remix"}, true
	}
	return TransportDetection{}, false
}

// samePath reports whether pageURL and reqURL share a path, the
// same-route qualifier that distinguishes a Remix server-action
// resubmit (posts back to the page that rendered the form) from an
// ordinary REST endpoint that merely happens to use the HTML-default
// form-urlencoded content type.
func samePath(pageURL, reqURL string) bool {
	if pageURL == "" {
		return false
	}
	pu, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	ru, err := url.Parse(reqURL)
	if err != nil {
		return false
	}
	return pu.Path == ru.Path
}

func detectGraphQL(req CapturedRequest) (TransportDetection, bool) {
	if req.Method != "POST" {
		return TransportDetection{}, false
	}
	u := strings.ToLower(req.URL)
	if !strings.Contains(u, "graphql") && !strings.Contains(u, "gql") && !strings.Contains(u, "query") {
		return TransportDetection{}, false
	}
	query := gjson.GetBytes(req.Body, "query")
	if !query.Exists() {
		return TransportDetection{}, false
	}
	trimmed := strings.TrimSpace(query.String())
	if !strings.HasPrefix(trimmed, "mutation") {
		return TransportDetection{}, false
	}
	name := ""
	if m := graphqlMutationNameRe.FindStringSubmatch(trimmed); len(m) == 2 {
		name = m[1]
	}
	return TransportDetection{Transport: patternmodel.TransportGraphQL, MutationName: name}, true
}

func detectJSONRPC(req CapturedRequest) (TransportDetection, bool) {
	if req.Method != "POST" {
		return TransportDetection{}, false
	}
	ct := headerValue(req.Headers, "Content-Type")
	if !strings.Contains(ct, "application/json") {
		return TransportDetection{}, false
	}
	method := gjson.GetBytes(req.Body, "method")
	if method.Type != gjson.String {
		return TransportDetection{}, false
	}
	version := gjson.GetBytes(req.Body, "jsonrpc")
	if version.Exists() && version.String() != "2.0" {
		return TransportDetection{}, false
	}
	return TransportDetection{Transport: patternmodel.TransportJSONRPC}, true
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
