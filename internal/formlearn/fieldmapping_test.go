package formlearn

import (
	"mime"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

func TestBuildFieldMappingRESTDirectName(t *testing.T) {
	fields := []DetectedField{{Name: "email"}, {Name: "full_name"}}
	body := []byte(`{"email":"a@b.com","fullName":"Ada Lovelace"}`)

	mapping := BuildFieldMapping(fields, TransportDetection{Transport: patternmodel.TransportREST}, body)

	assert.Equal(t, "email", mapping["email"])
	assert.Equal(t, "fullName", mapping["full_name"])
}

func TestBuildFieldMappingGraphQLTargetsVariables(t *testing.T) {
	fields := []DetectedField{{Name: "name"}}
	body := []byte(`{"query":"mutation X","variables":{"name":"widget"}}`)

	mapping := BuildFieldMapping(fields, TransportDetection{Transport: patternmodel.TransportGraphQL}, body)

	assert.Equal(t, "variables.name", mapping["name"])
}

func TestBuildFieldMappingJSONRPCTargetsParams(t *testing.T) {
	fields := []DetectedField{{Name: "name"}}
	body := []byte(`{"jsonrpc":"2.0","method":"create","params":{"name":"widget"}}`)

	mapping := BuildFieldMapping(fields, TransportDetection{Transport: patternmodel.TransportJSONRPC}, body)

	assert.Equal(t, "params.name", mapping["name"])
}

func TestBuildFieldMappingExcludesActionField(t *testing.T) {
	fields := []DetectedField{{Name: "_action"}, {Name: "name"}}
	body := []byte(`{"_action":"create","name":"widget"}`)

	mapping := BuildFieldMapping(fields, TransportDetection{Transport: patternmodel.TransportServerAction}, body)

	_, hasAction := mapping["_action"]
	assert.False(t, hasAction)
	assert.Equal(t, "name", mapping["name"])
}

func TestApplyFieldMappingBuildsJSONWireBody(t *testing.T) {
	mapping := map[string]string{"name": "variables.name"}
	body, contentType, err := ApplyFieldMapping(mapping, map[string]interface{}{"name": "widget"}, patternmodel.EncodingJSON)
	require.NoError(t, err)
	assert.Empty(t, contentType)
	assert.JSONEq(t, `{"variables":{"name":"widget"}}`, string(body))
}

func TestApplyFieldMappingBuildsURLEncodedWireBody(t *testing.T) {
	mapping := map[string]string{"email": "email", "full_name": "fullName"}
	body, contentType, err := ApplyFieldMapping(mapping, map[string]interface{}{"email": "a@b.com", "full_name": "Ada Lovelace"}, patternmodel.EncodingURLEncoded)
	require.NoError(t, err)
	assert.Empty(t, contentType)

	values, err := url.ParseQuery(string(body))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", values.Get("email"))
	assert.Equal(t, "Ada Lovelace", values.Get("fullName"))
}

func TestApplyFieldMappingBuildsMultipartWireBody(t *testing.T) {
	mapping := map[string]string{"email": "email"}
	body, contentType, err := ApplyFieldMapping(mapping, map[string]interface{}{"email": "a@b.com"}, patternmodel.EncodingMultipart)
	require.NoError(t, err)
	require.NotEmpty(t, contentType)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)
	assert.Contains(t, string(body), params["boundary"])
	assert.Contains(t, string(body), "a@b.com")
}
