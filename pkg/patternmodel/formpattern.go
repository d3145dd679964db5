package patternmodel

// Transport is the closed set of form-submission transports C7 can detect.
type Transport string

const (
	TransportREST         Transport = "REST"
	TransportGraphQL      Transport = "GraphQL"
	TransportJSONRPC      Transport = "JSON-RPC"
	TransportServerAction Transport = "server-action"
	TransportWebSocket    Transport = "WebSocket"
)

// Encoding is the body encoding a learned form pattern submits with.
type Encoding string

const (
	EncodingURLEncoded Encoding = "urlencoded"
	EncodingMultipart  Encoding = "multipart"
	EncodingJSON       Encoding = "json"
)

// DynamicFieldType is the closed set of well-known dynamic-value kinds.
type DynamicFieldType string

const (
	DynamicUserID    DynamicFieldType = "user_id"
	DynamicSessionID DynamicFieldType = "session_id"
	DynamicNonce     DynamicFieldType = "nonce"
	DynamicTimestamp DynamicFieldType = "timestamp"
	DynamicUUID      DynamicFieldType = "uuid"
	DynamicCSRFToken DynamicFieldType = "csrf_token"
	DynamicCustom    DynamicFieldType = "custom"
)

// ExtractionStrategy is how a dynamic field's value is obtained at
// submit time.
type ExtractionStrategy string

const (
	StrategyDOM          ExtractionStrategy = "dom"
	StrategyAPI          ExtractionStrategy = "api"
	StrategyCookie       ExtractionStrategy = "cookie"
	StrategyURLParam     ExtractionStrategy = "url_param"
	StrategyLocalStorage ExtractionStrategy = "localStorage"
	StrategyComputed     ExtractionStrategy = "computed"
)

// DynamicField describes a form field whose value must be fetched or
// computed per submission rather than replayed verbatim.
type DynamicField struct {
	FieldName string             `json:"fieldName"`
	Type      DynamicFieldType   `json:"type"`
	Strategy  ExtractionStrategy `json:"strategy"`
	Selector  string             `json:"selector,omitempty"`
}

// FileField describes a file input on the source form.
type FileField struct {
	FieldName string `json:"fieldName"`
	Accept    string `json:"accept,omitempty"`
	Multiple  bool   `json:"multiple"`
}

// OTPKind distinguishes what a one-time-passcode challenge actually wants.
type OTPKind string

const (
	OTPKindSMS   OTPKind = "sms"
	OTPKindEmail OTPKind = "email"
	OTPKindTOTP  OTPKind = "totp"
	OTPKindOther OTPKind = "other"
)

// OTPPattern records how to detect and satisfy a verification challenge
// raised after a form submission.
type OTPPattern struct {
	Indicators         []string `json:"indicators"`
	VerificationURL    string   `json:"verificationUrl"`
	CodeFieldName      string   `json:"codeFieldName"`
	Method             string   `json:"method"`
	Kind               OTPKind  `json:"kind"`
}

// FormPattern extends LearnedPattern with everything needed to replay a
// form submission without driving a browser.
type FormPattern struct {
	LearnedPattern

	SubmitURL     string            `json:"submitUrl"`
	Transport     Transport         `json:"transport"`
	Encoding      Encoding          `json:"encoding"`
	FieldMapping  map[string]string `json:"fieldMapping"` // form-field -> wire-field
	FileFields    []FileField       `json:"fileFields,omitempty"`
	CSRFExtractor *Extractor        `json:"csrfExtractor,omitempty"`
	DynamicFields []DynamicField    `json:"dynamicFields,omitempty"`
	OTP           *OTPPattern       `json:"otp,omitempty"`

	SuccessIndicators SuccessIndicators `json:"successIndicators"`
}

// SuccessIndicators is how a replayed submission is judged to have worked.
type SuccessIndicators struct {
	StatusCodes     []int    `json:"statusCodes"`
	ResponseFields  []string `json:"responseFields,omitempty"`
}
