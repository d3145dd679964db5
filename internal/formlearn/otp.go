package formlearn

import (
	"bytes"
	"context"
	"regexp"

	"github.com/buger/jsonparser"
	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

var otpStatusCodes = map[int]struct{}{202: {}, 401: {}, 403: {}, 428: {}}

var otpFieldNameRe = regexp.MustCompile(`(?i)requires2FA|requiresOTP|twoFactorRequired|mfaRequired|verification_required|challenge_type`)

var otpMessageRe = regexp.MustCompile(`(?i)verification code|2FA|OTP|authentication code|one-time password`)

// DetectOTP examines a submission response for a verification challenge:
// a matching status code, response field, or message each independently
// signal one, per spec §4.7.
func DetectOTP(resp *fetch.Response) (bool, string) {
	if resp == nil {
		return false, ""
	}
	if responseHasOTPField(resp.Body) {
		return true, "response field indicates a verification challenge"
	}
	if otpMessageRe.Match(resp.Body) {
		return true, "response message indicates a verification challenge"
	}
	if _, ok := otpStatusCodes[resp.StatusCode]; ok {
		return true, "status code commonly used for verification challenges"
	}
	return false, ""
}

// responseHasOTPField walks the top-level keys of a JSON object (nested
// objects are not searched) looking for a key matching otpFieldNameRe, using jsonparser
// to avoid allocating a full map for what is usually a miss.
func responseHasOTPField(body []byte) bool {
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return false
	}
	found := false
	_ = jsonparser.ObjectEach(body, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		if otpFieldNameRe.Match(key) {
			found = true
		}
		return nil
	})
	return found
}

// BuildOTPPattern learns an OTPPattern from a detected challenge response.
func BuildOTPPattern(verificationURL, codeFieldName, method string, kind patternmodel.OTPKind, indicators []string) *patternmodel.OTPPattern {
	return &patternmodel.OTPPattern{
		Indicators:      indicators,
		VerificationURL: verificationURL,
		CodeFieldName:   codeFieldName,
		Method:          method,
		Kind:            kind,
	}
}

// SubmitOTP posts the user-supplied code to the challenge's verification
// endpoint, per spec §4.7: "{<otpFieldName>: code}".
func SubmitOTP(ctx context.Context, fetcher fetch.Fetcher, challenge *patternmodel.OTPPattern, code string) (*fetch.Response, error) {
	body, _, err := ApplyFieldMapping(map[string]string{"code": challenge.CodeFieldName}, map[string]interface{}{"code": code}, patternmodel.EncodingJSON)
	if err != nil {
		return nil, err
	}
	method := challenge.Method
	if method == "" {
		method = "POST"
	}
	return fetcher.Do(ctx, fetch.Request{
		Method:  method,
		URL:     challenge.VerificationURL,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	})
}
