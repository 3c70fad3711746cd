package twilio

import (
	"net/http"
	"strings"

	"github.com/twilio/twilio-go/client"
)

// SignatureHeader carries Twilio's HMAC signature of an inbound webhook.
const SignatureHeader = "X-Twilio-Signature"

// WebhookValidator checks that inbound webhook requests were signed by Twilio
// with the account's auth token.
type WebhookValidator struct {
	validator client.RequestValidator
	publicURL string
}

// NewWebhookValidator creates a validator. publicURL is the webhook URL as
// configured in the Twilio console; when empty it is rebuilt from the request,
// honouring X-Forwarded-Proto.
func NewWebhookValidator(authToken, publicURL string) *WebhookValidator {
	return &WebhookValidator{
		validator: client.NewRequestValidator(authToken),
		publicURL: strings.TrimSpace(publicURL),
	}
}

// Verify reports whether r carries a valid signature over its URL and POST
// form. The form must already be parsed.
func (v *WebhookValidator) Verify(r *http.Request) bool {
	signature := r.Header.Get(SignatureHeader)
	if v == nil || signature == "" {
		return false
	}

	params := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return v.validator.Validate(v.requestURL(r), params, signature)
}

func (v *WebhookValidator) requestURL(r *http.Request) string {
	if v.publicURL != "" {
		if r.URL.RawQuery != "" {
			return v.publicURL + "?" + r.URL.RawQuery
		}
		return v.publicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
