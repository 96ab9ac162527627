package remotedrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"projectdrive/models"
)

// vendorCodeKinds maps provider error codes onto the domain taxonomy.
// Lookup is case-insensitive; codes win over HTTP status.
var vendorCodeKinds = map[string]models.ErrorKind{
	"invalidrequest":             models.KindInvalidName,
	"nameinvalid":                models.KindInvalidName,
	"namealreadyexists":          models.KindNameConflict,
	"quotalimitreached":          models.KindQuotaExceeded,
	"insufficientstorage":        models.KindQuotaExceeded,
	"unauthenticated":            models.KindAuthExpired,
	"invalidauthenticationtoken": models.KindAuthExpired,
	"tokenexpired":               models.KindAuthExpired,
	"accessdenied":               models.KindPermissionDenied,
	"itemnotfound":               models.KindNotFound,
	"activitylimitreached":       models.KindRateLimited,
	"toomanyrequests":            models.KindRateLimited,
}

// ClassifyResponse turns a non-2xx provider response into a DomainError.
// The vendor code from the body decides the kind when recognized,
// otherwise the HTTP status does.
func ClassifyResponse(status int, body []byte) *models.DomainError {
	code, message := extractError(body)

	kind, ok := vendorCodeKinds[strings.ToLower(code)]
	if !ok {
		kind = classifyStatus(status)
	}
	if message == "" {
		message = fmt.Sprintf("remote drive returned status %d", status)
	}
	return models.NewRemoteError(kind, code, message)
}

// ClassifyTransport wraps connection-level failures that never produced a
// response. Already classified errors pass through unchanged.
func ClassifyTransport(err error) *models.DomainError {
	if de, ok := models.AsDomainError(err); ok {
		return de
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.WrapDomainError(models.KindUnknown, "remote drive request timed out", err)
	}
	return models.WrapDomainError(models.KindUnknown,
		fmt.Sprintf("remote drive unreachable: %v", err), err)
}

func classifyStatus(status int) models.ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return models.KindInvalidName
	case http.StatusUnauthorized:
		return models.KindAuthExpired
	case http.StatusForbidden:
		return models.KindPermissionDenied
	case http.StatusNotFound:
		return models.KindNotFound
	case http.StatusConflict:
		return models.KindNameConflict
	case http.StatusTooManyRequests:
		return models.KindRateLimited
	case http.StatusInsufficientStorage:
		return models.KindQuotaExceeded
	default:
		return models.KindUnknown
	}
}

// extractError normalizes the error body shapes providers send: a nested
// {"error":{"code","message"}} envelope, a flat {"code","message"}
// object, a JSON string, or plain text.
func extractError(body []byte) (code, message string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", ""
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Code != "" || envelope.Error.Message != "" {
			return envelope.Error.Code, strings.TrimSpace(envelope.Error.Message)
		}
		if envelope.Code != "" || envelope.Message != "" {
			return envelope.Code, strings.TrimSpace(envelope.Message)
		}
	}

	var plain string
	if json.Unmarshal(body, &plain) == nil {
		return "", strings.TrimSpace(plain)
	}
	return "", trimmed
}
