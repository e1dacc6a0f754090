// Package notify converts heterogeneous toast payloads into canonical display
// requests. Nothing here renders anything; the normalized request is handed to
// the host display layer.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/gartnera/desktop/internal/domain"
	"github.com/gartnera/desktop/internal/metrics"
)

// Normalizer produces a ToastRequest from a raw showToast payload.
type Normalizer struct {
	policy *bluemonday.Policy
}

func NewNormalizer() *Normalizer {
	// StrictPolicy strips every element, leaving escaped text only.
	return &Normalizer{policy: bluemonday.StrictPolicy()}
}

// Normalize applies the body rules: a single string (or one-element slice)
// stays plain text; multiple elements are each sanitized against HTML
// injection and wrapped in paragraphs. A malformed text payload yields
// domain.ErrMalformedToast together with a usable empty-bodied request.
func (n *Normalizer) Normalize(payload domain.ToastPayload) (domain.ToastRequest, error) {
	req := domain.ToastRequest{
		Kind:       toastKind(payload.Type),
		Title:      payload.Title,
		BodyFormat: domain.BodyPlainText,
	}

	parts, single, err := coerceText(payload.Text)
	switch {
	case err != nil:
		req.Body = ""
	case single != nil:
		req.Body = *single
	default:
		var b strings.Builder
		for _, part := range parts {
			b.WriteString("<p>")
			b.WriteString(n.policy.Sanitize(part))
			b.WriteString("</p>")
		}
		req.Body = b.String()
		req.BodyFormat = domain.BodySanitizedHTML
	}

	if payload.Options != nil {
		if payload.Options.TrustedHTML {
			req.BodyFormat = domain.BodySanitizedHTML
		}
		if payload.Options.TimeoutMs > 0 {
			req.TimeoutMs = payload.Options.TimeoutMs
		}
	}

	return req, err
}

// coerceText splits the heterogeneous text field into either a single plain
// string or a multi-part slice. One-element slices collapse to the single case.
func coerceText(text any) (parts []string, single *string, err error) {
	switch v := text.(type) {
	case string:
		return nil, &v, nil
	case []string:
		parts = v
	case []any:
		parts = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, nil, fmt.Errorf("text element %T: %w", item, domain.ErrMalformedToast)
			}
			parts = append(parts, s)
		}
	default:
		return nil, nil, fmt.Errorf("text %T: %w", text, domain.ErrMalformedToast)
	}

	if len(parts) == 1 {
		return nil, &parts[0], nil
	}
	return parts, nil, nil
}

func toastKind(t string) domain.ToastKind {
	switch t {
	case string(domain.ToastWarning):
		return domain.ToastWarning
	case string(domain.ToastError):
		return domain.ToastError
	case string(domain.ToastSuccess):
		return domain.ToastSuccess
	default:
		return domain.ToastInfo
	}
}

// Notifier normalizes and forwards toasts to the display collaborator.
type Notifier struct {
	normalizer *Normalizer
	display    domain.ToastDisplay
}

func NewNotifier(display domain.ToastDisplay) *Notifier {
	return &Notifier{normalizer: NewNormalizer(), display: display}
}

// Show normalizes the payload and hands it to the display layer. Malformed
// payloads are logged and still shown with an empty body rather than dropped.
func (n *Notifier) Show(ctx context.Context, payload domain.ToastPayload) {
	req, err := n.normalizer.Normalize(payload)
	if err != nil {
		slog.WarnContext(ctx, "Malformed toast payload, showing empty body", "title", payload.Title, "error", err)
	}
	metrics.ToastsShownTotal.WithLabelValues(string(req.Kind)).Inc()
	n.display.Show(req)
}
