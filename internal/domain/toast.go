package domain

// ToastKind classifies a toast for display styling.
type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastWarning ToastKind = "warning"
	ToastError   ToastKind = "error"
	ToastSuccess ToastKind = "success"
)

// BodyFormat tells the display layer how to interpret a toast body.
type BodyFormat int

const (
	// BodyPlainText renders the body verbatim.
	BodyPlainText BodyFormat = iota
	// BodySanitizedHTML renders the body as HTML that has already been
	// sanitized against injection.
	BodySanitizedHTML
)

// ToastOptions are the optional knobs a publisher may attach to a toast.
type ToastOptions struct {
	TrustedHTML bool
	TimeoutMs   int
}

// ToastPayload is the raw, heterogeneous showToast payload as published on the
// bus. Text may be a single string or an ordered slice of strings; the
// normalizer sorts this out.
type ToastPayload struct {
	Type    string
	Title   string
	Text    any
	Options *ToastOptions
}

// ToastRequest is the canonical display request produced by the normalizer.
// TimeoutMs of zero means the display layer's default.
type ToastRequest struct {
	Kind       ToastKind
	Title      string
	Body       string
	BodyFormat BodyFormat
	TimeoutMs  int
}

// ToastDisplay renders normalized toasts. Implemented by the host UI layer.
type ToastDisplay interface {
	Show(req ToastRequest)
}

func decodeToastPayload(data map[string]any) ToastPayload {
	p := ToastPayload{
		Type:  stringField(data, "type"),
		Title: stringField(data, "title"),
		Text:  data["text"],
	}
	switch opts := data["options"].(type) {
	case *ToastOptions:
		p.Options = opts
	case ToastOptions:
		p.Options = &opts
	case map[string]any:
		o := &ToastOptions{TrustedHTML: boolField(opts, "trustedHtml")}
		switch t := opts["timeout"].(type) {
		case int:
			o.TimeoutMs = t
		case float64:
			o.TimeoutMs = int(t)
		}
		p.Options = o
	}
	return p
}
