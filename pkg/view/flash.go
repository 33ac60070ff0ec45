package view

type FlashKind string

const (
	FlashInfo    FlashKind = "info"
	FlashSuccess FlashKind = "success"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot message shown after a redirect.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Class is the CSS modifier for the alert box.
func (f Flash) Class() string {
	if f.Kind == "" {
		return "alert-" + string(FlashInfo)
	}
	return "alert-" + string(f.Kind)
}
