package domain

// Notifier shows short user-visible messages (toasts).
type Notifier interface {
	Toast(msg string)
}

// NoOpNotifier discards toasts (for testing/batch operations).
type NoOpNotifier struct{}

func (NoOpNotifier) Toast(string) {}

// UsageInfo is a small render descriptor a service exposes next to its
// items (folder counts, order mode...). Rendering is up to the front-end.
type UsageInfo struct {
	Title  string
	Fields []UsageField
}

// UsageField is one labelled value of a UsageInfo.
type UsageField struct {
	Label string
	Value string
}

// Add appends a field and returns the info for chaining.
func (u UsageInfo) Add(label, value string) UsageInfo {
	u.Fields = append(u.Fields, UsageField{Label: label, Value: value})
	return u
}
