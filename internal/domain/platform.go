package domain

// PlatformProfile is the set of facts derived from a client identity string.
type PlatformProfile struct {
	IsAppleMessages bool
	IsWhatsApp      bool
	IsTelegram      bool
	IsFacebook      bool
	IsLinkedIn      bool
	// PrefersStandardPreview is set for platforms that render embedded
	// or avatar images directly and do not need a composite.
	PrefersStandardPreview bool
}

// RequestIntent carries caller overrides of the default enhanced preview.
type RequestIntent struct {
	ForceStandardFormat bool
	ForceSimpleFormat   bool
}

// Format returns the analytics label for the intent.
func (i RequestIntent) Format() string {
	if i.ForceStandardFormat {
		return "standard"
	}
	return "enhanced"
}
