package render

type viewConfig struct {
	controls   ControlResolver
	locale     string
	translator Translator
	onMissing  MissingTranslationHandler
}

// ViewOption customises NewView.
type ViewOption func(*viewConfig)

// WithControls resolves control names through resolver (for example a
// widgets.Registry). Without it the field type is used.
func WithControls(resolver ControlResolver) ViewOption {
	return func(c *viewConfig) {
		c.controls = resolver
	}
}

// WithTranslator localizes labels and messages for locale.
func WithTranslator(locale string, translator Translator) ViewOption {
	return func(c *viewConfig) {
		c.locale = locale
		c.translator = translator
	}
}

// WithMissingTranslation overrides the fallback used when a key has no
// translation.
func WithMissingTranslation(handler MissingTranslationHandler) ViewOption {
	return func(c *viewConfig) {
		c.onMissing = handler
	}
}
