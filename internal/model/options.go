package model

// Options configures the behaviour of the Builder. Options are constructed by
// the public adapter in pkg/model and passed into New.
type Options struct {
	Labeler   func(string) string
	Sanitizer func(string) string

	// Capability toggles for synthetic fields.
	AllowUpload        bool
	AllowRemoteDataset bool
	AllowSchedule      bool
	UploadAccept       []string
}

func defaultOptions() Options {
	return Options{
		Labeler:   DefaultLabeler,
		Sanitizer: SanitizeLabel,
	}
}
