package fmeflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-jobform/pkg/formstate"
	"github.com/goliatone/go-jobform/pkg/model"
)

const (
	// ServiceSubmit queues the job and returns its id.
	ServiceSubmit = "submit"
	// ServiceTransact runs the job and waits for its status.
	ServiceTransact = "transact"

	// DefaultDatasetParameter receives uploaded or remote source datasets.
	DefaultDatasetParameter = "SourceDataset"

	tempConnection = "FME_SHAREDRESOURCE_TEMP"
)

// ErrMissingWorkspace is returned when a payload names no workspace.
var ErrMissingWorkspace = errors.New("fmeflow: payload has no workspace")

// PublishedParameter is one name/value pair sent with a job request.
type PublishedParameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Result describes an accepted submission.
type Result struct {
	JobID     int64    `json:"id,omitempty"`
	Status    string   `json:"status,omitempty"`
	Scheduled bool     `json:"scheduled,omitempty"`
	Schedule  string   `json:"schedule,omitempty"`
	Uploaded  []string `json:"uploaded,omitempty"`
}

// Submitter turns form payloads into job requests for one repository.
type Submitter struct {
	client       *Client
	repository   string
	service      string
	datasetParam string
	directory    func() string
}

// SubmitterOption customises a Submitter.
type SubmitterOption func(*Submitter)

// WithService selects the transformation service, submit or transact.
func WithService(service string) SubmitterOption {
	return func(s *Submitter) {
		if service = strings.TrimSpace(service); service != "" {
			s.service = service
		}
	}
}

// WithDatasetParameter names the published parameter that receives the
// uploaded file or the remote dataset URL.
func WithDatasetParameter(name string) SubmitterOption {
	return func(s *Submitter) {
		if name = strings.TrimSpace(name); name != "" {
			s.datasetParam = name
		}
	}
}

// WithUploadDirectory overrides how upload directory names are generated.
func WithUploadDirectory(fn func() string) SubmitterOption {
	return func(s *Submitter) {
		if fn != nil {
			s.directory = fn
		}
	}
}

// NewSubmitter returns a Submitter posting jobs to repository.
func (c *Client) NewSubmitter(repository string, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		client:       c,
		repository:   repository,
		service:      ServiceSubmit,
		datasetParam: DefaultDatasetParameter,
		directory:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type schedule struct {
	start    string
	name     string
	category string
}

// Submit uploads attached files and then either runs the workspace or, when
// a schedule start is present, registers a one-off schedule for it. An
// uploaded dataset file wins over a remote dataset URL.
func (s *Submitter) Submit(ctx context.Context, payload formstate.Payload) (Result, error) {
	workspace := strings.TrimSpace(payload.Type)
	if workspace == "" {
		return Result{}, ErrMissingWorkspace
	}

	var (
		result    Result
		sched     schedule
		dataset   any
		published = make(map[string]any, len(payload.Data))
		directory = s.directory()
	)

	// An uploaded dataset file takes precedence over a remote dataset URL.
	if _, ok := payload.Data[model.FieldUploadFile].(model.File); !ok {
		if remote := stringValue(payload.Data[model.FieldRemoteDatasetURL]); remote != "" {
			dataset = remote
		}
	}

	keys := make([]string, 0, len(payload.Data))
	for key := range payload.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := payload.Data[key]
		switch key {
		case model.FieldScheduleStart:
			sched.start = stringValue(value)
			continue
		case model.FieldScheduleName:
			sched.name = stringValue(value)
			continue
		case model.FieldScheduleCategory:
			sched.category = stringValue(value)
			continue
		case model.FieldRemoteDatasetURL:
			continue
		}

		file, ok := value.(model.File)
		if !ok {
			published[key] = value
			continue
		}
		location, err := s.upload(ctx, directory, file)
		if err != nil {
			return Result{}, err
		}
		result.Uploaded = append(result.Uploaded, location)
		if key == model.FieldUploadFile {
			dataset = location
			continue
		}
		published[key] = location
	}
	if dataset != nil {
		published[s.datasetParam] = dataset
	}

	parameters := publishedList(published)
	if sched.start != "" {
		if err := s.schedule(ctx, workspace, sched, parameters); err != nil {
			return Result{}, err
		}
		result.Scheduled = true
		result.Schedule = sched.name
		return result, nil
	}

	var job struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	endpoint := s.client.endpoint([]string{"transformations", s.service, s.repository, workspace}, nil)
	body := map[string]any{"publishedParameters": parameters}
	if err := s.client.postJSON(ctx, "submit job", endpoint, body, &job); err != nil {
		return Result{}, err
	}
	result.JobID = job.ID
	result.Status = job.Status
	s.client.logger.Info("job submitted", "workspace", workspace, "job_id", job.ID, "parameters", len(parameters))
	return result, nil
}

// Sink adapts the submitter to formstate.Sink. done receives the outcome of
// every submission.
func (s *Submitter) Sink(ctx context.Context, done func(Result, error)) formstate.Sink {
	return formstate.SinkFunc(func(payload formstate.Payload) {
		result, err := s.Submit(ctx, payload)
		if err != nil {
			s.client.logger.Warn("submission failed", "workspace", payload.Type, "error", err)
		}
		if done != nil {
			done(result, err)
		}
	})
}

func (s *Submitter) upload(ctx context.Context, directory string, file model.File) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(file.Name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "upload.dat"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	endpoint := s.client.endpoint(
		[]string{"resources", "connections", tempConnection, "filesys", directory},
		url.Values{"createDirectories": {"true"}, "overwrite": {"true"}},
	)
	headers := http.Header{
		"Content-Type":        {contentType},
		"Content-Disposition": {mime.FormatMediaType("attachment", map[string]string{"filename": name})},
	}
	if err := s.client.doWithHeaders(ctx, "upload file", http.MethodPost, endpoint, bytes.NewReader(file.Data), headers, nil); err != nil {
		return "", err
	}
	s.client.logger.Debug("file uploaded", "directory", directory, "bytes", len(file.Data))
	return fmt.Sprintf("$(%s)/%s/%s", tempConnection, directory, name), nil
}

func (s *Submitter) schedule(ctx context.Context, workspace string, sched schedule, parameters []PublishedParameter) error {
	body := map[string]any{
		"name":        sched.name,
		"category":    sched.category,
		"begin":       strings.Replace(sched.start, " ", "T", 1),
		"recurrence":  "once",
		"enabled":     true,
		"repository":  s.repository,
		"workspace":   workspace,
		"description": "",
		"request":     map[string]any{"publishedParameters": parameters},
	}
	if err := s.client.postJSON(ctx, "create schedule", s.client.endpoint([]string{"schedules"}, nil), body, nil); err != nil {
		return err
	}
	s.client.logger.Info("job scheduled", "workspace", workspace, "category", sched.category)
	return nil
}

func publishedList(values map[string]any) []PublishedParameter {
	out := make([]PublishedParameter, 0, len(values))
	for name, value := range values {
		out = append(out, PublishedParameter{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
