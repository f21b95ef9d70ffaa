// Package types provides the data model shared by the simulation engine, its server and its CLI.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// SourceKind identifies how the resume reached the engine.
type SourceKind string

const (
	// SourceText is resume content supplied inline as raw text.
	SourceText SourceKind = "text"
	// SourcePDFReference is a URL to a document that must be fetched and extracted.
	SourcePDFReference SourceKind = "pdf_reference"
)

// ResumeSource is the resume input of a simulation. It is implemented only by
// TextSource and URLSource, so a request always carries exactly one source.
type ResumeSource interface {
	Kind() SourceKind
	isResumeSource()
}

// TextSource carries the resume as raw text.
type TextSource struct {
	Text string
}

// Kind implements ResumeSource.
func (TextSource) Kind() SourceKind { return SourceText }
func (TextSource) isResumeSource()  {}

// URLSource references a resume document (usually a PDF) by URL.
type URLSource struct {
	URL string
}

// Kind implements ResumeSource.
func (URLSource) Kind() SourceKind { return SourcePDFReference }
func (URLSource) isResumeSource()  {}

// SimulationRequest is the validated, typed input of one simulation.
type SimulationRequest struct {
	TargetRoleRaw   string
	Resume          ResumeSource
	PriorResumeText *string
	TargetComp      *string
	UserID          string
	ApplicationID   string
}

// Validate checks the caller contract: a non-blank resume source must be present.
// An empty TargetRoleRaw is accepted.
func (r SimulationRequest) Validate() error {
	switch src := r.Resume.(type) {
	case nil:
		return ErrMissingResume()
	case TextSource:
		if strings.TrimSpace(src.Text) == "" {
			return ErrMissingResume()
		}
	case URLSource:
		if strings.TrimSpace(src.URL) == "" {
			return ErrMissingResume()
		}
	case *TextSource:
		if src == nil {
			return ErrMissingResume()
		}
		return SimulationRequest{Resume: *src}.Validate()
	case *URLSource:
		if src == nil {
			return ErrMissingResume()
		}
		return SimulationRequest{Resume: *src}.Validate()
	}
	return nil
}

// WireRequest is the JSON body of the simulation RPC. It is untyped on the
// wire and must be converted with ToRequest before reaching the engine.
type WireRequest struct {
	TargetRoleRaw   string  `json:"targetRoleRaw"`
	ResumeText      *string `json:"resumeText,omitempty"`
	ResumeURL       *string `json:"resumeUrl,omitempty" validate:"omitempty,url"`
	PriorResumeText *string `json:"priorResumeText,omitempty"`
	UserID          string  `json:"userId,omitempty" validate:"max=128"`
	ApplicationID   string  `json:"applicationId,omitempty" validate:"max=128"`
	TargetComp      *string `json:"targetComp,omitempty" validate:"omitempty,max=256"`
}

var wireValidator = validator.New()

// ToRequest validates the wire payload and converts it into a SimulationRequest.
// Blank sources count as absent; supplying both sources is rejected as ambiguous.
func (w *WireRequest) ToRequest() (SimulationRequest, error) {
	if err := wireValidator.Struct(w); err != nil {
		return SimulationRequest{}, fromValidatorError(err)
	}

	hasText := w.ResumeText != nil && strings.TrimSpace(*w.ResumeText) != ""
	hasURL := w.ResumeURL != nil && strings.TrimSpace(*w.ResumeURL) != ""

	req := SimulationRequest{
		TargetRoleRaw:   w.TargetRoleRaw,
		PriorResumeText: w.PriorResumeText,
		TargetComp:      blankToNil(w.TargetComp),
		UserID:          w.UserID,
		ApplicationID:   w.ApplicationID,
	}

	switch {
	case hasText && hasURL:
		return SimulationRequest{}, &InvalidRequestError{
			Field:   "resume",
			Message: "Provide either resumeText or resumeUrl, not both.",
		}
	case hasText:
		req.Resume = TextSource{Text: *w.ResumeText}
	case hasURL:
		req.Resume = URLSource{URL: strings.TrimSpace(*w.ResumeURL)}
	default:
		return SimulationRequest{}, ErrMissingResume()
	}

	return req, nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func fromValidatorError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &InvalidRequestError{Field: "request", Message: err.Error()}
	}
	fe := verrs[0]
	field := wireFieldNames[fe.StructField()]
	if field == "" {
		field = fe.Field()
	}
	switch fe.Tag() {
	case "url":
		return &InvalidRequestError{Field: field, Message: field + " must be a valid URL."}
	case "max":
		return &InvalidRequestError{Field: field, Message: field + " is too long."}
	default:
		return &InvalidRequestError{Field: field, Message: field + " is invalid."}
	}
}

var wireFieldNames = map[string]string{
	"ResumeURL":     "resumeUrl",
	"UserID":        "userId",
	"ApplicationID": "applicationId",
	"TargetComp":    "targetComp",
}

// Source returns the resume source in value form.
func (r SimulationRequest) Source() ResumeSource {
	switch src := r.Resume.(type) {
	case *TextSource:
		if src != nil {
			return *src
		}
		return nil
	case *URLSource:
		if src != nil {
			return *src
		}
		return nil
	}
	return r.Resume
}
