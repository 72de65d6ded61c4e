// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "fmt"

// Post is an insight article.
type Post struct {
	Document
	PostType string `json:"postType,omitempty"`
	Author   string `json:"author,omitempty"`
}

// ContentType implements Item.
func (*Post) ContentType() ContentType { return TypePost }

// Validate implements Item.
func (p *Post) Validate() error { return p.validate(TypePost) }

// CaseStudy describes a client engagement.
type CaseStudy struct {
	Document
	Client   string `json:"client,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// ContentType implements Item.
func (*CaseStudy) ContentType() ContentType { return TypeCaseStudy }

// Validate implements Item.
func (c *CaseStudy) Validate() error { return c.validate(TypeCaseStudy) }

// Whitepaper is a downloadable document.
type Whitepaper struct {
	Document
	FileURL string `json:"fileUrl,omitempty"`
	Pages   int    `json:"pages,omitempty"`
}

// ContentType implements Item.
func (*Whitepaper) ContentType() ContentType { return TypeWhitepaper }

// Validate implements Item.
func (w *Whitepaper) Validate() error { return w.validate(TypeWhitepaper) }

// WebinarStatus is the lifecycle state of a webinar.
type WebinarStatus string

// Webinar statuses.
const (
	WebinarScheduled WebinarStatus = "scheduled"
	WebinarLive      WebinarStatus = "live"
	WebinarCompleted WebinarStatus = "completed"
	WebinarCancelled WebinarStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s WebinarStatus) Valid() bool {
	switch s {
	case WebinarScheduled, WebinarLive, WebinarCompleted, WebinarCancelled:
		return true
	}
	return false
}

// Webinar is a scheduled online event.
type Webinar struct {
	Document
	ScheduledAt     string        `json:"scheduledAt,omitempty"`
	Status          WebinarStatus `json:"status,omitempty"`
	RegistrationURL string        `json:"registrationUrl,omitempty"`
	RecordingURL    string        `json:"recordingUrl,omitempty"`
	Speakers        []string      `json:"speakers,omitempty"`
}

// ContentType implements Item.
func (*Webinar) ContentType() ContentType { return TypeWebinar }

// Validate implements Item.
func (w *Webinar) Validate() error {
	if err := w.validate(TypeWebinar); err != nil {
		return err
	}
	if w.Status != "" && !w.Status.Valid() {
		return fmt.Errorf("%w: webinar %s has unknown status %q", ErrInvalidDocument, w.ID, w.Status)
	}
	if w.ScheduledAt != "" && parseTimestamp(w.ScheduledAt).IsZero() {
		return fmt.Errorf("%w: webinar %s has malformed scheduledAt %q", ErrInvalidDocument, w.ID, w.ScheduledAt)
	}
	return nil
}

// SalaryRange is an advertised pay band.
type SalaryRange struct {
	Min      int    `json:"min,omitempty"`
	Max      int    `json:"max,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Job posting statuses.
const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

// JobPosting is an open or closed vacancy.
type JobPosting struct {
	Document
	Department          string       `json:"department,omitempty"`
	Location            string       `json:"location,omitempty"`
	EmploymentType      string       `json:"employmentType,omitempty"`
	SalaryRange         *SalaryRange `json:"salaryRange,omitempty"`
	ApplicationDeadline string       `json:"applicationDeadline,omitempty"`
	Status              string       `json:"status,omitempty"`
}

// ContentType implements Item.
func (*JobPosting) ContentType() ContentType { return TypeJobPosting }

// Validate implements Item.
func (j *JobPosting) Validate() error {
	if err := j.validate(TypeJobPosting); err != nil {
		return err
	}
	if r := j.SalaryRange; r != nil && r.Max > 0 && r.Min > r.Max {
		return fmt.Errorf("%w: job posting %s has salary min %d above max %d", ErrInvalidDocument, j.ID, r.Min, r.Max)
	}
	return nil
}

// IsOpen reports whether the posting accepts applications.
func (j *JobPosting) IsOpen() bool {
	return j.Status == JobStatusOpen
}

// NewsPress is a press release or media mention.
type NewsPress struct {
	Document
	Outlet      string `json:"outlet,omitempty"`
	ExternalURL string `json:"externalUrl,omitempty"`
}

// ContentType implements Item.
func (*NewsPress) ContentType() ContentType { return TypeNewsPress }

// Validate implements Item.
func (n *NewsPress) Validate() error { return n.validate(TypeNewsPress) }
