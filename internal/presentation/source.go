package presentation

import (
	"fmt"

	"github.com/duyamin/aria-ng/internal/reading"
	"github.com/duyamin/aria-ng/internal/validation"
)

// NotFoundError means no registered presenter class accepts the root
// document.
type NotFoundError struct {
	Location string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no presenter accepts document: %s", e.Location)
}

func (e *NotFoundError) Issue() validation.Issue {
	return validation.Issue{
		Level:    validation.Platform,
		Message:  e.Error(),
		Location: e.Location,
	}
}

// Class registers a presenter class with the source: a discriminator match
// plus a root factory.
type Class struct {
	Name       string
	CanPresent func(raw any) bool
	New        func(doc *reading.Document) Presenter
}

// Source selects a presenter class for a root raw document by matching the
// well-known discriminator field.
type Source struct {
	classes []Class
}

// NewSource returns a source over the given classes, tried in order.
func NewSource(classes ...Class) *Source {
	return &Source{classes: classes}
}

// Register appends a presenter class.
func (s *Source) Register(c Class) { s.classes = append(s.classes, c) }

// Presenter instantiates the first class accepting doc's raw root.
func (s *Source) Presenter(doc *reading.Document) (Presenter, error) {
	for _, c := range s.classes {
		if c.CanPresent(doc.Raw) {
			return c.New(doc), nil
		}
	}
	return nil, &NotFoundError{Location: doc.Locator.Location}
}

// FindClass returns the class that accepts raw, for import parsing where
// the root class is inherited.
func (s *Source) FindClass(raw any) (Class, bool) {
	for _, c := range s.classes {
		if c.CanPresent(raw) {
			return c, true
		}
	}
	return Class{}, false
}
