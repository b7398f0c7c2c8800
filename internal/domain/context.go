// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxContextNameLen = 36
	MaxOriginLen      = 256
)

var (
	ErrNameTooLong   = errors.New("context name too long")
	ErrNameEmpty     = errors.New("context name empty")
	ErrOriginTooLong = errors.New("origin too long")
)

type (
	ContextID string
	// Origin is the scheme://host[:port] a context was loaded from.
	Origin string
)

// Context describes one messaging context: the host page or an embedded frame.
type Context struct {
	ID     ContextID `json:"id"`
	Name   string    `json:"name"`
	Origin Origin    `json:"origin"`
}

// NewContext validates the name and origin and assigns a fresh ID.
func NewContext(name string, origin Origin) (*Context, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if len(origin) > MaxOriginLen {
		return nil, ErrOriginTooLong
	}
	id := ContextID(uuid.NewString())
	return &Context{ID: id, Name: name, Origin: origin}, nil
}

// RestoreContext rebuilds a context under a previously issued ID.
func RestoreContext(id ContextID, name string, origin Origin) (*Context, error) {
	if id == "" {
		return NewContext(name, origin)
	}
	c, err := NewContext(name, origin)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (c *Context) SetName(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = name
	return nil
}

func validateName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxContextNameLen {
		return ErrNameTooLong
	}
	return nil
}
