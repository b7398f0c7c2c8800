package app

import (
	"fmt"

	"github.com/dkeye/FrameBridge/internal/domain"
)

type BackpressureAction int

const (
	DropMessage BackpressureAction = iota
	Disconnect
)

func ParseBackpressureAction(s string) (BackpressureAction, error) {
	switch s {
	case "", "drop":
		return DropMessage, nil
	case "disconnect":
		return Disconnect, nil
	default:
		return DropMessage, fmt.Errorf("unknown backpressure action %q", s)
	}
}

type Policy interface {
	OnBackPressure(meta *domain.Context) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(*domain.Context) BackpressureAction {
	return p.Action
}
