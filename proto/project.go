package proto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProjectItemKind discriminates the TYPE tag of a project item.
type ProjectItemKind string

const (
	ProjectItemSceneKind    ProjectItemKind = "SCENE"
	ProjectItemBinaerKind   ProjectItemKind = "BINAER"
	ProjectItemDimmerKind   ProjectItemKind = "DIMMER"
	ProjectItemJalousieKind ProjectItemKind = "JALOUSIE"
	ProjectItemNoneKind     ProjectItemKind = "NONE"
)

// ProjectItem is one entry of a PROJECT_LIST_RES items vector. Concrete
// types are ProjectScene, ProjectBinaer, ProjectDimmer, ProjectJalousie,
// and ProjectNone.
type ProjectItem interface {
	Number() uint32
	Name() string
	IsSubscribable() bool
	ItemKind() ProjectItemKind
}

// ProjectScene is a stored scene/mood recall item. Never subscribable.
type ProjectScene struct {
	NumberValue uint32
	NameValue   string
	Dimmable    bool
}

func (v ProjectScene) Number() uint32           { return v.NumberValue }
func (v ProjectScene) Name() string             { return v.NameValue }
func (v ProjectScene) IsSubscribable() bool      { return false }
func (v ProjectScene) ItemKind() ProjectItemKind { return ProjectItemSceneKind }

// ProjectBinaer is a binary switch item. Subscribable only when
// Programmable (the default).
type ProjectBinaer struct {
	NumberValue   uint32
	NameValue     string
	Programmable  bool
}

func (v ProjectBinaer) Number() uint32           { return v.NumberValue }
func (v ProjectBinaer) Name() string             { return v.NameValue }
func (v ProjectBinaer) IsSubscribable() bool      { return v.Programmable }
func (v ProjectBinaer) ItemKind() ProjectItemKind { return ProjectItemBinaerKind }

// ProjectDimmer is a dimmable item. Always subscribable.
type ProjectDimmer struct {
	NumberValue uint32
	NameValue   string
}

func (v ProjectDimmer) Number() uint32           { return v.NumberValue }
func (v ProjectDimmer) Name() string             { return v.NameValue }
func (v ProjectDimmer) IsSubscribable() bool      { return true }
func (v ProjectDimmer) ItemKind() ProjectItemKind { return ProjectItemDimmerKind }

// ProjectJalousie is a blinds/shutter item. Always subscribable.
type ProjectJalousie struct {
	NumberValue uint32
	NameValue   string
}

func (v ProjectJalousie) Number() uint32           { return v.NumberValue }
func (v ProjectJalousie) Name() string             { return v.NameValue }
func (v ProjectJalousie) IsSubscribable() bool      { return true }
func (v ProjectJalousie) ItemKind() ProjectItemKind { return ProjectItemJalousieKind }

// ProjectNone is an empty/unused channel slot. Never subscribable.
type ProjectNone struct {
	NumberValue uint32
	NameValue   string
}

func (v ProjectNone) Number() uint32           { return v.NumberValue }
func (v ProjectNone) Name() string             { return v.NameValue }
func (v ProjectNone) IsSubscribable() bool      { return false }
func (v ProjectNone) ItemKind() ProjectItemKind { return ProjectItemNoneKind }

// ProjectList is a room/list descriptor: its own number, name, the
// ordered item numbers it groups, and whether it should be surfaced.
type ProjectList struct {
	Number     uint32   `json:"NUMBER"`
	Name       string   `json:"NAME"`
	ItemsOrder []uint32 `json:"ITEMS_ORDER"`
	Visible    bool     `json:"VISIBLE"`
}

// parseProjectItem dispatches a single raw project item object on its
// TYPE tag.
func parseProjectItem(raw json.RawMessage) (ProjectItem, error) {
	var peek struct {
		Type string `json:"TYPE"`
	}
	if err := json.Unmarshal(raw, &peek); err != nil {
		return nil, fmt.Errorf("proto: peek project item TYPE: %w", err)
	}

	switch strings.ToUpper(peek.Type) {
	case "SCENE":
		var v struct {
			Number   uint32 `json:"NUMBER"`
			Name     string `json:"NAME"`
			Dimmable bool   `json:"DIMMABLE"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ProjectScene{NumberValue: v.Number, NameValue: v.Name, Dimmable: v.Dimmable}, nil

	case "BINAER":
		var v struct {
			Number       uint32          `json:"NUMBER"`
			Name         string          `json:"NAME"`
			Programmable json.RawMessage `json:"PROGRAMMABLE"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		programmable, err := parseFlexibleBool(v.Programmable, true)
		if err != nil {
			return nil, fmt.Errorf("proto: project item %d PROGRAMMABLE: %w", v.Number, err)
		}
		return ProjectBinaer{NumberValue: v.Number, NameValue: v.Name, Programmable: programmable}, nil

	case "DIMMER":
		var v struct {
			Number uint32 `json:"NUMBER"`
			Name   string `json:"NAME"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ProjectDimmer{NumberValue: v.Number, NameValue: v.Name}, nil

	case "JALOUSIE":
		var v struct {
			Number uint32 `json:"NUMBER"`
			Name   string `json:"NAME"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ProjectJalousie{NumberValue: v.Number, NameValue: v.Name}, nil

	case "NONE":
		var v struct {
			Number uint32 `json:"NUMBER"`
			Name   string `json:"NAME"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ProjectNone{NumberValue: v.Number, NameValue: v.Name}, nil

	default:
		return nil, fmt.Errorf("proto: unrecognized project item TYPE %q", peek.Type)
	}
}

// parseFlexibleBool accepts a JSON bool, a case-insensitive "true"/"false"
// string, or an absent field (returning def).
func parseFlexibleBool(raw json.RawMessage, def bool) (bool, error) {
	if len(raw) == 0 {
		return def, nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, fmt.Errorf("expected bool or string, got %s", raw)
	}
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("expected \"true\" or \"false\", got %q", s)
	}
}
