// Package ids defines the opaque namespaced identifiers used across the
// planner: skills, actions, items and shop offers. All ids follow the
// "<namespace>:<localname>" convention; action ids additionally embed the
// owning skill as "<skill_id>/<action_id>".
package ids

import (
	"fmt"
	"strings"
)

// SkillID identifies a trainable skill, e.g. "melvor:woodcutting".
type SkillID string

// ItemID identifies an inventory item, e.g. "melvor:oak_log".
type ItemID string

// OfferID identifies a shop offer, e.g. "melvor:iron_axe".
type OfferID string

// ActionID identifies an activity within a skill. The serial form is the
// skill id and the action's own namespaced name separated by a literal
// slash: "melvor:woodcutting/melvor:oak_tree".
type ActionID string

// ParseNamespaced validates a "<namespace>:<localname>" pair and returns
// the two halves. Both halves must be non-empty and contain no further
// separator characters, which keeps the encoding injective.
func ParseNamespaced(s string) (namespace, local string, err error) {
	ns, local, ok := strings.Cut(s, ":")
	if !ok {
		return "", "", fmt.Errorf("id %q missing namespace separator", s)
	}
	if ns == "" || local == "" {
		return "", "", fmt.Errorf("id %q has empty namespace or local name", s)
	}
	if strings.ContainsAny(ns, ":/") || strings.ContainsAny(local, ":/") {
		return "", "", fmt.Errorf("id %q contains reserved separator", s)
	}
	return ns, local, nil
}

// ParseSkillID validates a skill id.
func ParseSkillID(s string) (SkillID, error) {
	if _, _, err := ParseNamespaced(s); err != nil {
		return "", fmt.Errorf("skill id: %w", err)
	}
	return SkillID(s), nil
}

// ParseItemID validates an item id.
func ParseItemID(s string) (ItemID, error) {
	if _, _, err := ParseNamespaced(s); err != nil {
		return "", fmt.Errorf("item id: %w", err)
	}
	return ItemID(s), nil
}

// ParseOfferID validates a shop offer id.
func ParseOfferID(s string) (OfferID, error) {
	if _, _, err := ParseNamespaced(s); err != nil {
		return "", fmt.Errorf("offer id: %w", err)
	}
	return OfferID(s), nil
}

// ParseActionID validates a full action id of the form
// "<skill>/<action>", each half itself a namespaced pair.
func ParseActionID(s string) (ActionID, error) {
	skillPart, actionPart, ok := strings.Cut(s, "/")
	if !ok {
		return "", fmt.Errorf("action id %q missing skill separator", s)
	}
	if _, _, err := ParseNamespaced(skillPart); err != nil {
		return "", fmt.Errorf("action id skill half: %w", err)
	}
	if _, _, err := ParseNamespaced(actionPart); err != nil {
		return "", fmt.Errorf("action id action half: %w", err)
	}
	return ActionID(s), nil
}

// NewActionID builds an action id from its two halves. The halves are
// assumed to already be valid namespaced ids.
func NewActionID(skill SkillID, local string) ActionID {
	return ActionID(string(skill) + "/" + local)
}

// Skill returns the skill half of an action id. Calling this on an id
// that did not come from ParseActionID or NewActionID is a programmer
// error and panics.
func (a ActionID) Skill() SkillID {
	skillPart, _, ok := strings.Cut(string(a), "/")
	if !ok {
		panic(fmt.Sprintf("malformed action id %q", string(a)))
	}
	return SkillID(skillPart)
}

// LocalName returns the action half of an action id.
func (a ActionID) LocalName() string {
	_, actionPart, ok := strings.Cut(string(a), "/")
	if !ok {
		panic(fmt.Sprintf("malformed action id %q", string(a)))
	}
	return actionPart
}

// DisplayName renders an id's local name for humans: the namespace is
// dropped and underscores become spaces.
func DisplayName[T ~string](id T) string {
	s := string(id)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	if _, local, ok := strings.Cut(s, ":"); ok {
		s = local
	}
	return strings.ReplaceAll(s, "_", " ")
}
