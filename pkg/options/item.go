// Package options resolves a tree of kernel option groups into the options
// string consumed by the bootloader jobs.
package options

import (
	"strings"
)

// CheckState is the selection state of a tree item.
type CheckState int

const (
	Unchecked CheckState = iota
	PartiallyChecked
	Checked
)

func (s CheckState) String() string {
	switch s {
	case Checked:
		return "checked"
	case PartiallyChecked:
		return "partial"
	default:
		return "unchecked"
	}
}

// Item is a group or an option in the tree. The root is a group without a parent.
type Item struct {
	name        string
	description string
	input       string

	group     bool
	distinct  bool
	immutable bool
	hidden    bool
	editable  bool

	state    CheckState
	parent   *Item
	children []*Item
}

// parentCheckState is the state a new child takes from its parent.
// A child of a distinct parent never starts checked.
func parentCheckState(parent *Item) CheckState {
	if parent == nil || parent.distinct || parent.state == Unchecked {
		return Unchecked
	}
	return Checked
}

func (it *Item) Name() string { return it.name }
func (it *Item) Description() string { return it.description }
func (it *Item) Input() string { return it.input }
func (it *Item) IsGroup() bool { return it.group }
func (it *Item) IsOption() bool { return !it.group }
func (it *Item) Distinct() bool { return it.distinct }
func (it *Item) Immutable() bool { return it.immutable }
func (it *Item) Hidden() bool { return it.hidden }
func (it *Item) Editable() bool { return it.editable }
func (it *Item) State() CheckState { return it.state }
func (it *Item) Parent() *Item { return it.parent }
func (it *Item) Children() []*Item { return it.children }
func (it *Item) Operation() string { return it.description + it.input }

func (it *Item) appendChild(c *Item) {
	it.children = append(it.children, c)
}

func (it *Item) isRoot() bool {
	return it.parent == nil
}

// SetSelected changes the item's state and propagates it to its children and
// ancestors. The root cannot be changed.
func (it *Item) SetSelected(state CheckState) {
	if it.isRoot() {
		return
	}

	it.state = state

	current := it.parent
	if current.distinct && state == Checked {
		current.selectChildren(it.name)
	} else {
		it.setChildrenSelected(state)
	}

	// Find the nearest ancestor that has children to recompute.
	for current != nil && len(current.children) == 0 {
		current = current.parent
	}
	if current == nil {
		return
	}
	current.updateSelected()
}

// updateSelected recomputes the state from the children: unchecked when none
// are selected, checked when all are (or any, for a distinct group), partial
// otherwise.
func (it *Item) updateSelected() {
	var selected, partial int
	for _, c := range it.children {
		switch c.state {
		case Checked:
			selected++
		case PartiallyChecked:
			partial++
		}
	}

	switch {
	case selected == 0 && partial == 0:
		it.SetSelected(Unchecked)
	case it.distinct || selected == len(it.children):
		it.SetSelected(Checked)
	default:
		it.SetSelected(PartiallyChecked)
	}
}

// setChildrenSelected pushes state down the subtree. A distinct group being
// checked keeps a checked child if it has one, else checks its first child.
func (it *Item) setChildrenSelected(state CheckState) {
	if state == PartiallyChecked || len(it.children) == 0 {
		return
	}

	if it.distinct && state == Checked {
		for _, c := range it.children {
			if c.state == Checked {
				return
			}
		}
		first := it.children[0]
		first.state = Checked
		first.setChildrenSelected(state)
		return
	}

	for _, c := range it.children {
		c.state = state
		c.setChildrenSelected(state)
	}
}

// selectChildren checks the child called name and unchecks its siblings.
// Only distinct groups are affected.
func (it *Item) selectChildren(name string) {
	if !it.distinct {
		return
	}

	it.state = Checked
	for _, c := range it.children {
		if strings.EqualFold(c.name, name) {
			c.state = Checked
			c.setChildrenSelected(Checked)
		} else {
			c.state = Unchecked
			c.setChildrenSelected(Unchecked)
		}
	}
}
