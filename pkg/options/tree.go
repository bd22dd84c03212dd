package options

import (
	"maps"
	"slices"
	"strings"

	"github.com/systemstart/install-jobs/pkg/api"
)

const dataOptionPrefix = "DATA="

// Tree is a resolved option tree.
type Tree struct {
	root *Item
}

// NewTree builds a tree from configured groups. When the target already has a
// data partition, options that configure the data image are hidden.
func NewTree(groups []api.OptionGroup, hasDataPartition bool) *Tree {
	t := &Tree{root: &Item{name: "<root>", group: true}}
	b := &builder{hasDataPartition: hasDataPartition}
	b.addGroups(groups, t.root)

	// Preselection runs on the complete tree so that parents see all their children.
	for _, it := range b.preselected {
		it.SetSelected(Checked)
	}
	return t
}

// FromConfig builds a tree from cfg and applies its selections and inputs.
// It returns the input names that matched no editable option.
func FromConfig(cfg *api.OptionsConfig, hasDataPartition bool) (*Tree, []string) {
	t := NewTree(cfg.Groups, hasDataPartition)
	t.SetSelections(cfg.Select)

	var unmatched []string
	for _, name := range slices.Sorted(maps.Keys(cfg.Inputs)) {
		if !t.SetInput(name, cfg.Inputs[name]) {
			unmatched = append(unmatched, name)
		}
	}
	return t, unmatched
}

type builder struct {
	hasDataPartition bool
	preselected      []*Item
}

func (b *builder) addGroups(groups []api.OptionGroup, parent *Item) {
	for _, g := range groups {
		item := &Item{
			name:        g.Name,
			description: g.Description,
			group:       true,
			distinct:    g.Distinct,
			immutable:   g.Immutable,
			hidden:      g.Hidden || b.hiddenException(g.Description),
			state:       parentCheckState(parent),
			parent:      parent,
		}
		parent.appendChild(item)
		if g.Selected {
			b.preselected = append(b.preselected, item)
		}

		for _, o := range g.Options {
			b.addOption(o, item)
		}
		b.addGroups(g.Subgroups, item)
	}
}

func (b *builder) addOption(o api.OptionEntry, parent *Item) {
	description := o.Description
	if description == "" {
		description = o.Name
	}

	item := &Item{
		name:        o.Name,
		description: description,
		hidden:      o.Hidden || b.hiddenException(description),
		editable:    o.Editable,
		immutable:   parent.immutable,
		state:       parentCheckState(parent),
		parent:      parent,
	}
	if o.Editable {
		item.input = o.Default
	}
	parent.appendChild(item)

	if o.Selected {
		b.preselected = append(b.preselected, item)
	}
}

func (b *builder) hiddenException(description string) bool {
	return b.hasDataPartition && strings.Contains(description, dataOptionPrefix)
}

// Root returns the invisible root group.
func (t *Tree) Root() *Item {
	return t.root
}

// SetSelections checks every group whose name is listed. Options are not
// matched. Children are visited before their parent.
func (t *Tree) SetSelections(names []string) {
	setSelections(names, t.root)
}

func setSelections(names []string, item *Item) {
	for _, c := range item.children {
		setSelections(names, c)
	}
	if item.group && !item.isRoot() && slices.Contains(names, item.name) {
		item.SetSelected(Checked)
	}
}

// SetInput sets the input of the editable option called name.
// It reports whether such an option exists.
func (t *Tree) SetInput(name, value string) bool {
	var item *Item
	t.Walk(func(it *Item, _ int) bool {
		if it.IsOption() && it.name == name {
			item = it
			return false
		}
		return true
	})
	if item == nil || !item.editable {
		return false
	}
	item.input = value
	return true
}

// Find returns the first item called name in depth-first order.
func (t *Tree) Find(name string) *Item {
	var found *Item
	t.Walk(func(it *Item, _ int) bool {
		if it.name == name {
			found = it
			return false
		}
		return true
	})
	return found
}

// Walk visits every item below the root depth first. Returning false stops the walk.
func (t *Tree) Walk(fn func(it *Item, depth int) bool) {
	walk(t.root.children, 0, fn)
}

func walk(items []*Item, depth int, fn func(*Item, int) bool) bool {
	for _, it := range items {
		if !fn(it, depth) {
			return false
		}
		if !walk(it.children, depth+1, fn) {
			return false
		}
	}
	return true
}

// Options returns the selected options depth first. Unchecked groups are
// skipped with their whole subtree.
func (t *Tree) Options() []*Item {
	return itemOptions(t.root)
}

func itemOptions(item *Item) []*Item {
	var selected []*Item
	for _, c := range item.children {
		if c.state == Unchecked {
			continue
		}
		if c.IsOption() {
			selected = append(selected, c)
		} else {
			selected = append(selected, itemOptions(c)...)
		}
	}
	return selected
}

// Operations returns the operation of every selected option.
func (t *Tree) Operations() []string {
	opts := t.Options()
	ops := make([]string, 0, len(opts))
	for _, o := range opts {
		if op := o.Operation(); op != "" {
			ops = append(ops, op)
		}
	}
	return ops
}

// CommandLine joins the selected operations with spaces.
func (t *Tree) CommandLine() string {
	return strings.Join(t.Operations(), " ")
}
