package repository

import "github.com/brntsllvn/devlunch/internal/models"

// Op is the kind of a staged change.
type Op int

const (
	OpAdd Op = iota
	OpUpdate
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Change is one staged mutation. Exactly one of Restaurant or Product is set.
type Change struct {
	Op         Op
	Restaurant *models.Restaurant
	Product    *models.Product
}

// ChangeSet records staged changes for a session. Store implementations
// embed it and drain it inside SaveChanges.
type ChangeSet struct {
	changes []Change
}

func (c *ChangeSet) StageRestaurant(op Op, r *models.Restaurant) {
	if r == nil {
		return
	}
	c.changes = append(c.changes, Change{Op: op, Restaurant: r})
}

func (c *ChangeSet) StageProduct(op Op, p *models.Product) {
	if p == nil {
		return
	}
	c.changes = append(c.changes, Change{Op: op, Product: p})
}

// Pending returns the staged changes in staging order.
func (c *ChangeSet) Pending() []Change {
	return c.changes
}

func (c *ChangeSet) Len() int {
	return len(c.changes)
}

func (c *ChangeSet) Reset() {
	c.changes = nil
}

// Counts summarizes pending changes by op, for logging.
func (c *ChangeSet) Counts() (added, updated, removed int) {
	for _, ch := range c.changes {
		switch ch.Op {
		case OpAdd:
			added++
		case OpUpdate:
			updated++
		case OpRemove:
			removed++
		}
	}
	return added, updated, removed
}

// PendingIDs remembers the identifiers given to handles added earlier in the
// same SaveChanges, so a later Update or Remove of that handle finds its row
// before the id has been written back.
type PendingIDs map[any]int64

// Resolve returns id when it is set, otherwise the id staged for handle.
func (p PendingIDs) Resolve(handle any, id int64) int64 {
	if id != 0 {
		return id
	}
	return p[handle]
}
