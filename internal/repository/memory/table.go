package memory

// table keeps rows in insertion order and never reuses an identifier.
type table[T any] struct {
	rows   map[int64]T
	order  []int64
	lastID int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int64]T)}
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{
		rows:   make(map[int64]T, len(t.rows)),
		order:  make([]int64, len(t.order)),
		lastID: t.lastID,
	}
	for id, row := range t.rows {
		c.rows[id] = row
	}
	copy(c.order, t.order)
	return c
}

func (t *table[T]) nextID() int64 {
	t.lastID++
	return t.lastID
}

func (t *table[T]) get(id int64) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) insert(id int64, row T) {
	t.rows[id] = row
	t.order = append(t.order, id)
}

func (t *table[T]) replace(id int64, row T) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.rows[id] = row
	return true
}

func (t *table[T]) delete(id int64) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}
