package table

// Collection maps dataset names to tables. Names are unique and iteration follows
// insertion order.
type Collection struct {
	names  []string
	tables map[string]*Table
}

func NewCollection() *Collection {
	return &Collection{
		names:  []string{},
		tables: map[string]*Table{},
	}
}

// Put adds or replaces a named table. A replaced table keeps its original position.
func (c *Collection) Put(name string, t *Table) {
	if _, ok := c.tables[name]; !ok {
		c.names = append(c.names, name)
	}

	c.tables[name] = t
}

func (c *Collection) Get(name string) (*Table, bool) {
	t, ok := c.tables[name]

	return t, ok
}

// Delete removes a named table. Deleting an unknown name is a no-op.
func (c *Collection) Delete(name string) {
	if _, ok := c.tables[name]; !ok {
		return
	}

	delete(c.tables, name)

	for i, v := range c.names {
		if v == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
}

// Names returns the dataset names in insertion order.
func (c *Collection) Names() []string {
	return append([]string{}, c.names...)
}

func (c *Collection) Len() int {
	return len(c.names)
}
