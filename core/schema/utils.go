package schema

// FindColumn returns the column with the given id, or nil.
func (d *TableDefinition) FindColumn(id string) *ColumnDefinition {
	for i := range d.Columns {
		if d.Columns[i].ID == id {
			return &d.Columns[i]
		}
	}
	return nil
}

// SearchableColumns returns the ids of the columns taking part in global search.
func (d *TableDefinition) SearchableColumns() []string {
	ids := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c.Searchable {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
