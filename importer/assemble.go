package importer

// IndexedRow keeps a row together with its zero-based sheet index.
type IndexedRow struct {
	Index int
	Row   RawRow
}

// RowGroup is a header row and the detail rows that follow it up to the
// next header.
type RowGroup struct {
	Header  IndexedRow
	Details []IndexedRow
}

// GroupRows folds rows[start:] into header/detail groups. Rows seen before
// the first header are returned as orphans.
func GroupRows(rows []RawRow, start int, isHeader func(RawRow) bool) (groups []RowGroup, orphans []int) {
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isHeader(row) {
			groups = append(groups, RowGroup{Header: IndexedRow{Index: i, Row: row}})
			continue
		}
		if len(groups) == 0 {
			if !row.Empty() {
				orphans = append(orphans, i)
			}
			continue
		}
		last := &groups[len(groups)-1]
		last.Details = append(last.Details, IndexedRow{Index: i, Row: row})
	}
	return groups, orphans
}

// assembleRows runs build over every data row after the header. Blank rows
// are ignored; rows build rejects are reported as skipped.
func assembleRows[T any](rows []RawRow, cm ColumnMap, build func(RawRow) (T, bool)) (records []T, skipped []int) {
	for i := cm.HeaderRow() + 1; i < len(rows); i++ {
		row := rows[i]
		if row.Empty() {
			continue
		}
		rec, ok := build(row)
		if !ok {
			skipped = append(skipped, i)
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}
