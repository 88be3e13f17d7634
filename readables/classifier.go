package readables

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"hardboiled/models"
	"hardboiled/schema"
)

// Classifier turns rows of the union query into typed records
type Classifier struct {
	registry *schema.Registry
}

func NewClassifier(registry *schema.Registry) *Classifier {
	return &Classifier{registry: registry}
}

// Classify normalizes one row. The per-branch type tag names the table the
// row came from; exactly one discriminant must be non-NULL and it must be
// that table's. Discriminants and columns the table does not supply are
// dropped, aliases become canonical field names.
func (c *Classifier) Classify(columns []string, values []any) (models.Record, error) {
	row := make(map[string]any, len(columns))
	for i, col := range columns {
		row[col] = normalizeValue(values[i])
	}

	tag, _ := row[schema.TypeColumn].(string)
	table, ok := c.registry.Table(models.RecordType(tag))

	var present []string
	for _, d := range c.registry.Discriminants {
		if row[d.Column] != nil {
			present = append(present, d.Column)
		}
	}

	if !ok {
		return models.Record{}, &ClassificationError{Tag: tag, Discriminants: present}
	}
	if len(present) != 1 || present[0] != table.Discriminant {
		return models.Record{}, &ClassificationError{Tag: tag, Discriminants: present, Expected: table.Type}
	}

	record := models.Record{
		Type:   table.Type,
		Fields: make(map[string]any, len(table.Columns)+len(table.Relations)),
	}

	for _, col := range c.registry.Columns {
		if !table.Has(col.Name) {
			continue
		}
		v := row[col.Name]
		if col.Timestamp && v != nil {
			secs, ok := toInt64(v)
			if !ok {
				return models.Record{}, fmt.Errorf("column %s: unexpected timestamp value %T", col.Name, v)
			}
			v = time.Unix(secs, 0).UTC()
		}
		record.Fields[col.Field] = v
	}

	for _, rel := range table.Relations {
		v := row[rel.Column]
		if v != nil {
			id, ok := toInt64(v)
			if !ok {
				return models.Record{}, fmt.Errorf("column %s: unexpected foreign key value %T", rel.Column, v)
			}
			v = id
		}
		record.Fields[rel.Field] = v
	}

	return record, nil
}

// ClassifyRows reads every row of the union query, keeping its order
func (c *Classifier) ClassifyRows(rows *sql.Rows) ([]models.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns error: %w", err)
	}

	records := []models.Record{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		record, err := c.Classify(columns, values)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}

func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	case time.Time:
		return n.Unix(), true
	default:
		return 0, false
	}
}
