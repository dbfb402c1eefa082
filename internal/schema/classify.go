package schema

import "strings"

// ClassifyType maps a database-specific type name onto a DataType.
// Matching is on the base type, so "varchar(255)" and "integer[]" are
// classified by "varchar" and "integer".
func ClassifyType(sqlType string) DataType {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	if i := strings.IndexAny(t, "(["); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimSuffix(t, " unsigned")

	switch t {
	case "money", "smallmoney":
		return TypeMoney
	case "bool", "boolean", "bit":
		return TypeBoolean
	case "json", "jsonb", "xml", "hstore", "ltree", "hierarchyid":
		return TypeHierarchical
	case "geometry", "geography", "point", "line", "lseg", "box", "path", "polygon", "circle",
		"linestring", "multipoint", "multilinestring", "multipolygon", "geometrycollection":
		return TypeGeometric
	case "bytea", "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary", "image":
		return TypeBinary
	case "date", "time", "timetz", "timestamp", "timestamptz", "datetime", "datetime2",
		"datetimeoffset", "smalldatetime", "interval", "year":
		return TypeDatetime
	case "uuid", "uniqueidentifier", "enum", "set", "citext", "name", "clob":
		return TypeText
	}

	switch {
	case strings.HasPrefix(t, "timestamp"), strings.HasPrefix(t, "time "):
		return TypeDatetime
	case strings.Contains(t, "char"), strings.Contains(t, "text"), strings.HasPrefix(t, "string"):
		return TypeText
	case strings.Contains(t, "int"), strings.Contains(t, "serial"),
		strings.HasPrefix(t, "numeric"), strings.HasPrefix(t, "decimal"),
		strings.HasPrefix(t, "float"), strings.HasPrefix(t, "double"),
		t == "real", t == "number":
		return TypeNumber
	}
	return TypeOther
}
