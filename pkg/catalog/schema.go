package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/heap"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// A schema file lists one table per line:
//
//	users (id int pk, name string)
//	orders (id int pk, user_id int, note string)
//
// Lines starting with # are comments.
type schemaFile struct {
	Tables []*tableDef `@@*`
}

type tableDef struct {
	Pos     lexer.Position
	Name    string       `@Ident "("`
	Columns []*columnDef `@@ ( "," @@ )* ")"`
}

type columnDef struct {
	Pos        lexer.Position
	Name       string `@Ident`
	Type       string `@Ident`
	Annotation string `@Ident?`
}

var schemaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\r\n]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var schemaParser = participle.MustBuild[schemaFile](
	participle.Lexer(schemaLexer),
	participle.Elide("Comment", "Whitespace"),
)

// TableSchema is one parsed table definition.
type TableSchema struct {
	Name       string
	TupleDesc  *tuple.TupleDescription
	PrimaryKey string
}

// ParseSchema parses schema text. Unknown column types and annotations
// other than pk are errors.
func ParseSchema(filename, input string) ([]TableSchema, error) {
	parsed, err := schemaParser.ParseString(filename, input)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog entry: %w", err)
	}

	out := make([]TableSchema, 0, len(parsed.Tables))
	for _, def := range parsed.Tables {
		ts, err := def.resolve()
		if err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, nil
}

func (def *tableDef) resolve() (TableSchema, error) {
	fieldTypes := make([]types.Type, 0, len(def.Columns))
	names := make([]string, 0, len(def.Columns))
	var pkey string

	for _, col := range def.Columns {
		t, err := types.ParseType(strings.ToLower(col.Type))
		if err != nil {
			return TableSchema{}, fmt.Errorf("%s: table %s: unknown type %s", col.Pos, def.Name, col.Type)
		}

		switch col.Annotation {
		case "":
		case "pk":
			pkey = col.Name
		default:
			return TableSchema{}, fmt.Errorf("%s: table %s: unknown annotation %s", col.Pos, def.Name, col.Annotation)
		}

		fieldTypes = append(fieldTypes, t)
		names = append(names, col.Name)
	}

	td, err := tuple.NewTupleDesc(fieldTypes, names)
	if err != nil {
		return TableSchema{}, fmt.Errorf("table %s: %w", def.Name, err)
	}
	return TableSchema{Name: def.Name, TupleDesc: td, PrimaryKey: pkey}, nil
}

// LoadSchema reads the schema file at path and registers each table backed
// by <dir of path>/<name>.dat, creating missing data files.
//
// Returns:
//   - []string: Names of the tables registered, in file order
//   - error: A parse error, or a failure to open a data file
func (tm *TableManager) LoadSchema(path primitives.Filepath, pageSize int) ([]string, error) {
	data, err := os.ReadFile(path.String())
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	schemas, err := ParseSchema(path.Base(), string(data))
	if err != nil {
		return nil, err
	}

	baseDir := primitives.Filepath(path.Abs().Dir())
	names := make([]string, 0, len(schemas))
	for _, s := range schemas {
		hf, err := heap.NewHeapFile(baseDir.Join(s.Name+".dat"), s.TupleDesc, pageSize)
		if err != nil {
			return names, fmt.Errorf("opening table %s: %w", s.Name, err)
		}
		if _, err := tm.AddTable(hf, s.Name, s.PrimaryKey); err != nil {
			_ = hf.Close()
			return names, err
		}
		names = append(names, s.Name)
	}
	return names, nil
}
