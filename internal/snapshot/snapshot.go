// Package snapshot implements LatticeDB's deterministic textual
// serialization of a catalog plus its bitemporal version logs. The
// format is line-oriented, UTF-8, '\n'-terminated, and strict on its
// leading magic string.
package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/latticedb/latticedb/internal/catalog"
	"github.com/latticedb/latticedb/internal/merge"
	"github.com/latticedb/latticedb/internal/store"
	"github.com/latticedb/latticedb/internal/value"
)

// Magic is the first line of every snapshot file. Kept stable across
// versions of this package for load compatibility with any externally
// produced snapshot.
const Magic = "FORGEDB_SNAPSHOT_V1"

func typeCode(k value.Kind) string {
	switch k {
	case value.Null:
		return "N"
	case value.Int:
		return "I"
	case value.Double:
		return "F"
	case value.Text:
		return "S"
	case value.Set:
		return "G"
	case value.Vector:
		return "V"
	default:
		return "N"
	}
}

func kindFromCode(code string) (value.Kind, error) {
	switch code {
	case "N":
		return value.Null, nil
	case "I":
		return value.Int, nil
	case "F":
		return value.Double, nil
	case "S":
		return value.Text, nil
	case "G":
		return value.Set, nil
	case "V":
		return value.Vector, nil
	default:
		return value.Null, errors.Errorf("unknown type code %q", code)
	}
}

func mergeKindName(k merge.Kind) string {
	switch k {
	case merge.LWW:
		return "LWW"
	case merge.SumBounded:
		return "SUM_BOUNDED"
	case merge.GSet:
		return "GSET"
	default:
		return "-"
	}
}

func mergeKindFromName(s string) merge.Kind {
	switch s {
	case "LWW":
		return merge.LWW
	case "SUM_BOUNDED":
		return merge.SumBounded
	case "GSET":
		return merge.GSet
	default:
		return merge.None
	}
}

// escape backslash-escapes backslash, pipe, and newline.
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "|", `\|`, "\n", `\n`)
	return r.Replace(s)
}

func unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case '|':
				b.WriteByte('|')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Database bundles the two pieces of state a snapshot round-trips.
type Database struct {
	Catalog *catalog.Catalog
	Store   *store.Store
}

// Save writes cat/st to w in the snapshot format.
func Save(w io.Writer, cat *catalog.Catalog, st *store.Store) error {
	bw := bufio.NewWriter(w)
	writeLine := func(format string, args ...interface{}) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	writeLine(Magic)
	writeLine("%d", st.PeekNextTx())

	tables := cat.Tables()
	writeLine("%d", len(tables))

	for _, t := range tables {
		writeLine("%s", escape(t.Display))
		writeLine("%d", len(t.Columns))
		for _, col := range t.Columns {
			pk := "0"
			if col.PK {
				pk = "1"
			}
			writeLine("%s|%s|%s|%d|%d|%d|%s",
				escape(col.Display), typeCode(col.Type), mergeKindName(col.Merge.Kind),
				col.Merge.Min, col.Merge.Max, col.VectorDim, pk)
		}

		log := st.Table(t.Name)
		writeLine("%d", len(log.Versions))
		for _, v := range log.Versions {
			writeLine("%s|%d|%d|%s|%s",
				escape(v.RowID), v.TxFrom, v.TxTo, escape(v.ValidFrom), escape(v.ValidTo))
			writeLine("%d", len(v.Data))
			for _, val := range v.Data {
				writeValueLine(writeLine, val)
			}
		}
	}

	return bw.Flush()
}

func writeValueLine(writeLine func(string, ...interface{}), v value.Value) {
	switch v.Kind {
	case value.Null:
		writeLine("N")
	case value.Int:
		writeLine("I|%d", v.I)
	case value.Double:
		writeLine("F|%s", strconv.FormatFloat(v.F, 'g', -1, 64))
	case value.Text:
		writeLine("S|%s", escape(v.S))
	case value.Set:
		items := make([]string, len(v.Set))
		for i, s := range v.Set {
			items[i] = escape(s)
		}
		writeLine("G|%s", strings.Join(items, ","))
	case value.Vector:
		parts := make([]string, len(v.Vec))
		for i, f := range v.Vec {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		writeLine("V|%s", strings.Join(parts, ","))
	}
}

// lineReader yields trimmed-of-trailing-whitespace lines from r; load
// tolerates unknown trailing whitespace.
type lineReader struct {
	sc *bufio.Scanner
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &lineReader{sc: sc}
}

func (lr *lineReader) next() (string, bool) {
	if !lr.sc.Scan() {
		return "", false
	}
	return strings.TrimRight(lr.sc.Text(), " \t\r"), true
}

func (lr *lineReader) nextInt() (int64, error) {
	s, ok := lr.next()
	if !ok {
		return 0, errors.New("unexpected end of snapshot")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "expected integer, got %q", s)
	}
	return n, nil
}

// Load parses a snapshot from r into a fresh Database. Parsing happens
// entirely against fresh state; the caller only swaps its live
// catalog/store in on a nil error.
func Load(r io.Reader) (*Database, error) {
	lr := newLineReader(r)

	magic, ok := lr.next()
	if !ok || magic != Magic {
		return nil, errors.Errorf("missing or invalid snapshot magic (got %q)", magic)
	}

	nextTx, err := lr.nextInt()
	if err != nil {
		return nil, errors.Wrap(err, "reading next-tx counter")
	}

	tableCount, err := lr.nextInt()
	if err != nil {
		return nil, errors.Wrap(err, "reading table count")
	}

	cat := catalog.New()
	st := store.New()
	st.SetNextTx(nextTx)

	for i := int64(0); i < tableCount; i++ {
		name, ok := lr.next()
		if !ok {
			return nil, errors.New("unexpected end of snapshot reading table name")
		}
		name = unescape(name)

		colCount, err := lr.nextInt()
		if err != nil {
			return nil, errors.Wrap(err, "reading column count")
		}

		def := &catalog.TableDef{Name: strings.ToUpper(name), Display: name, Mergeable: true, PKIndex: -1}
		for c := int64(0); c < colCount; c++ {
			line, ok := lr.next()
			if !ok {
				return nil, errors.New("unexpected end of snapshot reading column")
			}
			fields := strings.Split(line, "|")
			if len(fields) != 7 {
				return nil, errors.Errorf("malformed column line %q", line)
			}
			kind, err := kindFromCode(fields[1])
			if err != nil {
				return nil, err
			}
			min, _ := strconv.ParseInt(fields[3], 10, 64)
			max, _ := strconv.ParseInt(fields[4], 10, 64)
			dim, _ := strconv.Atoi(fields[5])
			col := catalog.ColumnDef{
				Name:      strings.ToUpper(unescape(fields[0])),
				Display:   unescape(fields[0]),
				Type:      kind,
				PK:        fields[6] == "1",
				Merge:     merge.Spec{Kind: mergeKindFromName(fields[2]), Min: min, Max: max},
				VectorDim: dim,
			}
			if col.PK {
				def.PKIndex = len(def.Columns)
			}
			def.Columns = append(def.Columns, col)
		}
		if err := cat.CreateTable(def); err != nil {
			return nil, errors.Wrapf(err, "recreating table %q", name)
		}

		versionCount, err := lr.nextInt()
		if err != nil {
			return nil, errors.Wrap(err, "reading version count")
		}
		log := st.Table(name)
		for v := int64(0); v < versionCount; v++ {
			line, ok := lr.next()
			if !ok {
				return nil, errors.New("unexpected end of snapshot reading version")
			}
			fields := strings.SplitN(line, "|", 5)
			if len(fields) != 5 {
				return nil, errors.Errorf("malformed version line %q", line)
			}
			txFrom, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return nil, errors.Wrap(err, "parsing tx_from")
			}
			txTo, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return nil, errors.Wrap(err, "parsing tx_to")
			}

			dataCount, err := lr.nextInt()
			if err != nil {
				return nil, errors.Wrap(err, "reading data count")
			}
			data := make([]value.Value, 0, dataCount)
			for d := int64(0); d < dataCount; d++ {
				vline, ok := lr.next()
				if !ok {
					return nil, errors.New("unexpected end of snapshot reading value")
				}
				val, err := parseValueLine(vline)
				if err != nil {
					return nil, err
				}
				data = append(data, val)
			}

			log.Append(store.RowVersion{
				RowID:     unescape(fields[0]),
				TxFrom:    txFrom,
				TxTo:      txTo,
				ValidFrom: unescape(fields[3]),
				ValidTo:   unescape(fields[4]),
				Data:      data,
			})
		}
	}

	return &Database{Catalog: cat, Store: st}, nil
}

func parseValueLine(line string) (value.Value, error) {
	if line == "N" {
		return value.NewNull(), nil
	}
	idx := strings.IndexByte(line, '|')
	if idx < 0 {
		return value.Value{}, errors.Errorf("malformed value line %q", line)
	}
	tag, rest := line[:idx], line[idx+1:]
	switch tag {
	case "I":
		n, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return value.Value{}, errors.Wrapf(err, "parsing int value %q", rest)
		}
		return value.NewInt(n), nil
	case "F":
		f, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return value.Value{}, errors.Wrapf(err, "parsing float value %q", rest)
		}
		return value.NewDouble(f), nil
	case "S":
		return value.NewText(unescape(rest)), nil
	case "G":
		var items []string
		if rest != "" {
			for _, s := range strings.Split(rest, ",") {
				items = append(items, unescape(s))
			}
		}
		return value.NewSet(items...), nil
	case "V":
		var vec []float64
		if rest != "" {
			for _, s := range strings.Split(rest, ",") {
				f, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return value.Value{}, errors.Wrapf(err, "parsing vector component %q", s)
				}
				vec = append(vec, f)
			}
		}
		return value.NewVector(vec...), nil
	default:
		return value.Value{}, errors.Errorf("unknown value tag %q", tag)
	}
}
