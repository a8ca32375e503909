package formats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/wowscene/pkg/encoding"
)

// Placement table errors.
var (
	ErrMalformedHeader = errors.New("malformed placement header")
	ErrMalformedRecord = errors.New("malformed placement record")
)

// PlacementSuffix is appended to an OBJ's base name to find its placement
// table.
const PlacementSuffix = "_ModelPlacementInformation.csv"

// PlacementTablePath returns the placement table path for an OBJ file.
func PlacementTablePath(objPath string) string {
	return encoding.TrimExt(objPath) + PlacementSuffix
}

// TableStyle tells terrain tables apart from WMO doodad tables.
type TableStyle int

const (
	// TableADT is a terrain tile table with a Type column mixing WMOs,
	// doodads and game objects.
	TableADT TableStyle = iota
	// TableWMO lists the doodad set entries of one WMO.
	TableWMO
)

// String returns the style name.
func (s TableStyle) String() string {
	switch s {
	case TableADT:
		return "ADT"
	case TableWMO:
		return "WMO"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// PlacementType is the category of a placement row.
type PlacementType string

const (
	PlacementWMO        PlacementType = "wmo"
	PlacementM2         PlacementType = "m2"
	PlacementGameObject PlacementType = "gobj"
	// PlacementDoodadSet marks rows of a WMO table, which has no Type column.
	PlacementDoodadSet PlacementType = "doodadset"
)

// Terrain reports whether the type may appear in the Type column of a
// terrain table.
func (t PlacementType) Terrain() bool {
	return t == PlacementWMO || t == PlacementM2 || t == PlacementGameObject
}

// Quaternion reports whether rows of this type carry RotationW.
func (t PlacementType) Quaternion() bool {
	return t == PlacementGameObject || t == PlacementDoodadSet
}

// Column names.
const (
	colType           = "Type"
	colModelID        = "ModelId"
	colModelFile      = "ModelFile"
	colPositionX      = "PositionX"
	colPositionY      = "PositionY"
	colPositionZ      = "PositionZ"
	colRotationX      = "RotationX"
	colRotationY      = "RotationY"
	colRotationZ      = "RotationZ"
	colRotationW      = "RotationW"
	colScaleFactor    = "ScaleFactor"
	colFileDataID     = "FileDataID"
	colDoodadSet      = "DoodadSet"
	colDoodadSetNames = "DoodadSetNames"
)

// PlacementRecord is one row of a placement table, in game coordinates.
type PlacementRecord struct {
	Row       int // 1-based, header excluded
	Type      PlacementType
	ModelID   string
	ModelFile string // as written, relative to the table's directory
	Position  [3]float64
	Rotation  [4]float64 // X, Y, Z, W; Euler degrees leave W at 0
	Scale     float64    // 1 unless ScaleFactor is set
	HasScale  bool

	FileDataID string
	DoodadSet  string // DoodadSet (WMO) or DoodadSetNames (ADT)
}

// RecordError reports a placement row that cannot be used. It matches
// ErrMalformedRecord with errors.Is.
type RecordError struct {
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("placement row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("placement row %d: %s %q: %s", e.Row, e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedRecord) hold.
func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// PlacementReader streams records from a placement table. It is not
// restartable; open the table again to re-read it.
type PlacementReader struct {
	r       *csv.Reader
	closer  io.Closer
	style   TableStyle
	columns map[string]int
	row     int
}

// NewPlacementReader reads the header of a ';'-delimited placement table.
func NewPlacementReader(r io.Reader) (*PlacementReader, error) {
	cr := csv.NewReader(encoding.NewReader(r))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty table", ErrMalformedHeader)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	pr := &PlacementReader{
		r:       cr,
		style:   TableWMO,
		columns: make(map[string]int, len(header)),
	}
	for i, name := range header {
		pr.columns[strings.TrimSpace(name)] = i
	}

	if _, ok := pr.columns[colModelFile]; !ok {
		return nil, fmt.Errorf("%w: no %s column", ErrMalformedHeader, colModelFile)
	}
	if _, ok := pr.columns[colType]; ok {
		pr.style = TableADT
	}

	return pr, nil
}

// OpenPlacementTable opens a placement table file. Close the reader when done.
func OpenPlacementTable(path string) (*PlacementReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening placement table: %w", err)
	}

	pr, err := NewPlacementReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	pr.closer = f
	return pr, nil
}

// Close releases the underlying file, if any.
func (pr *PlacementReader) Close() error {
	if pr.closer != nil {
		return pr.closer.Close()
	}
	return nil
}

// Style returns the table style detected from the header.
func (pr *PlacementReader) Style() TableStyle {
	return pr.style
}

// Next returns the next record. At the end of the table it returns io.EOF.
// A *RecordError leaves the reader usable for the following row; any other
// error is final.
func (pr *PlacementReader) Next() (PlacementRecord, error) {
	fields, err := pr.r.Read()
	if err == io.EOF {
		return PlacementRecord{}, io.EOF
	}
	pr.row++

	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return PlacementRecord{}, &RecordError{Row: pr.row, Reason: pe.Err.Error()}
		}
		return PlacementRecord{}, fmt.Errorf("reading placement row %d: %w", pr.row, err)
	}

	return pr.parseRecord(fields)
}

// All ranges over the remaining records. Malformed rows are yielded with
// their *RecordError and iteration continues; a fatal error ends it.
func (pr *PlacementReader) All() iter.Seq2[PlacementRecord, error] {
	return func(yield func(PlacementRecord, error) bool) {
		for {
			rec, err := pr.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) {
				return
			}
			if err != nil && !errors.Is(err, ErrMalformedRecord) {
				return
			}
		}
	}
}

func (pr *PlacementReader) parseRecord(fields []string) (PlacementRecord, error) {
	rec := PlacementRecord{
		Row:        pr.row,
		Type:       PlacementDoodadSet,
		Scale:      1,
		ModelFile:  pr.field(fields, colModelFile),
		FileDataID: pr.field(fields, colFileDataID),
		DoodadSet:  pr.field(fields, colDoodadSet),
	}

	if rec.ModelFile == "" {
		return rec, pr.recordError(colModelFile, "", "required")
	}

	rec.ModelID = pr.field(fields, colModelID)
	if pr.style == TableADT {
		rec.Type = PlacementType(pr.field(fields, colType))
		if rec.Type == "" {
			return rec, pr.recordError(colType, "", "required")
		}
		if rec.ModelID == "" {
			return rec, pr.recordError(colModelID, "", "required")
		}
		rec.DoodadSet = pr.field(fields, colDoodadSetNames)
	}

	var err error
	for i, col := range [3]string{colPositionX, colPositionY, colPositionZ} {
		if rec.Position[i], err = pr.number(fields, col); err != nil {
			return rec, err
		}
	}
	for i, col := range [3]string{colRotationX, colRotationY, colRotationZ} {
		if rec.Rotation[i], err = pr.number(fields, col); err != nil {
			return rec, err
		}
	}
	if rec.Type.Quaternion() {
		if rec.Rotation[3], err = pr.number(fields, colRotationW); err != nil {
			return rec, err
		}
	}

	if s := pr.field(fields, colScaleFactor); s != "" {
		scale, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return rec, pr.recordError(colScaleFactor, s, "not a number")
		}
		rec.Scale = scale
		rec.HasScale = true
	}

	return rec, nil
}

// field returns the trimmed value of a column, or "" if the column or the
// cell is missing.
func (pr *PlacementReader) field(fields []string, name string) string {
	i, ok := pr.columns[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func (pr *PlacementReader) number(fields []string, name string) (float64, error) {
	s := pr.field(fields, name)
	if s == "" {
		return 0, pr.recordError(name, "", "required")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, pr.recordError(name, s, "not a number")
	}
	return f, nil
}

func (pr *PlacementReader) recordError(field, value, reason string) error {
	return &RecordError{Row: pr.row, Field: field, Value: value, Reason: reason}
}
