package layout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadValue reports a host value whose Go type cannot be packed as the
	// requested value type.
	ErrBadValue = errors.New("unsupported value type")
	// ErrMissingField reports a record that lacks one of the struct's fields.
	ErrMissingField = errors.New("missing field")
	// ErrTruncatedData reports a flat float sequence that does not divide into
	// whole struct elements.
	ErrTruncatedData = errors.New("truncated data")
	// ErrStructFrozen reports an Add call after the struct has been packed.
	ErrStructFrozen = errors.New("struct layout is frozen")
	// ErrReservedField reports a user field name starting with the filler prefix.
	ErrReservedField = errors.New("reserved field name")
)

// padPrefix starts every synthetic filler field name. A single leading
// underscore keeps the name legal in WGSL declarations, and NewStruct and Add
// refuse user fields carrying the prefix, so fillers can never collide.
const padPrefix = "_pad_"

// Field pairs a field name with its value type.
type Field struct {
	// Name is the field identifier, unique within its struct.
	Name string
	// Type is the field's value layout from the package catalogue.
	Type ValueType
}

// Record is the host-side keyed view of one struct element. Keys are field
// names; values are the host types the field's ValueType packs. Filler fields
// never appear in a Record.
type Record map[string]any

// Struct is an ordered, named field layout used to generate shader struct
// declarations and to pack host records into GPU-ready float sequences.
//
// The packed size is always padded to a multiple of 16 bytes by appending
// filler scalar fields, so one Struct describes both the host layout and the
// GPU-side layout exactly. Construct with NewStruct, optionally extend with
// Add, then use Pack and Unpack; the layout freezes at the first Pack so a
// buffer allocated from it can never fall out of step.
type Struct struct {
	name   string
	fields []Field
	floats int
	frozen bool
}

// NewStruct creates a struct descriptor from an ordered field list and pads it
// to the 16-byte GPU alignment rule.
//
// Parameters:
//   - name: the struct's declaration name, unique among generated declarations
//   - fields: one or more named, typed fields in declaration order
//
// Returns:
//   - *Struct: the padded descriptor
//   - error: when the name is empty, no fields are given, a field is invalid,
//     duplicated, or uses the reserved filler prefix
func NewStruct(name string, fields ...Field) (*Struct, error) {
	if name == "" {
		return nil, errors.New("failed to create struct: name must not be empty")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("failed to create struct %q: at least one field is required", name)
	}
	s := &Struct{name: name}
	for _, f := range fields {
		if err := s.append(f.Name, f.Type); err != nil {
			return nil, err
		}
	}
	s.pad()
	return s, nil
}

// Name returns the struct's declaration name.
func (s *Struct) Name() string { return s.name }

// SizeFloats returns the number of float slots one element occupies, filler
// fields included.
func (s *Struct) SizeFloats() int { return s.floats }

// SizeBytes returns the packed size of one element in bytes, always a
// multiple of 16.
func (s *Struct) SizeBytes() int { return s.floats * 4 }

// Add appends a field to the layout, re-padding afterwards. Adding is only
// allowed before the first Pack call; once packed the layout is frozen so any
// buffer allocated from it stays byte-compatible.
//
// Parameters:
//   - name: the new field's identifier
//   - t: the new field's value type
//
// Returns:
//   - error: wraps ErrStructFrozen after the first Pack, or the same
//     validation failures as NewStruct
func (s *Struct) Add(name string, t ValueType) error {
	if s.frozen {
		return fmt.Errorf("failed to add field %q to struct %q: %w", name, s.name, ErrStructFrozen)
	}
	s.stripPadding()
	err := s.append(name, t)
	s.pad()
	return err
}

// Fields returns the field declarations, one "name: type," line per field in
// layout order, filler fields included.
func (s *Struct) Fields() string {
	lines := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		lines = append(lines, f.Name+": "+f.Type.Declare()+",")
	}
	return strings.Join(lines, "\n")
}

// Declaration returns the complete shader struct block for this layout.
//
// Returns:
//   - string: a WGSL declaration of the form "struct Name {\n\tfield: type,\n...}\n"
func (s *Struct) Declaration() string {
	var b strings.Builder
	b.WriteString("struct ")
	b.WriteString(s.name)
	b.WriteString(" {\n")
	for _, f := range s.fields {
		b.WriteString("\t")
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type.Declare())
		b.WriteString(",\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// DefaultRecord returns a record with every user field zero-initialized.
// Composite fields hold zero vectors; filler fields are omitted.
//
// Returns:
//   - Record: a fresh record safe for the caller to mutate
func (s *Struct) DefaultRecord() Record {
	rec := make(Record, len(s.fields))
	for _, f := range s.fields {
		if strings.HasPrefix(f.Name, padPrefix) {
			continue
		}
		rec[f.Name] = f.Type.Zero()
	}
	return rec
}

// Pack converts one or more records into a single flat float sequence, fields
// offset sequentially in layout order with filler fields packed as zero. The
// first call freezes the layout against further Add calls.
//
// Parameters:
//   - records: one record per element, each holding every user field
//
// Returns:
//   - []float32: the packed sequence, length SizeFloats() * len(records)
//   - error: wraps ErrMissingField when a record lacks a field, or ErrBadValue
//     when a field's host value has the wrong type
func (s *Struct) Pack(records ...Record) ([]float32, error) {
	s.frozen = true
	if len(records) == 0 {
		return nil, fmt.Errorf("failed to pack struct %q: at least one record is required", s.name)
	}
	out := make([]float32, 0, s.floats*len(records))
	for _, rec := range records {
		for _, f := range s.fields {
			if strings.HasPrefix(f.Name, padPrefix) {
				out = append(out, 0)
				continue
			}
			v, ok := rec[f.Name]
			if !ok {
				return nil, fmt.Errorf("failed to pack struct %q: field %q: %w", s.name, f.Name, ErrMissingField)
			}
			packed, err := f.Type.Pack(v)
			if err != nil {
				return nil, fmt.Errorf("failed to pack struct %q field %q: %w", s.name, f.Name, err)
			}
			out = append(out, packed...)
		}
	}
	return out, nil
}

// Unpack converts a flat float sequence back into records, one per element.
// Filler fields are skipped and never appear in the result.
//
// Parameters:
//   - flat: a packed sequence, e.g. from Pack or a buffer readback
//
// Returns:
//   - []Record: one record per whole element in the input (empty input yields
//     an empty slice)
//   - error: wraps ErrTruncatedData when a partial element remains
func (s *Struct) Unpack(flat []float32) ([]Record, error) {
	if len(flat)%s.floats != 0 {
		return nil, fmt.Errorf("failed to unpack struct %q: %d floats does not divide into %d-float elements: %w",
			s.name, len(flat), s.floats, ErrTruncatedData)
	}
	records := make([]Record, 0, len(flat)/s.floats)
	for off := 0; off < len(flat); off += s.floats {
		rec := make(Record, len(s.fields))
		at := off
		for _, f := range s.fields {
			n := f.Type.SizeFloats()
			if !strings.HasPrefix(f.Name, padPrefix) {
				rec[f.Name] = f.Type.Unpack(flat[at : at+n])
			}
			at += n
		}
		records = append(records, rec)
	}
	return records, nil
}

// append validates and adds one user field without re-padding.
func (s *Struct) append(name string, t ValueType) error {
	if name == "" {
		return fmt.Errorf("failed to add field to struct %q: name must not be empty", s.name)
	}
	if t == nil {
		return fmt.Errorf("failed to add field %q to struct %q: type must not be nil", name, s.name)
	}
	if strings.HasPrefix(name, padPrefix) {
		return fmt.Errorf("failed to add field %q to struct %q: %w", name, s.name, ErrReservedField)
	}
	for _, f := range s.fields {
		if f.Name == name {
			return fmt.Errorf("failed to add field %q to struct %q: duplicate field name", name, s.name)
		}
	}
	s.fields = append(s.fields, Field{Name: name, Type: t})
	s.floats += t.SizeFloats()
	return nil
}

// pad appends filler scalar fields until the packed size is 16-byte aligned.
func (s *Struct) pad() {
	for i := 0; s.floats%4 != 0; i++ {
		s.fields = append(s.fields, Field{Name: fmt.Sprintf("%s%d", padPrefix, i), Type: Float})
		s.floats++
	}
}

// stripPadding removes trailing filler fields ahead of a layout change.
func (s *Struct) stripPadding() {
	for len(s.fields) > 0 {
		last := s.fields[len(s.fields)-1]
		if !strings.HasPrefix(last.Name, padPrefix) {
			return
		}
		s.fields = s.fields[:len(s.fields)-1]
		s.floats -= last.Type.SizeFloats()
	}
}
