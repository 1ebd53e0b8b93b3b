package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core"
)

var (
	// errors
	ErrNotFound      = errors.New("student not found")
	ErrAmbiguousName = errors.New("more than one student has this name")
	ErrDuplicateID   = errors.New("duplicate student ID")
)

// Directory is the in-memory, read-only student roster.
type Directory struct {
	students []Student
	byID     map[string]int
}

// NewDirectory builds a Directory from already parsed students. IDs must be unique.
func NewDirectory(students []Student) (*Directory, error) {
	d := &Directory{
		students: make([]Student, 0, len(students)),
		byID:     make(map[string]int, len(students)),
	}
	for _, s := range students {
		if _, ok := d.byID[s.ID]; ok {
			return nil, errors.Wrap(ErrDuplicateID, s.ID)
		}
		d.byID[s.ID] = len(d.students)
		d.students = append(d.students, s)
	}
	return d, nil
}

// Load reads the roster CSV file at path.
// Email is only mandatory when requireEmail is set (code based authentication).
func Load(path string, requireEmail bool) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewRosterLoadError(path, err)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()

	d, err := Read(f, requireEmail)
	if err != nil {
		return nil, core.NewRosterLoadError(path, err)
	}
	return d, nil
}

// Read parses a roster from r. The first record is the header.
func Read(r io.Reader, requireEmail bool) (*Directory, error) {
	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = -1
	rdr.TrimLeadingSpace = true

	header, err := rdr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty roster")
		}
		return nil, errors.Wrap(err, "reading header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff") // excel BOM
		cols[core.CleanString(h)] = i
	}

	required := []string{ColName, ColID, ColGroup}
	if requireEmail {
		required = append(required, ColEmail)
	}
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			return nil, errors.Errorf("missing column %q", col)
		}
	}

	field := func(rec []string, col string) string {
		if i, ok := cols[col]; ok && i < len(rec) {
			return core.CleanString(rec[i])
		}
		return ""
	}

	var students []Student
	for line := 2; ; line++ {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading line %d", line)
		}
		s := Student{
			ID:    field(rec, ColID),
			Name:  field(rec, ColName),
			Group: field(rec, ColGroup),
			Email: field(rec, ColEmail),
		}
		if s == (Student{}) {
			continue // blank line
		}
		if s.ID == "" || s.Name == "" || s.Group == "" {
			return nil, fmt.Errorf("line %d: %s, %s and %s are required", line, ColName, ColID, ColGroup)
		}
		if requireEmail && s.Email == "" {
			return nil, fmt.Errorf("line %d: %s is required", line, ColEmail)
		}
		students = append(students, s)
	}
	if len(students) == 0 {
		return nil, errors.New("roster has no students")
	}
	return NewDirectory(students)
}

// All returns every student in roster order.
func (d *Directory) All() []Student {
	out := make([]Student, len(d.students))
	copy(out, d.students)
	return out
}

func (d *Directory) Len() int { return len(d.students) }

func (d *Directory) GetByID(id string) (Student, error) {
	if i, ok := d.byID[core.CleanString(id)]; ok {
		return d.students[i], nil
	}
	return Student{}, ErrNotFound
}

// GetByName returns the only student with this exact name.
func (d *Directory) GetByName(name string) (Student, error) {
	name = core.CleanString(name)
	var found []Student
	for _, s := range d.students {
		if s.Name == name {
			found = append(found, s)
		}
	}
	switch len(found) {
	case 0:
		return Student{}, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return Student{}, ErrAmbiguousName
	}
}

// Match returns the student iff (name, id) exactly matches one roster row.
func (d *Directory) Match(name, id string) (Student, error) {
	name = core.CleanString(name)
	id = core.CleanString(id)
	if name == "" || id == "" {
		return Student{}, ErrNotFound
	}
	var (
		match Student
		count int
	)
	for _, s := range d.students {
		if s.Name == name && s.ID == id {
			match = s
			count++
		}
	}
	if count != 1 {
		return Student{}, ErrNotFound
	}
	return match, nil
}

// Group returns the members of a group in roster order.
func (d *Directory) Group(group string) []Student {
	var members []Student
	for _, s := range d.students {
		if s.Group == group {
			members = append(members, s)
		}
	}
	return members
}

// Groups returns the sorted list of distinct groups.
func (d *Directory) Groups() []string {
	seen := make(map[string]bool)
	groups := make([]string, 0)
	for _, s := range d.students {
		if !seen[s.Group] {
			seen[s.Group] = true
			groups = append(groups, s.Group)
		}
	}
	sort.Strings(groups)
	return groups
}

// Names returns the sorted student names, as offered by the code based login.
func (d *Directory) Names() []string {
	names := make([]string, 0, len(d.students))
	for _, s := range d.students {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}
