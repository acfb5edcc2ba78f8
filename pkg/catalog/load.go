package catalog

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/cursos.csv
var defaultCSV []byte

// Default returns the catalog bundled with the binary.
func Default() *Catalog {
	c, err := LoadCSV(bytes.NewReader(defaultCSV))
	if err != nil {
		panic(fmt.Sprintf("catalog: bundled data is invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog from path, choosing the format by extension
// (.yaml/.yml for YAML, anything else for CSV).
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	default:
		return LoadCSV(f)
	}
}

// LoadCSV reads the spreadsheet layout with columns Curso, Semestre and
// Disciplina. A blank or "---" cell continues the value of the row above.
func LoadCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	cols, err := columns(header)
	if err != nil {
		return nil, err
	}

	c := &Catalog{}
	var course *Course
	var sem *Semester

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}

		if name := cell(record, cols[0]); name != "" {
			course = c.course(name)
			sem = nil
		}
		if course == nil {
			continue
		}
		if name := cell(record, cols[1]); name != "" {
			sem = course.semester(name)
		}
		if d := cell(record, cols[2]); d != "" && sem != nil {
			sem.Disciplines = append(sem.Disciplines, d)
		}
	}

	if c.Empty() {
		return nil, errors.New("catalog has no courses")
	}
	return c, nil
}

// LoadYAML reads a catalog in the form:
//
//	courses:
//	  - name: Análise e Desenvolvimento de Sistemas
//	    semesters:
//	      - name: 1º Semestre
//	        disciplines: [Métodos Ágeis]
func LoadYAML(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	for i, course := range c.Courses {
		if strings.TrimSpace(course.Name) == "" {
			return nil, fmt.Errorf("course %d has no name", i+1)
		}
	}
	if c.Empty() {
		return nil, errors.New("catalog has no courses")
	}
	return &c, nil
}

// course returns the named course, appending it when new.
func (c *Catalog) course(name string) *Course {
	for i := range c.Courses {
		if c.Courses[i].Name == name {
			return &c.Courses[i]
		}
	}
	c.Courses = append(c.Courses, Course{Name: name})
	return &c.Courses[len(c.Courses)-1]
}

// semester returns the named semester, appending it when new.
func (c *Course) semester(name string) *Semester {
	for i := range c.Semesters {
		if c.Semesters[i].Name == name {
			return &c.Semesters[i]
		}
	}
	c.Semesters = append(c.Semesters, Semester{Name: name})
	return &c.Semesters[len(c.Semesters)-1]
}

func columns(header []string) ([3]int, error) {
	want := [3]string{"curso", "semestre", "disciplina"}
	cols := [3]int{-1, -1, -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for j, w := range want {
			if h == w {
				cols[j] = i
			}
		}
	}
	for j, idx := range cols {
		if idx < 0 {
			return cols, fmt.Errorf("catalog header is missing column %q", want[j])
		}
	}
	return cols, nil
}

func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	v := strings.TrimSpace(record[idx])
	if v == "---" {
		return ""
	}
	return v
}
