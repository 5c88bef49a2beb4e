/*
Copyright © 2026 the runccam authors.
This file is part of runccam.

runccam is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

runccam is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with runccam.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package namelist renders the Fortran namelist files that configure
// the CCAM preprocessing tools, the model and the post-processor.
package namelist

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
)

var funcs = newFuncs()

func newFuncs() template.FuncMap {
	f := sprig.TxtFuncMap()
	f["real"] = fortranReal
	f["logical"] = fortranLogical
	f["mm"] = func(i int) string { return fmt.Sprintf("%02d", i) }
	f["convection"] = func(i int) string { return convectionSchemes[i] }
	return f
}

// fortranReal formats f so that integral values keep a decimal point.
func fortranReal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func fortranLogical(b bool) string {
	if b {
		return "T"
	}
	return "F"
}

func parse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}

func render(w io.Writer, t *template.Template, data interface{}) error {
	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("namelist: rendering %s: %v", t.Name(), err)
	}
	return nil
}

// WriteFile creates or truncates path and renders a namelist into it.
func WriteFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("namelist: %v", err)
	}
	if err = fn(f); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("namelist: %v", err)
	}
	return nil
}
