/*
 * files.go, part of goCE.
 *
 * Copyright 2023 The goCE developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package ce

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Structures travel between workflow iterations as extended XYZ files: the
//site count, then a comment line carrying the cell as a Lattice="..." field
//(nine numbers, rows of the cell matrix), then one line per site with the
//decorated species string and the Cartesian coordinates in Angstrom. The
//Lattice field is mandatory on read: without it the file describes a gas,
//not a periodic structure.

// XYZWrite writes the structure to out in extended XYZ format. The comment,
// if any, follows the Lattice field on the second line.
func XYZWrite(out io.Writer, st *Structure, comment string) error {
	if st == nil {
		return newParseError("XYZWrite: nil structure")
	}
	if _, err := fmt.Fprintf(out, "%d\n", st.Len()); err != nil {
		return err
	}
	lat := st.Lattice()
	fields := make([]string, 0, 9)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			fields = append(fields, strconv.FormatFloat(lat.At(i, k), 'g', -1, 64))
		}
	}
	header := fmt.Sprintf("Lattice=\"%s\"", strings.Join(fields, " "))
	if comment != "" {
		header = header + " " + comment
	}
	if _, err := fmt.Fprintf(out, "%s\n", header); err != nil {
		return err
	}
	for i := 0; i < st.Len(); i++ {
		c := st.Cart(i)
		_, err := fmt.Fprintf(out, "%-5s %12.8f %12.8f %12.8f\n", st.Species(i).String(), c[0], c[1], c[2])
		if err != nil {
			return err
		}
	}
	return nil
}

// XYZFileWrite writes the structure to the named file, creating or
// truncating it.
func XYZFileWrite(name string, st *Structure, comment string) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	if err := XYZWrite(w, st, comment); err != nil {
		return err
	}
	return w.Flush()
}

// XYZRead reads one structure in extended XYZ format from in. Species are
// parsed from their decorated string forms, so oxidation states survive the
// round trip. Fractional coordinates are recovered through the cell in the
// Lattice field.
func XYZRead(in io.Reader) (*Structure, error) {
	r := bufio.NewReader(in)
	line, err := readLine(r)
	if err != nil {
		return nil, errDecorate(newParseError("XYZRead: missing site count line"), "XYZRead")
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 {
		return nil, newParseError("XYZRead: bad site count line: " + strings.TrimSpace(line))
	}
	line, err = readLine(r)
	if err != nil {
		return nil, newParseError("XYZRead: missing comment line")
	}
	lat, err := parseLatticeField(line)
	if err != nil {
		return nil, errDecorate(err, "XYZRead")
	}
	species := make([]Species, n)
	cart := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		line, err = readLine(r)
		if err != nil {
			return nil, newParseError(fmt.Sprintf("XYZRead: file ends at site %d of %d", i, n))
		}
		f := strings.Fields(line)
		if len(f) < 4 {
			return nil, newParseError(fmt.Sprintf("XYZRead: site line %d has %d fields, wants 4", i, len(f)))
		}
		species[i], err = ParseSpecies(f[0])
		if err != nil {
			return nil, errDecorate(err, fmt.Sprintf("XYZRead: site line %d", i))
		}
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(f[1+k], 64)
			if err != nil {
				return nil, newParseError(fmt.Sprintf("XYZRead: bad coordinate on site line %d: %s", i, f[1+k]))
			}
			cart.Set(i, k, v)
		}
	}
	var inv mat.Dense
	if err := inv.Inverse(lat); err != nil {
		return nil, newParseError("XYZRead: the Lattice field holds a singular cell")
	}
	var frac mat.Dense
	frac.Mul(cart, &inv)
	return NewStructure(lat, &frac, species), nil
}

// XYZFileRead reads one structure from the named extended XYZ file.
func XYZFileRead(name string) (*Structure, error) {
	in, err := os.Open(name)
	if err != nil {
		return nil, errDecorate(newParseError(err.Error()), "XYZFileRead")
	}
	defer in.Close()
	st, err := XYZRead(in)
	if err != nil {
		return nil, errDecorate(err, "XYZFileRead: "+name)
	}
	return st, nil
}

//readLine returns the next line without its terminator. A final line may end
//at EOF instead of a newline.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF && strings.TrimSpace(line) != "" {
		return line, nil
	}
	if err != nil {
		return "", err
	}
	return line, nil
}

//parseLatticeField extracts the 3x3 cell from a Lattice="..." field.
func parseLatticeField(line string) (*mat.Dense, error) {
	const mark = "Lattice=\""
	start := strings.Index(line, mark)
	if start < 0 {
		return nil, newParseError("no Lattice field in the comment line")
	}
	rest := line[start+len(mark):]
	end := strings.Index(rest, "\"")
	if end < 0 {
		return nil, newParseError("unterminated Lattice field")
	}
	f := strings.Fields(rest[:end])
	if len(f) != 9 {
		return nil, newParseError(fmt.Sprintf("the Lattice field has %d numbers, wants 9", len(f)))
	}
	vals := make([]float64, 9)
	for i, s := range f {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, newParseError("bad number in the Lattice field: " + s)
		}
		vals[i] = v
	}
	return mat.NewDense(3, 3, vals), nil
}
