package matrix

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File names probed inside a 10x-style matrix directory. Each may also be
// present gzip-compressed with a .gz suffix.
var (
	matrixNames  = []string{"matrix.mtx"}
	barcodeNames = []string{"barcodes.tsv"}
	featureNames = []string{"features.tsv", "genes.tsv"}
)

// Load reads a count matrix from a directory holding a MatrixMarket
// coordinate file plus barcode and feature name files (10x triplet
// format). Cell identifiers come from the barcodes file, gene names from
// the features file.
func Load(dir string) (*CountMatrix, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("matrix: input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("matrix: %s is not a directory", dir)
	}

	mtxPath, err := findFile(dir, matrixNames)
	if err != nil {
		return nil, err
	}
	barcodePath, err := findFile(dir, barcodeNames)
	if err != nil {
		return nil, err
	}
	featurePath, err := findFile(dir, featureNames)
	if err != nil {
		return nil, err
	}

	cells, err := readNames(barcodePath, 0)
	if err != nil {
		return nil, fmt.Errorf("matrix: reading barcodes: %w", err)
	}
	genes, err := readNames(featurePath, 1)
	if err != nil {
		return nil, fmt.Errorf("matrix: reading features: %w", err)
	}

	return readMatrixMarket(mtxPath, genes, cells)
}

// findFile returns the first existing candidate (plain or .gz) in dir.
func findFile(dir string, candidates []string) (string, error) {
	for _, name := range candidates {
		for _, full := range []string{name, name + ".gz"} {
			p := filepath.Join(dir, full)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("matrix: none of %v found in %s", candidates, dir)
}

// open returns a reader, transparently decompressing .gz files.
func open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &gzipReadCloser{gz: gz, f: f}, nil
	}
	return f, nil
}

type gzipReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipReadCloser) Close() error {
	if err := g.gz.Close(); err != nil {
		g.f.Close()
		return err
	}
	return g.f.Close()
}

// readNames reads one name per line from a TSV file. For multi-column
// lines (10x features files carry id, name, type) the column at nameCol
// is preferred, falling back to the first column.
func readNames(path string, nameCol int) ([]string, error) {
	r, err := open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if nameCol < len(fields) && fields[nameCol] != "" {
			names = append(names, fields[nameCol])
		} else {
			names = append(names, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no names in %s", path)
	}
	return names, nil
}

// readMatrixMarket parses a MatrixMarket coordinate file and assembles the
// dense count matrix. The header must declare a coordinate matrix with
// integer or real values; entries are validated against the declared
// dimensions and the supplied name counts.
func readMatrixMarket(path string, genes, cells []string) (*CountMatrix, error) {
	r, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("matrix: opening %s: %w", path, err)
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("matrix: %s: empty file", path)
	}
	header := strings.Fields(strings.ToLower(scanner.Text()))
	if len(header) < 4 || header[0] != "%%matrixmarket" || header[1] != "matrix" || header[2] != "coordinate" {
		return nil, fmt.Errorf("matrix: %s: not a MatrixMarket coordinate file", path)
	}
	if header[3] != "integer" && header[3] != "real" {
		return nil, fmt.Errorf("matrix: %s: unsupported value type %q", path, header[3])
	}

	// Skip comments, then read the dimension line.
	var rows, cols, nnz int
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		if _, err := fmt.Sscan(line, &rows, &cols, &nnz); err != nil {
			return nil, fmt.Errorf("matrix: %s: bad dimension line %q: %w", path, line, err)
		}
		break
	}
	if rows != len(genes) {
		return nil, fmt.Errorf("matrix: %s declares %d rows but features file has %d names", path, rows, len(genes))
	}
	if cols != len(cells) {
		return nil, fmt.Errorf("matrix: %s declares %d columns but barcodes file has %d names", path, cols, len(cells))
	}

	data := make([]float64, rows*cols)
	read := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("matrix: %s: bad entry line %q", path, line)
		}
		i, err1 := strconv.Atoi(fields[0])
		j, err2 := strconv.Atoi(fields[1])
		v, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("matrix: %s: bad entry line %q", path, line)
		}
		if i < 1 || i > rows || j < 1 || j > cols {
			return nil, fmt.Errorf("matrix: %s: entry (%d,%d) outside %dx%d", path, i, j, rows, cols)
		}
		if v < 0 {
			return nil, fmt.Errorf("matrix: %s: %w at (%d,%d)", path, ErrNegativeCount, i, j)
		}
		data[(i-1)*cols+(j-1)] = v
		read++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("matrix: reading %s: %w", path, err)
	}
	if read != nnz {
		return nil, fmt.Errorf("matrix: %s declares %d entries but has %d", path, nnz, read)
	}

	return New(genes, cells, data)
}
