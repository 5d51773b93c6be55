package cli

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hupe1980/umapsgd"
	"github.com/hupe1980/umapsgd/coo"
	"github.com/hupe1980/umapsgd/internal/philox"
	"github.com/hupe1980/umapsgd/resource"
)

// readEdges parses "row col weight" lines. nRows and nCols of zero are
// inferred as the largest index plus one.
func readEdges(r io.Reader, nRows, nCols int) (*coo.Matrix, error) {
	var (
		rows, cols []int32
		vals       []float32
	)
	maxRow, maxCol := int32(-1), int32(-1)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want 3 fields, got %d", line, len(fields))
		}
		i, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("line %d: bad row index %q", line, fields[0])
		}
		j, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil || j < 0 {
			return nil, fmt.Errorf("line %d: bad column index %q", line, fields[1])
		}
		w, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad weight %q", line, fields[2])
		}

		rows = append(rows, int32(i))
		cols = append(cols, int32(j))
		vals = append(vals, float32(w))
		maxRow = max(maxRow, int32(i))
		maxCol = max(maxCol, int32(j))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if nRows == 0 {
		nRows = int(maxRow) + 1
	}
	if nCols == 0 {
		nCols = int(maxCol) + 1
	}
	return coo.New(rows, cols, vals, nRows, nCols)
}

func readEdgesFile(ctx context.Context, path string, nRows, nCols int, rc *resource.Controller) (*coo.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := readEdges(resource.NewRateLimitedReader(ctx, f, rc), nRows, nCols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// readEmbedding parses a CSV file with one vertex per row.
func readEmbedding(r io.Reader) (*umapsgd.Embedding, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.ReuseRecord = true

	var (
		data []float32
		dim  int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if dim == 0 {
			dim = len(rec)
		}
		for _, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				line, _ := cr.FieldPos(0)
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			data = append(data, float32(v))
		}
	}
	if dim == 0 {
		return nil, errors.New("empty embedding")
	}
	return umapsgd.NewEmbeddingFrom(data, dim)
}

func readEmbeddingFile(path string) (*umapsgd.Embedding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	emb, err := readEmbedding(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return emb, nil
}

// writeEmbedding writes emb as CSV with the shortest exact float32 text.
func writeEmbedding(w io.Writer, emb *umapsgd.Embedding) error {
	cw := csv.NewWriter(w)
	rec := make([]string, emb.Dim())
	for i := range emb.Len() {
		for k, v := range emb.Row(i) {
			rec[k] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeEmbeddingFile(ctx context.Context, path string, emb *umapsgd.Embedding, rc *resource.Controller) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(resource.NewRateLimitedWriter(ctx, f, rc))
	if err := writeEmbedding(bw, emb); err != nil {
		return err
	}
	return bw.Flush()
}

// uniformEmbedding draws n x dim coordinates uniformly from [-10, 10).
func uniformEmbedding(n, dim int, seed uint64) *umapsgd.Embedding {
	emb := umapsgd.NewEmbedding(n, dim)
	g := philox.New(seed, 0)
	data := emb.Data()
	for i := range data {
		data[i] = 20*float32(float64(g.Next())/(1<<32)) - 10
	}
	return emb
}

// referenceEmbedding places each head vertex at the weighted mean of its
// reference neighbors. Vertices without edges stay at the origin.
func referenceEmbedding(g *coo.Matrix, tail *umapsgd.Embedding) *umapsgd.Embedding {
	dim := tail.Dim()
	head := umapsgd.NewEmbedding(g.NRows, dim)
	weight := make([]float64, g.NRows)
	sums := make([]float64, g.NRows*dim)

	for e := range g.Rows {
		i, j, w := int(g.Rows[e]), int(g.Cols[e]), float64(g.Vals[e])
		if w <= 0 {
			continue
		}
		weight[i] += w
		for k, v := range tail.Row(j) {
			sums[i*dim+k] += w * float64(v)
		}
	}

	for i := range g.NRows {
		if weight[i] == 0 {
			continue
		}
		row := head.Row(i)
		for k := range row {
			row[k] = float32(sums[i*dim+k] / weight[i])
		}
	}
	return head
}
