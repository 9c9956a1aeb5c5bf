package costs

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrMatrixSize is returned for matrix data whose length does not match its
// header.
var ErrMatrixSize = errors.New("costs: matrix size mismatch")

// Matrix is a dense cost table. Lookups outside the table cost OutOfRange.
type Matrix struct {
	rows, cols int
	costs      []float32
	// OutOfRange is returned for ids beyond the table.
	OutOfRange float32
}

// NewMatrix creates a zero rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, costs: make([]float32, rows*cols)}
}

// Rows returns the row count.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m *Matrix) Cols() int { return m.cols }

// Set stores the cost of (row, col).
func (m *Matrix) Set(row, col int, cost float32) {
	m.costs[row*m.cols+col] = cost
}

// At returns the cost of (row, col).
func (m *Matrix) At(row, col int) float32 {
	if m == nil {
		return 0
	}
	if row < 0 || col < 0 || row >= m.rows || col >= m.cols {
		return m.OutOfRange
	}
	return m.costs[row*m.cols+col]
}

// Row returns the costs of row, or nil when row is out of range.
func (m *Matrix) Row(row int) []float32 {
	if m == nil || row < 0 || row >= m.rows {
		return nil
	}
	return m.costs[row*m.cols : (row+1)*m.cols]
}

// ReadMatrix decodes a matrix.
func ReadMatrix(r io.Reader) (*Matrix, error) {
	var hdr [2]uint16
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("costs: matrix header: %w", err)
	}
	m := NewMatrix(int(hdr[0]), int(hdr[1]))
	if err := binary.Read(bufio.NewReader(r), binary.LittleEndian, m.costs); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: want %dx%d", ErrMatrixSize, hdr[0], hdr[1])
		}
		return nil, err
	}
	return m, nil
}

// WriteTo encodes the matrix.
func (m *Matrix) WriteTo(w io.Writer) (int64, error) {
	if m.rows > math.MaxUint16 || m.cols > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %dx%d exceeds uint16", ErrMatrixSize, m.rows, m.cols)
	}
	buf := make([]byte, 4+4*len(m.costs))
	binary.LittleEndian.PutUint16(buf[0:], uint16(m.rows))
	binary.LittleEndian.PutUint16(buf[2:], uint16(m.cols))
	for i, c := range m.costs {
		binary.LittleEndian.PutUint32(buf[4+4*i:], math.Float32bits(c))
	}
	n, err := w.Write(buf)
	return int64(n), err
}
