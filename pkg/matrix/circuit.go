package matrix

import (
	"errors"
	"fmt"

	"github.com/edp1096/sparse"
)

var ErrOutOfBounds = errors.New("matrix index out of bounds")

// CircuitMatrix is a real nodal conductance system G·v = i backed by a sparse
// matrix.
type CircuitMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	rhs      []float64
	solution []float64
	config   *sparse.Configuration

	outOfBounds int
}

func NewMatrix(size int) (*CircuitMatrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("matrix size must be positive, got %d", size)
	}

	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	return &CircuitMatrix{
		Size:     size,
		matrix:   mat,
		rhs:      make([]float64, size+1), // 1-based indexing
		solution: make([]float64, size+1),
		config:   config,
	}, nil
}

// SetupElements allocates every diagonal so that floating nodes surface as a
// singular factorization rather than a missing element.
func (m *CircuitMatrix) SetupElements() {
	for i := 1; i <= m.Size; i++ {
		m.matrix.GetElement(int64(i), int64(i))
	}
}

func (m *CircuitMatrix) inBounds(i int) bool {
	return i > 0 && i <= m.Size
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if !m.inBounds(i) || !m.inBounds(j) {
		m.outOfBounds++
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if !m.inBounds(i) {
		m.outOfBounds++
		return
	}
	m.rhs[i] += value
}

func (m *CircuitMatrix) LoadGmin(gmin float64) {
	for i := 1; i <= m.Size; i++ {
		if diag := m.GetDiagElement(i); diag != nil {
			diag.Real += gmin
		}
	}
}

func (m *CircuitMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
	m.outOfBounds = 0
}

func (m *CircuitMatrix) Solve() error {
	if m.outOfBounds > 0 {
		return fmt.Errorf("%w: %d stamps dropped", ErrOutOfBounds, m.outOfBounds)
	}

	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("matrix factorization failed: %w", err)
	}

	solution, err := m.matrix.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %w", err)
	}
	m.solution = solution
	return nil
}

func (m *CircuitMatrix) GetDiagElement(i int) *sparse.Element {
	if !m.inBounds(i) {
		return nil
	}
	return m.matrix.Diags[i]
}

func (m *CircuitMatrix) RHS() []float64 {
	return m.rhs
}

func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
	}
}
